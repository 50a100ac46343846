package service

import "github.com/sirupsen/logrus"

// emitter decouples event delivery from the matching critical section.
// Enqueue never blocks: a full queue drops the event and logs, because
// a slow collaborator must not stall or roll back a completed match.
type emitter struct {
	jobs chan func() error
	done chan struct{}
	log  *logrus.Logger
}

func newEmitter(buffer int, log *logrus.Logger) *emitter {
	e := &emitter{
		jobs: make(chan func() error, buffer),
		done: make(chan struct{}),
		log:  log,
	}
	go e.run()
	return e
}

func (e *emitter) run() {
	defer close(e.done)
	for job := range e.jobs {
		if err := job(); err != nil {
			e.log.WithError(err).Warn("event delivery failed")
		}
	}
}

func (e *emitter) enqueue(job func() error) {
	select {
	case e.jobs <- job:
	default:
		e.log.Warn("event queue full, dropping event")
	}
}

// Close drains queued events, then stops the delivery goroutine.
func (e *emitter) Close() {
	close(e.jobs)
	<-e.done
}
