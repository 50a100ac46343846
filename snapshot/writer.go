package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Writer persists snapshots to a single file, replaced atomically so a
// crash mid-write never leaves a torn snapshot behind.
type Writer struct {
	Path string
}

func (w *Writer) Write(snap *EngineSnapshot) error {
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "snapshot-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), w.Path)
}
