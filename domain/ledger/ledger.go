// Package ledger tracks per-user, per-asset funds split into an
// available and a locked portion. All balance mutation in the system
// goes through the primitives here so the invariants live in one place.
//
// Like the orderbook, the ledger is single-writer: the owning engine
// serializes access, so there is no internal locking.
package ledger

import "errors"

// ErrInsufficientFunds rejects a reservation larger than the user's
// available balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Balance is one asset position.
type Balance struct {
	Available float64 `json:"available"`
	Locked    float64 `json:"locked"`
}

// Ledger maps userID -> asset -> balance. Users and assets are created
// lazily on first touch.
type Ledger struct {
	balances map[string]map[string]Balance
}

func New() *Ledger {
	return &Ledger{balances: make(map[string]map[string]Balance)}
}

// Get returns the user's position in one asset, zero if untouched.
func (l *Ledger) Get(userID, asset string) Balance {
	return l.balances[userID][asset]
}

// Lock reserves amount of the user's available balance against an open
// order. The reservation fails atomically: on error nothing moved.
func (l *Ledger) Lock(userID, asset string, amount float64) error {
	bal := l.Get(userID, asset)
	if bal.Available < amount {
		return ErrInsufficientFunds
	}
	bal.Available -= amount
	bal.Locked += amount
	l.set(userID, asset, bal)
	return nil
}

// Unlock releases a prior reservation back to available.
func (l *Ledger) Unlock(userID, asset string, amount float64) {
	l.Adjust(userID, asset, amount, -amount)
}

// Credit adds external funds to the user's available balance.
func (l *Ledger) Credit(userID, asset string, amount float64) {
	l.Adjust(userID, asset, amount, 0)
}

// Adjust applies deltas to both fields and clamps each at zero.
//
// The clamp is corruption containment, not a feature: callers must
// compute deltas consistent with prior reservations, so a true return
// value signals a defect. The engine logs it and tests assert it never
// fires on valid command sequences.
func (l *Ledger) Adjust(userID, asset string, availableDelta, lockedDelta float64) bool {
	bal := l.Get(userID, asset)
	bal.Available += availableDelta
	bal.Locked += lockedDelta

	clamped := false
	if bal.Available < 0 {
		bal.Available = 0
		clamped = true
	}
	if bal.Locked < 0 {
		bal.Locked = 0
		clamped = true
	}

	l.set(userID, asset, bal)
	return clamped
}

// Snapshot copies the full balance map.
func (l *Ledger) Snapshot() map[string]map[string]Balance {
	out := make(map[string]map[string]Balance, len(l.balances))
	for user, assets := range l.balances {
		copied := make(map[string]Balance, len(assets))
		for asset, bal := range assets {
			copied[asset] = bal
		}
		out[user] = copied
	}
	return out
}

// Restore replaces the ledger contents with a snapshot copy.
func (l *Ledger) Restore(balances map[string]map[string]Balance) {
	l.balances = make(map[string]map[string]Balance, len(balances))
	for user, assets := range balances {
		for asset, bal := range assets {
			l.set(user, asset, bal)
		}
	}
}

func (l *Ledger) set(userID, asset string, bal Balance) {
	assets, ok := l.balances[userID]
	if !ok {
		assets = make(map[string]Balance)
		l.balances[userID] = assets
	}
	assets[asset] = bal
}
