// Package snapshot captures and restores engine state for best-effort
// crash recovery. It is a serialization boundary only: no matching, no
// settlement, no business rules.
package snapshot
