// Package service orchestrates the core components of the exchange —
// orderbooks, the balance ledger, snapshots, and outbound events.
//
// The Engine here is the ONLY write entry point into the system: it
// validates commands, reserves funds, drives matching, settles fills,
// and hands events to the persistence and broadcast collaborators,
// decoupled from network transports.
package service
