// Package orderbook implements the in-memory matching core for one
// market: two price-sorted sides of resting limit orders matched with
// price-time priority, plus incrementally maintained depth aggregates
// so depth queries never walk individual orders.
//
// The orderbook is a single-writer structure. It performs no balance
// accounting and no I/O; settlement and event emission belong to the
// service layer that owns it.
package orderbook
