// Package api defines the message contracts crossing the engine
// boundary: inbound commands, response payloads, and the events pushed
// to the persistence and broadcast collaborators.
//
// Commands form a closed set of variants. Decoding rejects unknown
// types; nothing downstream ever sees an untyped payload.
package api
