// Package state provides the gateway's in-memory latest-wins stores: session
// credentials and screenshots reported asynchronously by mod clients,
// bridged to synchronous operator reads. Each store holds at most one live
// entry per key; a write is a full replace, never a merge. Nothing is
// persisted across restart.
package state
