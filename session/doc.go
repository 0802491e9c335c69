// Package session persists the console's single login.
//
// A [Store] writes two entries into a [Storage]: the raw credential and a
// versioned JSON encoding of the user's [Profile]. Reading decodes the
// credential without verifying it, derives the session's roles from its role
// claim, and clears both entries when the credential is expired or cannot be
// read. An expired credential is therefore never returned as a live session.
//
// # Backends
//
//   - [MemoryStorage] for tests and embedded use.
//   - [FileStorage], a 0600 JSON file, used by the command-line console.
//   - [RedisStorage], for several console processes sharing one login.
//
// # What this package must NOT do
//
//   - Verify credential signatures. Only the backend can do that.
//   - Persist the user's password or trust a stored role list.
package session
