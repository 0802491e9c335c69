// Package rate throttles failed logins with Redis counters.
//
// # Window semantics
//
// Fixed windows: INCR, then EXPIRE on the first hit. Keys under the
// configured prefix:
//   - user:<username>  failures per account
//   - addr:<address>   failures per client address
package rate
