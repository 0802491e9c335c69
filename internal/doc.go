// Package internal holds code private to the cafeauth module.
//
// # Sub-packages
//
//   - devserver: in-memory back-office API used by tests, the example and
//     cmd/cafeauth-devserver
//   - rate: Redis-backed failed-login throttle for devserver
//
// # What this package must NOT do
//
//   - Export types that appear in the public cafeauth API.
package internal
