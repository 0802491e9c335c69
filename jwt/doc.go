// Package jwt reads the claims carried by the console's bearer credential and,
// for the development backend only, issues and verifies signed credentials.
//
// # Trust model
//
// [Decode] never checks the signature. The claims it returns are advisory: they
// drive routing and display decisions on the client, while the backend
// re-verifies the signature on every protected request. Nothing built on
// [Decode] may be treated as a security boundary.
//
// [Issuer] is the server-side counterpart used by internal/devserver and tests.
package jwt
