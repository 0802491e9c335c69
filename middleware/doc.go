// Package middleware builds the console's outgoing HTTP pipeline as a chain
// of http.RoundTripper decorators.
//
//   - [Authorize] attaches the current credential as a bearer header.
//   - [ObserveDenied] reports 401 and 403 responses so the caller can end
//     the session.
//   - [RequestID] stamps each request with a correlation id.
//
// # What this package must NOT do
//
//   - Read session storage directly. Credentials arrive through an
//     oauth2.TokenSource.
//   - Swallow or rewrite responses. Denied responses still reach the caller.
package middleware
