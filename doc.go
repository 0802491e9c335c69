// Package cafeauth is the session and authorization core of the café
// back-office console.
//
// A [Client] built with [New] ties together the pieces in the sub-packages:
//
//   - [Client.Login] exchanges a username and password for a credential and
//     stores the resulting [Session]. [Client.Logout] forgets it.
//   - [Client.HTTPClient] attaches the credential to every API call and ends
//     the session when the backend answers 401 or 403.
//   - [Client.Navigate] runs the access guard for a console path.
//
// Credentials are decoded on the client only to read the role and expiry.
// The backend checks signatures on every request; the guard here decides
// what to show, not what is allowed.
//
// # What this package must NOT do
//
//   - Verify credential signatures or keep any signing key.
//   - Log credentials or passwords.
//   - Return an error from Logout.
package cafeauth
