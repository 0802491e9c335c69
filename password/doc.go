// Package password hashes the development backend's user passwords with
// argon2id.
//
// Hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes made with weaker parameters so they
// can be replaced after the next successful login.
//
// The console itself never hashes passwords; it sends them to the backend
// over the login call and forgets them.
package password
