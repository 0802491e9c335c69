// Package devserver is an in-process stand-in for the café REST backend.
//
// It issues signed credentials from POST /api/authenticate, checks them on
// every resource route and answers 401 or 403 the way the real backend
// does. Resource data lives in memory. It exists for tests and local runs
// of the console, not for production.
package devserver
