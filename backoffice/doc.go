// Package backoffice is a thin client for the café back-office REST API.
//
// The API's resources are plain CRUD collections. Every call goes through
// the *http.Client it is given, normally [cafeauth.Client.HTTPClient], so
// credentials and denial handling are applied uniformly.
package backoffice
