// Package auth resolves the authenticated principal for each request.
//
// Two credentials are accepted: a session cookie (scs, sqlite-backed) for
// browser clients and a bearer API token for programmatic clients. The rest
// of the application only ever sees a user ID pulled from the Gin context
// with GetUserID; how that ID was established is this package's concern.
//
// With AUTH_MODE=none every request runs as DefaultUserID, which keeps
// local development and the demo seeder friction-free.
package auth
