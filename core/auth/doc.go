// Package auth obtains and caches access tokens for the Microsoft identity
// platform.
//
// It wraps golang.org/x/oauth2 with a process-lifetime token cache keyed by
// principal. Three flows are supported:
//
//   - Client credentials (the default): the app authenticates as itself with
//     its client id and secret. Scope https://graph.microsoft.com/.default
//     grants every permission assigned to the app registration.
//   - Resource owner: the app exchanges an end-user's username and password.
//     Cached under a key that includes the username.
//   - Authorization code: the interactive /auth endpoint redirects the user
//     to the Microsoft login page and exchanges the returned code.
//
// # Caching
//
// A cached token is never handed out once it is within five seconds of its
// expiry; the provider performs a fresh exchange first. Entries are
// independent per principal, so concurrent requests for different principals
// only contend on the map access itself.
//
// There is no invalidation API. A credential revoked on the Azure side is
// only detected when the cached token expires and the next exchange fails.
package auth
