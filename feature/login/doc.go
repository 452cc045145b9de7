// Package login implements the interactive authorization-code flow.
//
// GET /auth without a code redirects the operator to the Azure AD consent
// page, protected by a state cookie. The callback hits the same endpoint
// with the code, which is exchanged and cached so subsequent Graph calls
// run with the interactively granted token.
//
// The feature only loads when auth.redirect_url is configured.
package login
