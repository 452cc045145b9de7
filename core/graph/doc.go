// Package graph is the HTTP client layer for the Microsoft Graph API.
//
// It covers the three shapes of upstream interaction the connector needs:
//
//   - Single-shot reads and writes (Get, Post, Patch), authenticated with a
//     token pulled from the credential provider on every call.
//   - Paginated collection walks (Fetch) that follow @odata.nextLink until
//     exhausted and adopt the $deltatoken from a terminal @odata.deltaLink
//     as the new resumption cursor.
//   - Conflict-aware writes: a structured "ObjectConflict" rejection is not
//     an error but part of the Result, so the reconciliation engine can fall
//     back from create to update without inspecting error bodies.
//
// # Record Tagging
//
// Every record coming out of a Pager is tagged with connector metadata:
// _id (copied from the upstream primary key), _updated (the delta cursor
// active when the record's page was fetched) and _deleted (mapped from the
// @removed delta annotation). The underscore prefix is reserved for the
// connector; the reconcile package strips it before writing upstream.
//
// # Error Policy
//
// Non-2xx responses become a RequestError carrying status and body, logged
// in full at the point of detection. No call is ever retried here; retry
// policy belongs to the calling pipeline.
package graph
