// Package reconcile pushes pipeline entities back into Azure AD.
//
// For every entity of a batch, in input order, the engine decides between
// three upstream operations:
//
//   - Soft-deleted entities (_deleted: true) are deactivated by setting
//     accountEnabled to false. Nothing is ever physically deleted.
//   - Everything else is created with a POST. When the API answers with a
//     structured duplicate-object conflict, the engine falls back to a
//     PATCH keyed by the entity's identity (id, or userPrincipalName when
//     the id is absent).
//
// Connector metadata fields (underscore prefix) are stripped before any
// payload goes upstream, and the passwordProfile sub-object is dropped from
// update payloads because the app-only credential cannot write it.
//
// # Failure Semantics
//
// Entity failures are isolated: a failed entity is recorded and the batch
// continues. Batches are not atomic — entities committed before a failure
// stay committed; there is no rollback. Callers receive every per-entity
// Result plus an aggregate error when anything failed.
package reconcile
