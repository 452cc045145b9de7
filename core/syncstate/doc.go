// Package syncstate persists delta cursors between sync passes.
//
// The downstream orchestrator normally carries the cursor itself via the
// since query parameter. The checkpoint store is a fallback for operators
// running the connector without such an orchestrator: after a completed
// pagination pass the final cursor is saved per dataset kind, and a request
// without a since parameter resumes from it.
//
// The store is entirely optional; a nil *Store disables checkpointing.
package syncstate
