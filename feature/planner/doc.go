// Package planner streams planner plans out of the tenant.
//
// Plans are not listable tenant-wide, so the traversal goes through the
// groups collection: every group's plan listing is fetched, and each plan
// is enriched with its details object before it is emitted. Groups that
// reject the plan listing (no planner provisioned, missing license) are
// skipped instead of failing the whole export.
//
//   - GET /groups/plans/entities streams all plans as a JSON array.
package planner
