// Package datasets exposes the pipeline-facing dataset endpoints.
//
// # Endpoints
//
//   - GET /datasets/:kind/entities?since=<cursor> streams every record of
//     the kind as a JSON array, tagged with connector metadata. Records
//     stream out while upstream pages are still being fetched. The
//     optional auth=user query switches to the resource-owner principal.
//   - POST /datasets/:kind takes a JSON array of entities and reconciles
//     them upstream (create, update on conflict, or deactivate).
//
// The kinds user and group always query the delta endpoint of their
// collection; any other kind maps onto the Graph resource of the same name
// and uses delta only when graph.supports_since is configured.
//
// When a checkpoint store is wired in, a completed pass saves its final
// delta cursor and a request without since resumes from it.
package datasets
