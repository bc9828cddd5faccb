// Package services implements clients for the remote comic catalog.
//
// # Catalog Interface
//
// [Catalog] is the read-only surface used by the CLI, the TUI and the cache layer. Its first three methods
// satisfy navigator.Catalog so any implementation can drive chapter navigation.
//
// # Catalog Implementation
//
// [CatalogService] calls the catalog JSON API directly:
//   - /comic/{hid}/chapters : paginated chapter list, fetched page by page until exhausted
//   - /chapter/{hid} : one chapter with its title summary (md_comics)
//   - /comic/{slug} : title metadata
//   - /chapter/{hid}/get_images : page images
//   - /v1.0/search/ : browse and search
//   - /chapter/?order=hot : recently updated feed
//
// Requests are throttled by a [rate.Limiter] when catalog.rate_limit is set, and carry headers saved with
// "setup catalog --curl" so requests look like the browser session they were copied from.
//
// # Ingestion
//
// Upstream payloads are loosely typed (numeric or string chapter numbers, null group lists). The wire types in
// this package absorb that and convert into [models.ChapterRecord] and [models.Title]; records without an id are
// rejected here so the navigator never sees them.
//
// # Error Handling
//
//   - [shared.ErrTransportFailure] : network error, canceled context or non-2xx status
//   - [shared.ErrInvalidCatalogData] : body did not decode or a record is missing its id
//   - [shared.ErrMissingArgument] : empty id or slug
//
// # Raw Requests
//
// [APIService] performs unvalidated GETs and returns the upstream status, headers and body.
// It backs the HTTP proxy and the "api get" command.
package services
