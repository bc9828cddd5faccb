// Package models defines the catalog entities shared by the navigator, the catalog client, the cache and the presentation layers.
//
// Records are validated at the ingestion boundary (internal/services) and are immutable afterwards:
//   - [ChapterRecord] : one chapter of a title with its free-text label and translation groups
//   - [Title] : comic metadata resolved from a slug
//   - [ChapterImage] : one page of a chapter, addressed by an opaque image key
//   - [LatestChapter] : an entry of the "hot" update feed
//   - [FilterState] : browse/search filters encoded as catalog query parameters
package models
