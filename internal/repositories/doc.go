// Package repositories implements the SQLite cache of catalog data.
//
// Key Implementations:
//   - [ChapterRepository] : chapter lists per title, stored with their fetch position plus a fetch log
//   - [TitleRepository] : title metadata keyed by id with a unique slug
//   - [CachedCatalog] : services.Catalog decorator that serves fresh entries from the repositories
//
// A title's chapter list is replaced as a whole in one transaction. The position column keeps the upstream
// fetch order so building a navigation sequence from cached records yields the same order as from a live fetch.
//
// Freshness is decided by the chapter_fetches log and the titles.fetched_at column against the configured TTL
// (catalog.cache_ttl_minutes).
package repositories
