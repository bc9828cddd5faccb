// package models defines the data model for the manga catalog client
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mangax/internal/shared"
)

// ChapterRecord is one chapter of a title as published by one or more translation groups.
//
// Label is the uploader supplied chapter number ("10", "10.5", "Extra") and is not guaranteed to be numeric.
type ChapterRecord struct {
	ID          string
	TitleID     string
	Label       string
	Volume      string
	Language    string
	Groups      []string
	PublishedAt time.Time
}

// NewChapterRecord builds a record, trimming group names and dropping empty or repeated ones while keeping their order.
func NewChapterRecord(id, label string, groups []string, publishedAt time.Time) ChapterRecord {
	return ChapterRecord{
		ID:          strings.TrimSpace(id),
		Label:       strings.TrimSpace(label),
		Groups:      normalizeGroups(groups),
		PublishedAt: publishedAt,
	}
}

func normalizeGroups(groups []string) []string {
	if len(groups) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// Validate reports records the navigator cannot address.
func (c ChapterRecord) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: chapter record without id (label %q)", shared.ErrInvalidCatalogData, c.Label)
	}
	return nil
}

// FirstGroup returns the first listed translation group, or "" when there is none.
func (c ChapterRecord) FirstGroup() string {
	if len(c.Groups) == 0 {
		return ""
	}
	return c.Groups[0]
}

// DisplayName renders the chapter as shown in lists, e.g. "Vol. 2 Ch. 10".
func (c ChapterRecord) DisplayName() string {
	label := c.Label
	if label == "" {
		label = "?"
	}
	if c.Volume != "" {
		return fmt.Sprintf("Vol. %s Ch. %s", c.Volume, label)
	}
	return "Ch. " + label
}

// Cover is a cover image of a title.
type Cover struct {
	Volume string
	Width  int
	Height int
	Key    string
}

// Title is comic metadata.
//
// ID is the catalog's title handle (hid); Slug is the human readable path segment.
type Title struct {
	ID           string
	Slug         string
	Name         string
	Description  string
	Status       int
	LastChapter  float64
	ChapterCount int
	Follows      int
	Genres       []string
	Covers       []Cover
}

// StatusText returns the publication status as display text.
func (t Title) StatusText() string {
	return shared.StatusText(t.Status)
}

// CoverKey returns the first cover's image key, or "" when the title has no cover.
func (t Title) CoverKey() string {
	if len(t.Covers) == 0 {
		return ""
	}
	return t.Covers[0].Key
}

// ChapterImage is one page of a chapter.
type ChapterImage struct {
	Name   string
	Key    string
	Width  int
	Height int
	Size   int
}

// LatestChapter is an entry of the recently updated feed.
type LatestChapter struct {
	Chapter ChapterRecord
	Title   Title
}

// ImageURL joins an image host base URL and an opaque image key.
func ImageURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// SiteURL returns the public web URL of a title, or of one of its chapters when chapterID is set.
func SiteURL(base, slug, chapterID string) string {
	u := strings.TrimRight(base, "/") + "/comic/" + slug
	if chapterID != "" {
		u += "/" + chapterID
	}
	return u
}
