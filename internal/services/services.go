// package services defines the catalog client interfaces and the upstream wire types
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/desertthunder/mangax/internal/models"
)

// Catalog is the read-only surface of the remote comic catalog.
//
// The first three methods satisfy [navigator.Catalog].
type Catalog interface {
	// ChapterRecords lists every chapter of a title in fetch order.
	ChapterRecords(ctx context.Context, titleID string) ([]models.ChapterRecord, error)

	// ChapterByID returns one chapter with its TitleID set.
	ChapterByID(ctx context.Context, chapterID string) (*models.ChapterRecord, error)

	// TitleByChapterID resolves the title a chapter belongs to.
	TitleByChapterID(ctx context.Context, chapterID string) (string, error)

	// Title returns title metadata by slug or title id.
	Title(ctx context.Context, slugOrID string) (*models.Title, error)

	// ChapterImages lists the pages of a chapter.
	ChapterImages(ctx context.Context, chapterID string) ([]models.ChapterImage, error)

	// Search lists titles matching the filters.
	Search(ctx context.Context, filter models.FilterState) ([]models.Title, error)

	// Latest lists recently updated chapters ordered by popularity.
	Latest(ctx context.Context, page, limit int) ([]models.LatestChapter, error)
}

// Label is a chapter or volume number as sent by the catalog: a string, a number or null.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*l = Label(n.String())
	}
	return nil
}

// ComicRef is the title summary embedded in chapter payloads.
type ComicRef struct {
	HID    string         `json:"hid"`
	Slug   string         `json:"slug"`
	Title  string         `json:"title"`
	Status int            `json:"status"`
	Covers []CatalogCover `json:"md_covers"`
}

// CatalogChapter is a chapter as returned by the chapter list, chapter and feed endpoints.
type CatalogChapter struct {
	HID       string    `json:"hid"`
	Chap      Label     `json:"chap"`
	Vol       Label     `json:"vol"`
	Title     string    `json:"title"`
	Lang      string    `json:"lang"`
	GroupName []string  `json:"group_name"`
	PublishAt string    `json:"publish_at"`
	CreatedAt string    `json:"created_at"`
	UpCount   int       `json:"up_count"`
	Comic     *ComicRef `json:"md_comics,omitempty"`
}

// Record converts the payload into a [models.ChapterRecord] owned by titleID.
func (c CatalogChapter) Record(titleID string) models.ChapterRecord {
	published := parseTime(c.PublishAt)
	if published.IsZero() {
		published = parseTime(c.CreatedAt)
	}

	rec := models.NewChapterRecord(c.HID, string(c.Chap), c.GroupName, published)
	rec.TitleID = titleID
	rec.Volume = string(c.Vol)
	rec.Language = c.Lang
	return rec
}

// ChapterListResponse is the payload of /comic/{hid}/chapters.
type ChapterListResponse struct {
	Chapters []CatalogChapter `json:"chapters"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
}

// ChapterResponse is the payload of /chapter/{hid}.
type ChapterResponse struct {
	Chapter *CatalogChapter `json:"chapter"`
}

// CatalogCover is a cover image reference.
type CatalogCover struct {
	Vol   Label  `json:"vol"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	B2Key string `json:"b2key"`
}

// CatalogGenre is the genre join row of a comic.
type CatalogGenre struct {
	Genre struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"md_genres"`
}

// CatalogComic is title metadata as returned by /comic/{slug} and search.
type CatalogComic struct {
	HID          string         `json:"hid"`
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Desc         string         `json:"desc"`
	Status       int            `json:"status"`
	LastChapter  float64        `json:"last_chapter"`
	ChapterCount int            `json:"chapter_count"`
	FollowCount  int            `json:"user_follow_count"`
	Covers       []CatalogCover `json:"md_covers"`
	Genres       []CatalogGenre `json:"md_comic_md_genres"`
}

// Model converts the payload into a [models.Title].
func (c CatalogComic) Model() models.Title {
	t := models.Title{
		ID:           c.HID,
		Slug:         c.Slug,
		Name:         c.Title,
		Description:  c.Desc,
		Status:       c.Status,
		LastChapter:  c.LastChapter,
		ChapterCount: c.ChapterCount,
		Follows:      c.FollowCount,
	}
	for _, cv := range c.Covers {
		t.Covers = append(t.Covers, models.Cover{Volume: string(cv.Vol), Width: cv.W, Height: cv.H, Key: cv.B2Key})
	}
	for _, g := range c.Genres {
		if g.Genre.Name != "" {
			t.Genres = append(t.Genres, g.Genre.Name)
		}
	}
	return t
}

// ComicResponse is the payload of /comic/{slug}.
type ComicResponse struct {
	Comic *CatalogComic `json:"comic"`
}

// CatalogImage is a page image reference.
type CatalogImage struct {
	Name  string `json:"name"`
	B2Key string `json:"b2key"`
	W     int    `json:"w"`
	H     int    `json:"h"`
	S     int    `json:"s"`
}

// Model converts the payload into a [models.ChapterImage].
func (i CatalogImage) Model() models.ChapterImage {
	return models.ChapterImage{Name: i.Name, Key: i.B2Key, Width: i.W, Height: i.H, Size: i.S}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
