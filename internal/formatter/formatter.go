// package formatter provides functions to export chapter listings to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/shared"
)

// Supported export formats.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// ChapterListing is a title and its chapters, newest first.
type ChapterListing struct {
	Title    models.Title
	Group    string // Group filter applied, "" for all groups
	Chapters []models.ChapterRecord
}

// NewChapterListing builds a listing from the entries returned by [navigator.Listing].
func NewChapterListing(title models.Title, entries []navigator.SequenceEntry, group string) *ChapterListing {
	l := &ChapterListing{Title: title, Group: group, Chapters: make([]models.ChapterRecord, len(entries))}
	for i, e := range entries {
		l.Chapters[i] = e.Record
	}
	return l
}

func publishedDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// ExportToCSV converts a ChapterListing to CSV format with columns: ID, Chapter, Volume, Language, Groups, Published
func ExportToCSV(l *ChapterListing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Chapter", "Volume", "Language", "Groups", "Published"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, ch := range l.Chapters {
		record := []string{
			ch.ID,
			ch.Label,
			ch.Volume,
			ch.Language,
			strings.Join(ch.Groups, "; "),
			publishedDate(ch.PublishedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ChapterListing to Markdown format with optional cover image
func ExportToMarkdown(l *ChapterListing, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", l.Title.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if l.Title.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", l.Title.Description))
	}

	buf.WriteString(fmt.Sprintf("**Status**: %s\n", l.Title.StatusText()))
	if len(l.Title.Genres) > 0 {
		buf.WriteString(fmt.Sprintf("**Genres**: %s\n", strings.Join(l.Title.Genres, ", ")))
	}
	if l.Group != "" {
		buf.WriteString(fmt.Sprintf("**Group**: %s\n", l.Group))
	}
	buf.WriteString(fmt.Sprintf("**Chapters**: %d\n\n", len(l.Chapters)))

	buf.WriteString("## Chapters\n\n")
	for i, ch := range l.Chapters {
		line := fmt.Sprintf("%d. %s", i+1, ch.DisplayName())
		if len(ch.Groups) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(ch.Groups, ", "))
		}
		if d := publishedDate(ch.PublishedAt); d != "" {
			line += fmt.Sprintf(" (%s)", d)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ChapterListing to plain text format
func ExportToText(l *ChapterListing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Title: %s\n", l.Title.Name))
	if l.Group != "" {
		buf.WriteString(fmt.Sprintf("Group: %s\n", l.Group))
	}
	buf.WriteString(fmt.Sprintf("Chapters: %d\n\n", len(l.Chapters)))

	for i, ch := range l.Chapters {
		groups := "-"
		if len(ch.Groups) > 0 {
			groups = strings.Join(ch.Groups, ", ")
		}
		buf.WriteString(fmt.Sprintf("%d. %s (%s) %s\n", i+1, ch.DisplayName(), groups, ch.ID))
	}

	return buf.Bytes(), nil
}

type jsonChapter struct {
	ID        string   `json:"id"`
	Chapter   string   `json:"chapter"`
	Volume    string   `json:"volume,omitempty"`
	Language  string   `json:"language,omitempty"`
	Groups    []string `json:"groups"`
	Published string   `json:"published,omitempty"`
}

type jsonListing struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Status   string        `json:"status"`
	Group    string        `json:"group,omitempty"`
	Chapters []jsonChapter `json:"chapters"`
}

// ExportToJSON converts a ChapterListing to indented JSON
func ExportToJSON(l *ChapterListing) ([]byte, error) {
	out := jsonListing{
		ID:       l.Title.ID,
		Slug:     l.Title.Slug,
		Title:    l.Title.Name,
		Status:   l.Title.StatusText(),
		Group:    l.Group,
		Chapters: make([]jsonChapter, len(l.Chapters)),
	}
	for i, ch := range l.Chapters {
		groups := ch.Groups
		if groups == nil {
			groups = []string{}
		}
		out.Chapters[i] = jsonChapter{
			ID:        ch.ID,
			Chapter:   ch.Label,
			Volume:    ch.Volume,
			Language:  ch.Language,
			Groups:    groups,
			Published: publishedDate(ch.PublishedAt),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// Render converts a ChapterListing to the named format.
func Render(l *ChapterListing, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(l)
	case FormatMarkdown, "md":
		return ExportToMarkdown(l, "")
	case FormatText, "text", "":
		return ExportToText(l)
	case FormatJSON:
		return ExportToJSON(l)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteFileExport writes a CSV, text or JSON export to path.
//
// Defaults to {slug}_chapters.{ext} as the filename.
func WriteFileExport(l *ChapterListing, format, path string) (string, error) {
	if path == "" {
		ext := strings.ToLower(format)
		if ext == "" {
			ext = FormatText
		}
		path = fmt.Sprintf("%s_chapters.%s", fileBase(l), ext)
	}

	data, err := Render(l, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a listing to Markdown format in a dedicated directory.
//
// Directory name defaults to the title slug.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(l *ChapterListing, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fileBase(l)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(l, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

func fileBase(l *ChapterListing) string {
	if l.Title.Slug != "" {
		return l.Title.Slug
	}
	if l.Title.ID != "" {
		return l.Title.ID
	}
	return "chapters"
}
