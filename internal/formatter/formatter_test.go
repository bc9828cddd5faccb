package formatter

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/navigator"
	th "github.com/desertthunder/mangax/internal/testing"
)

func sampleListing() *ChapterListing {
	first := th.Chapter("c1", "1", "Alpha Scans")
	first.Volume = "1"
	first.Language = "en"
	second := th.Chapter("c2", "2", "Alpha Scans", "Beta")
	second.Language = "en"
	second.PublishedAt = time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)

	return &ChapterListing{
		Title: models.Title{
			ID:          "t1",
			Slug:        "test-manga",
			Name:        "Test Manga",
			Description: "A test manga",
			Status:      1,
			Genres:      []string{"Action", "Drama"},
		},
		Chapters: []models.ChapterRecord{second, first},
	}
}

func TestNewChapterListing(t *testing.T) {
	seq, err := navigator.Build([]models.ChapterRecord{
		th.Chapter("a", "1", "X"),
		th.Chapter("b", "2", "Y"),
		th.Chapter("c", "3", "X"),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	l := NewChapterListing(models.Title{ID: "t1"}, navigator.Listing(seq, "X"), "X")
	if len(l.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(l.Chapters))
	}
	if l.Chapters[0].ID != "c" || l.Chapters[1].ID != "a" {
		t.Errorf("expected newest first [c a], got [%s %s]", l.Chapters[0].ID, l.Chapters[1].ID)
	}
	if l.Group != "X" {
		t.Errorf("expected group X, got %q", l.Group)
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleListing())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Chapter,Volume,Language,Groups,Published") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "c2,2,,en,Alpha Scans; Beta,2024-02-03") {
			t.Errorf("CSV missing chapter 2 row, got: %s", output)
		}
		if !strings.Contains(output, "c1,1,1,en,Alpha Scans,2024-01-01") {
			t.Errorf("CSV missing chapter 1 row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleListing(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "# Test Manga") {
				t.Errorf("Markdown missing title")
			}
			if !strings.Contains(output, "**Description**: A test manga") {
				t.Errorf("Markdown missing description")
			}
			if !strings.Contains(output, "**Status**: Ongoing") {
				t.Errorf("Markdown missing status")
			}
			if !strings.Contains(output, "**Genres**: Action, Drama") {
				t.Errorf("Markdown missing genres")
			}
			if !strings.Contains(output, "**Chapters**: 2") {
				t.Errorf("Markdown missing chapter count")
			}
			if strings.Contains(output, "**Group**") {
				t.Errorf("Markdown should not show a group when none is set")
			}
			if !strings.Contains(output, "1. Ch. 2 [Alpha Scans, Beta] (2024-02-03)") {
				t.Errorf("Markdown missing chapter 2, got: %s", output)
			}
			if !strings.Contains(output, "2. Vol. 1 Ch. 1 [Alpha Scans] (2024-01-01)") {
				t.Errorf("Markdown missing chapter 1, got: %s", output)
			}
			if strings.Contains(output, "![Cover]") {
				t.Errorf("Markdown should not reference a cover")
			}
		})

		t.Run("with cover image and group", func(t *testing.T) {
			l := sampleListing()
			l.Group = "Beta"
			data, err := ExportToMarkdown(l, "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
			if !strings.Contains(output, "**Group**: Beta") {
				t.Errorf("Markdown missing group")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		l := sampleListing()
		l.Chapters = append(l.Chapters, th.Chapter("c0", "Extra"))

		data, err := ExportToText(l)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Title: Test Manga") {
			t.Errorf("Text missing title")
		}
		if !strings.Contains(output, "Chapters: 3") {
			t.Errorf("Text missing chapter count")
		}
		if !strings.Contains(output, "1. Ch. 2 (Alpha Scans, Beta) c2") {
			t.Errorf("Text missing chapter 2, got: %s", output)
		}
		if !strings.Contains(output, "3. Ch. Extra (-) c0") {
			t.Errorf("Text missing groupless chapter, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		l := sampleListing()
		l.Chapters = append(l.Chapters, th.Chapter("c0", "0"))

		data, err := ExportToJSON(l)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{`"id": "t1"`, `"slug": "test-manga"`, `"status": "Ongoing"`, `"id": "c2"`, `"published": "2024-02-03"`, `"groups": []`} {
			if !strings.Contains(output, want) {
				t.Errorf("JSON missing %s, got: %s", want, output)
			}
		}
		if strings.Contains(output, `"group"`) {
			t.Errorf("JSON should omit an empty group")
		}
	})

	t.Run("Render", func(t *testing.T) {
		tests := []struct {
			format string
			want   string
		}{
			{"csv", "ID,Chapter"},
			{"markdown", "# Test Manga"},
			{"md", "# Test Manga"},
			{"txt", "Title: Test Manga"},
			{"", "Title: Test Manga"},
			{"JSON", `"slug": "test-manga"`},
		}

		for _, tt := range tests {
			t.Run(tt.format, func(t *testing.T) {
				data, err := Render(sampleListing(), tt.format)
				if err != nil {
					t.Fatalf("Render(%q) failed: %v", tt.format, err)
				}
				if !strings.Contains(string(data), tt.want) {
					t.Errorf("Render(%q) missing %q", tt.format, tt.want)
				}
			})
		}

		t.Run("unsupported", func(t *testing.T) {
			if _, err := Render(sampleListing(), "xml"); err == nil {
				t.Error("expected error for unsupported format")
			}
		})
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadImage("")
		if err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer server.Close()

		data, err := DownloadImage(server.URL + "/cover.jpg")
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("expected jpegdata, got %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(server.URL); err == nil {
			t.Error("expected error for 404 response")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteFileExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteFileExport(sampleListing(), "csv", "")
			if err != nil {
				t.Fatalf("WriteFileExport failed: %v", err)
			}

			if path != "test-manga_chapters.csv" {
				t.Errorf("Expected 'test-manga_chapters.csv', got '%s'", path)
			}

			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "ID,Chapter") {
				t.Errorf("CSV missing headers")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.json")

			got, err := WriteFileExport(sampleListing(), "json", path)
			if err != nil {
				t.Fatalf("WriteFileExport failed: %v", err)
			}
			if got != path {
				t.Errorf("Expected %s, got %s", path, got)
			}
			if content := th.MustReadFile(t, path); !strings.Contains(content, `"test-manga"`) {
				t.Errorf("JSON export missing slug")
			}
		})

		t.Run("UnsupportedFormat", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.xml")
			if _, err := WriteFileExport(sampleListing(), "xml", path); err == nil {
				t.Error("expected error for unsupported format")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(sampleListing(), "", "")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "test-manga" {
				t.Errorf("Expected directory 'test-manga', got '%s'", result.Directory)
			}
			if len(result.Files) != 1 {
				t.Errorf("Expected 1 file, got %d", len(result.Files))
			}
			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got %s", result.CoverImage)
			}

			th.AssertFileExists(t, filepath.Join("test-manga", "README.md"))
		})

		t.Run("WithCoverImage", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpegdata"))
			}))
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, err := WriteMarkdownExport(sampleListing(), dir, server.URL+"/cover.jpg")
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("Expected cover image path, got %q", result.CoverImage)
			}
			if len(result.Files) != 2 {
				t.Errorf("Expected 2 files, got %d", len(result.Files))
			}

			content := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(content, "![Cover](cover.jpg)") {
				t.Errorf("README missing cover reference")
			}
		})

		t.Run("WithFailedCoverDownload", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "export")
			result, err := WriteMarkdownExport(sampleListing(), dir, server.URL)
			if err != nil {
				t.Fatalf("WriteMarkdownExport should not fail on cover download: %v", err)
			}
			if result.CoverImage != "" {
				t.Errorf("Expected no cover image, got %s", result.CoverImage)
			}

			content := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if strings.Contains(content, "![Cover]") {
				t.Errorf("README should not reference a missing cover")
			}
		})
	})
}
