// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

// MockCatalog is a test double for [services.Catalog] backed by in-memory records.
//
// Gates, when set for a title, block ChapterRecords until the channel is closed or the context ends.
type MockCatalog struct {
	Records  map[string][]models.ChapterRecord
	Titles   map[string]string // chapter id -> title id
	Errors   map[string]error  // title id -> error returned by ChapterRecords
	Gates    map[string]chan struct{}
	TitleErr error

	Meta          map[string]models.Title // slug or title id -> metadata
	Images        map[string][]models.ChapterImage
	SearchResults []models.Title
	LatestResults []models.LatestChapter
	LastFilter    models.FilterState

	mu    sync.Mutex
	calls map[string]int
}

// NewMockCatalog creates a MockCatalog with one title and maps each record to it.
func NewMockCatalog(titleID string, records ...models.ChapterRecord) *MockCatalog {
	m := &MockCatalog{
		Records: map[string][]models.ChapterRecord{},
		Titles:  map[string]string{},
		Errors:  map[string]error{},
		Gates:   map[string]chan struct{}{},
		Meta:    map[string]models.Title{},
		Images:  map[string][]models.ChapterImage{},
	}
	m.AddTitle(titleID, records...)
	return m
}

// AddTitle registers records under titleID.
func (m *MockCatalog) AddTitle(titleID string, records ...models.ChapterRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[titleID] = records
	for _, r := range records {
		m.Titles[r.ID] = titleID
	}
}

func (m *MockCatalog) ChapterRecords(ctx context.Context, titleID string) ([]models.ChapterRecord, error) {
	m.mu.Lock()
	m.count(titleID)
	gate := m.Gates[titleID]
	err := m.Errors[titleID]
	records := m.Records[titleID]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	out := make([]models.ChapterRecord, len(records))
	copy(out, records)
	return out, nil
}

func (m *MockCatalog) ChapterByID(ctx context.Context, chapterID string) (*models.ChapterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.Records[m.Titles[chapterID]] {
		if r.ID == chapterID {
			rec := r
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrChapterNotFound, chapterID)
}

func (m *MockCatalog) TitleByChapterID(ctx context.Context, chapterID string) (string, error) {
	if m.TitleErr != nil {
		return "", m.TitleErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.Titles[chapterID]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: chapter %s", shared.ErrTitleNotFound, chapterID)
}

func (m *MockCatalog) Title(ctx context.Context, slugOrID string) (*models.Title, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count("title:" + slugOrID)

	if t, ok := m.Meta[slugOrID]; ok {
		return &t, nil
	}
	return nil, fmt.Errorf("%w: %s returned status 404", shared.ErrTransportFailure, slugOrID)
}

func (m *MockCatalog) ChapterImages(ctx context.Context, chapterID string) ([]models.ChapterImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Images[chapterID], nil
}

func (m *MockCatalog) Search(ctx context.Context, filter models.FilterState) ([]models.Title, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFilter = filter
	return m.SearchResults, nil
}

func (m *MockCatalog) Latest(ctx context.Context, page, limit int) ([]models.LatestChapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && len(m.LatestResults) > limit {
		return m.LatestResults[:limit], nil
	}
	return m.LatestResults, nil
}

// Calls returns how many times ChapterRecords was called for titleID.
func (m *MockCatalog) Calls(titleID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[titleID]
}

// TitleCalls returns how many times Title was called for slugOrID.
func (m *MockCatalog) TitleCalls(slugOrID string) int {
	return m.Calls("title:" + slugOrID)
}

func (m *MockCatalog) count(key string) {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[key]++
}

// Chapter builds a [models.ChapterRecord] fixture.
func Chapter(id, label string, groups ...string) models.ChapterRecord {
	return models.NewChapterRecord(id, label, groups, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return dir
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}
