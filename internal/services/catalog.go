// Catalog client for the comic catalog JSON API
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/mangax/internal/models"
	"github.com/desertthunder/mangax/internal/shared"
)

const (
	defaultCatalogURL   = "https://api.comick.fun"
	defaultChapterLimit = 100
	maxChapterPages     = 50
	userAgent           = "mangax/1.0"
)

// CatalogOpts configures a [CatalogService].
type CatalogOpts struct {
	BaseURL      string
	Language     string
	ChapterLimit int
	// RateLimit is the number of requests per second; zero disables throttling.
	RateLimit float64
	Headers   map[string]string
	Client    *http.Client
	Logger    *log.Logger
}

// CatalogService talks to the catalog API and validates its payloads into [models] types.
//
// Network failures and non-2xx statuses wrap [shared.ErrTransportFailure]; undecodable or incomplete payloads
// wrap [shared.ErrInvalidCatalogData]. Requests are never retried.
type CatalogService struct {
	baseURL      string
	language     string
	chapterLimit int
	headers      map[string]string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
}

// NewCatalogService creates a catalog client.
func NewCatalogService(opts CatalogOpts) *CatalogService {
	s := &CatalogService{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		language:     opts.Language,
		chapterLimit: opts.ChapterLimit,
		headers:      opts.Headers,
		httpClient:   opts.Client,
		logger:       opts.Logger,
	}

	if s.baseURL == "" {
		s.baseURL = defaultCatalogURL
	}
	if s.chapterLimit <= 0 {
		s.chapterLimit = defaultChapterLimit
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	s.logger = shared.WithLogger(s.logger, "component", "catalog")

	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return s
}

// NewCatalogServiceFromConfig creates a catalog client from the [catalog] config section,
// loading saved browser headers when headers_path is set.
func NewCatalogServiceFromConfig(cfg shared.CatalogConfig, logger *log.Logger) (*CatalogService, error) {
	var headers map[string]string
	if cfg.HeadersPath != "" {
		h, err := shared.LoadCurlHeaders(cfg.HeadersPath)
		if err != nil {
			return nil, err
		}
		headers = h.All()
	}

	return NewCatalogService(CatalogOpts{
		BaseURL:      cfg.BaseURL,
		Language:     cfg.Language,
		ChapterLimit: cfg.ChapterLimit,
		RateLimit:    cfg.RateLimit,
		Headers:      headers,
		Client:       &http.Client{Timeout: cfg.Timeout()},
		Logger:       logger,
	}), nil
}

// BaseURL returns the catalog API root.
func (s *CatalogService) BaseURL() string { return s.baseURL }

// Headers returns the extra headers sent with every request.
func (s *CatalogService) Headers() map[string]string { return s.headers }

// doRequest performs a GET against path and decodes the JSON body into result.
func (s *CatalogService) doRequest(ctx context.Context, path string, query url.Values, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", shared.ErrTransportFailure, err)
		}
	}

	apiURL := s.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	s.logger.Debug("catalog request", "url", apiURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned status %d", shared.ErrTransportFailure, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", shared.ErrTransportFailure, err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", shared.ErrInvalidCatalogData, path, err)
	}

	return nil
}

// ChapterRecords fetches every page of a title's chapter list.
func (s *CatalogService) ChapterRecords(ctx context.Context, titleID string) ([]models.ChapterRecord, error) {
	if titleID == "" {
		return nil, fmt.Errorf("%w: title id is required", shared.ErrMissingArgument)
	}

	path := "/comic/" + url.PathEscape(titleID) + "/chapters"
	var records []models.ChapterRecord

	for page := 1; page <= maxChapterPages; page++ {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(s.chapterLimit))
		query.Set("page", strconv.Itoa(page))
		query.Set("chap-order", "0")
		if s.language != "" {
			query.Set("lang", s.language)
		}

		var resp ChapterListResponse
		if err := s.doRequest(ctx, path, query, &resp); err != nil {
			return nil, err
		}

		for i, c := range resp.Chapters {
			rec := c.Record(titleID)
			if err := rec.Validate(); err != nil {
				return nil, fmt.Errorf("title %s page %d chapter %d: %w", titleID, page, i, err)
			}
			records = append(records, rec)
		}

		if len(resp.Chapters) == 0 || len(resp.Chapters) < s.chapterLimit || (resp.Total > 0 && len(records) >= resp.Total) {
			break
		}
	}

	s.logger.Debug("fetched chapter list", "title", titleID, "count", len(records))
	return records, nil
}

// Chapter fetches the raw chapter payload including its embedded title summary.
func (s *CatalogService) Chapter(ctx context.Context, chapterID string) (*CatalogChapter, error) {
	if chapterID == "" {
		return nil, fmt.Errorf("%w: chapter id is required", shared.ErrMissingArgument)
	}

	var resp ChapterResponse
	if err := s.doRequest(ctx, "/chapter/"+url.PathEscape(chapterID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Chapter == nil || resp.Chapter.HID == "" {
		return nil, fmt.Errorf("%w: chapter %s has no payload", shared.ErrInvalidCatalogData, chapterID)
	}
	return resp.Chapter, nil
}

// ChapterByID fetches one chapter and sets its TitleID from the embedded title summary.
func (s *CatalogService) ChapterByID(ctx context.Context, chapterID string) (*models.ChapterRecord, error) {
	c, err := s.Chapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	titleID := ""
	if c.Comic != nil {
		titleID = c.Comic.HID
	}
	rec := c.Record(titleID)
	return &rec, nil
}

// TitleByChapterID resolves the title id of a chapter.
func (s *CatalogService) TitleByChapterID(ctx context.Context, chapterID string) (string, error) {
	c, err := s.Chapter(ctx, chapterID)
	if err != nil {
		return "", err
	}
	if c.Comic == nil || c.Comic.HID == "" {
		return "", fmt.Errorf("%w: chapter %s has no title", shared.ErrInvalidCatalogData, chapterID)
	}
	return c.Comic.HID, nil
}

// Title fetches title metadata by slug or title id.
func (s *CatalogService) Title(ctx context.Context, slugOrID string) (*models.Title, error) {
	if slugOrID == "" {
		return nil, fmt.Errorf("%w: title slug is required", shared.ErrMissingArgument)
	}

	var resp ComicResponse
	if err := s.doRequest(ctx, "/comic/"+url.PathEscape(slugOrID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Comic == nil || resp.Comic.HID == "" {
		return nil, fmt.Errorf("%w: comic %s has no payload", shared.ErrInvalidCatalogData, slugOrID)
	}

	t := resp.Comic.Model()
	return &t, nil
}

// ChapterImages fetches the page images of a chapter.
//
// The endpoint answers with a bare array or with {"images": [...]}; both are accepted.
func (s *CatalogService) ChapterImages(ctx context.Context, chapterID string) ([]models.ChapterImage, error) {
	if chapterID == "" {
		return nil, fmt.Errorf("%w: chapter id is required", shared.ErrMissingArgument)
	}

	var raw json.RawMessage
	if err := s.doRequest(ctx, "/chapter/"+url.PathEscape(chapterID)+"/get_images", nil, &raw); err != nil {
		return nil, err
	}

	var images []CatalogImage
	if err := decodeList(raw, "images", &images); err != nil {
		return nil, fmt.Errorf("%w: images of %s: %v", shared.ErrInvalidCatalogData, chapterID, err)
	}

	out := make([]models.ChapterImage, 0, len(images))
	for _, img := range images {
		if img.B2Key == "" {
			continue
		}
		out = append(out, img.Model())
	}
	return out, nil
}

// Search lists titles matching filter.
func (s *CatalogService) Search(ctx context.Context, filter models.FilterState) ([]models.Title, error) {
	var comics []CatalogComic
	if err := s.doRequest(ctx, "/v1.0/search/", filter.Values(), &comics); err != nil {
		return nil, err
	}

	titles := make([]models.Title, 0, len(comics))
	for _, c := range comics {
		if c.HID == "" {
			continue
		}
		titles = append(titles, c.Model())
	}
	return titles, nil
}

// Latest lists the hot feed of recently updated chapters.
//
// The feed answers with a bare array or with {"chapters": [...]}; both are accepted.
func (s *CatalogService) Latest(ctx context.Context, page, limit int) ([]models.LatestChapter, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = models.DefaultBrowseLimit
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("order", "hot")
	query.Set("limit", strconv.Itoa(limit))

	var raw json.RawMessage
	if err := s.doRequest(ctx, "/chapter/", query, &raw); err != nil {
		return nil, err
	}

	var chapters []CatalogChapter
	if err := decodeList(raw, "chapters", &chapters); err != nil {
		return nil, fmt.Errorf("%w: hot feed: %v", shared.ErrInvalidCatalogData, err)
	}

	out := make([]models.LatestChapter, 0, len(chapters))
	for _, c := range chapters {
		if c.HID == "" || c.Comic == nil {
			continue
		}
		title := CatalogComic{HID: c.Comic.HID, Slug: c.Comic.Slug, Title: c.Comic.Title, Status: c.Comic.Status, Covers: c.Comic.Covers}.Model()
		out = append(out, models.LatestChapter{Chapter: c.Record(c.Comic.HID), Title: title})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// decodeList decodes raw as a JSON array, or as an object holding the array under key.
func decodeList(raw json.RawMessage, key string, dst any) error {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(raw, dst)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	list, ok := wrapper[key]
	if !ok {
		return fmt.Errorf("missing %q", key)
	}
	return json.Unmarshal(list, dst)
}
