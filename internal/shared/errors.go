package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Catalog and navigation errors
	ErrTransportFailure     = fmt.Errorf("catalog request failed")
	ErrInvalidCatalogData   = fmt.Errorf("invalid catalog data")
	ErrChapterNotInSequence = fmt.Errorf("chapter not in sequence")
	ErrTitleNotFound        = fmt.Errorf("title not found")
	ErrChapterNotFound      = fmt.Errorf("chapter not found")
	ErrServiceUnavailable   = fmt.Errorf("service unavailable")
	ErrCacheMiss            = fmt.Errorf("cache miss")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
