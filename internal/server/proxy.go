package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mangax/internal/services"
	"github.com/desertthunder/mangax/internal/shared"
)

// ProxyPrefix is the route served by [ProxyHandler].
const ProxyPrefix = "/api/manga/"

// Upstream performs raw GET requests against the catalog API.
type Upstream interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

var _ Upstream = (*services.APIService)(nil)

// ProxyHandler relays GET /api/manga/{path}?{query} to the catalog API.
type ProxyHandler struct {
	upstream Upstream
	logger   *log.Logger
}

// NewProxyHandler creates a [ProxyHandler].
func NewProxyHandler(upstream Upstream, logger *log.Logger) *ProxyHandler {
	return &ProxyHandler{upstream: upstream, logger: shared.WithLogger(logger, "component", "proxy")}
}

// Routes returns the HTTP routes this handler serves.
func (h *ProxyHandler) Routes() []string {
	return []string{ProxyPrefix}
}

// ServeHTTP forwards path and query to the upstream and writes its JSON body back.
//
// A non-2xx upstream status is passed through with an error body. Network failures and bodies that are not JSON
// are reported as a 500.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, ProxyPrefix)
	if path == "" {
		writeError(w, http.StatusNotFound, "Missing manga API path")
		return
	}

	target := "/" + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	resp, err := h.upstream.Get(r.Context(), target)
	if err != nil {
		h.logger.Error("error fetching from manga API", "path", target, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch from manga API")
		return
	}

	if !resp.OK() {
		h.logger.Warn("manga API returned an error", "path", target, "status", resp.StatusCode)
		writeError(w, resp.StatusCode, fmt.Sprintf("Error from manga API: %s", http.StatusText(resp.StatusCode)))
		return
	}

	if !resp.IsJSON {
		h.logger.Error("manga API returned a non-JSON body", "path", target)
		writeError(w, http.StatusInternalServerError, "Failed to fetch from manga API")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Warn("failed to write proxy response", "error", err)
	}
}
