package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/mangax/internal/navigator"
	"github.com/desertthunder/mangax/internal/services"
	"github.com/desertthunder/mangax/internal/shared"
	tu "github.com/desertthunder/mangax/internal/testing"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("unexpected order %s", got)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, r *http.Request) {})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if body := decode[ErrorResponse](t, rec); body.Error != "Method not allowed" {
			t.Errorf("unexpected error body %q", body.Error)
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(RequestIDFrom(r.Context())))
	})

	t.Run("RequestID generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequestID()(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("expected a request id header")
		}
		if rec.Body.String() != id {
			t.Errorf("expected id %s in context, got %s", id, rec.Body.String())
		}
	})

	t.Run("RequestID reuses the incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		RequestID()(ok).ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc" {
			t.Errorf("expected abc, got %s", got)
		}
	})

	t.Run("Logging records status", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		RequestID()(Logging(logger)(teapot)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

		out := buf.String()
		for _, want := range []string{"path=/brew", "status=418", "request_id="} {
			if !strings.Contains(out, want) {
				t.Errorf("log missing %q: %s", want, out)
			}
		}
	})

	t.Run("Recover", func(t *testing.T) {
		boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		Recover(shared.NewLogger(io.Discard))(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestProxyHandler(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	newProxy := func(t *testing.T, handler http.HandlerFunc) *ProxyHandler {
		t.Helper()
		upstream := httptest.NewServer(handler)
		t.Cleanup(upstream.Close)
		return NewProxyHandler(services.NewAPIService(upstream.URL, upstream.Client()), logger)
	}

	t.Run("forwards path and query", func(t *testing.T) {
		var gotPath, gotQuery string
		proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
			w.Write([]byte(`{"chapters":[]}`))
		})

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manga/comic/abc/chapters?lang=en&limit=5", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotPath != "/comic/abc/chapters" {
			t.Errorf("unexpected upstream path %s", gotPath)
		}
		if gotQuery != "lang=en&limit=5" {
			t.Errorf("unexpected upstream query %s", gotQuery)
		}
		if rec.Body.String() != `{"chapters":[]}` {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
	})

	t.Run("upstream error keeps status", func(t *testing.T) {
		proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"statusCode":404}`))
		})

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manga/comic/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if body := decode[ErrorResponse](t, rec); body.Error != "Error from manga API: Not Found" {
			t.Errorf("unexpected error %q", body.Error)
		}
	})

	t.Run("non-JSON body", func(t *testing.T) {
		proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html></html>"))
		})

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manga/comic/abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		proxy := NewProxyHandler(services.NewAPIService("http://upstream.invalid", client), logger)

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manga/comic/abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if body := decode[ErrorResponse](t, rec); body.Error != "Failed to fetch from manga API" {
			t.Errorf("unexpected error %q", body.Error)
		}
	})

	t.Run("rejects other methods and empty paths", func(t *testing.T) {
		proxy := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("upstream should not be called")
		})

		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/manga/comic/abc", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manga/", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestNavigationHandler(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	catalog := tu.NewMockCatalog("t1",
		tu.Chapter("c1", "1", "Alpha"),
		tu.Chapter("c2", "2", "Beta"),
		tu.Chapter("c3", "3", "Alpha"),
	)
	catalog.Titles["orphan"] = "t1"
	catalog.AddTitle("broken")
	catalog.Errors["broken"] = fmt.Errorf("%w: status 503", shared.ErrTransportFailure)

	router := NewBasicRouter()
	router.Handler(NewNavigationHandler(navigator.ControllerOpts{Catalog: catalog}, logger))

	get := func(t *testing.T, query string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, NavigationPath+"?"+query, nil))
		return rec
	}

	t.Run("follows the current group", func(t *testing.T) {
		rec := get(t, "title=t1&chapter=c1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		resp := decode[NavigationResponse](t, rec)
		if resp.Phase != "ready" {
			t.Errorf("expected ready, got %s", resp.Phase)
		}
		if resp.Previous != nil {
			t.Errorf("expected no previous")
		}
		if resp.Next == nil || resp.Next.ID != "c3" {
			t.Errorf("expected next c3, got %+v", resp.Next)
		}
		if resp.PreferredGroup != "Alpha" {
			t.Errorf("expected preferred group Alpha, got %s", resp.PreferredGroup)
		}
		if strings.Join(resp.Groups, ",") != "Alpha,Beta" {
			t.Errorf("unexpected groups %v", resp.Groups)
		}
	})

	t.Run("group parameter overrides", func(t *testing.T) {
		resp := decode[NavigationResponse](t, get(t, "title=t1&chapter=c1&group=Beta"))
		if resp.Next == nil || resp.Next.ID != "c2" {
			t.Errorf("expected next c2, got %+v", resp.Next)
		}

		resp = decode[NavigationResponse](t, get(t, "title=t1&chapter=c1&group="))
		if resp.Next == nil || resp.Next.ID != "c2" {
			t.Errorf("expected adjacent next c2 with an empty group, got %+v", resp.Next)
		}
	})

	t.Run("title looked up from chapter", func(t *testing.T) {
		resp := decode[NavigationResponse](t, get(t, "chapter=c3"))
		if resp.TitleID != "t1" {
			t.Errorf("expected title t1, got %s", resp.TitleID)
		}
		if resp.Previous == nil || resp.Previous.ID != "c1" {
			t.Errorf("expected previous c1, got %+v", resp.Previous)
		}
	})

	t.Run("missing chapter", func(t *testing.T) {
		rec := get(t, "title=t1")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("chapter not in sequence", func(t *testing.T) {
		rec := get(t, "chapter=orphan")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		resp := decode[NavigationResponse](t, rec)
		if !resp.Unavailable || resp.Phase != "failed" {
			t.Errorf("expected unavailable failed state, got %+v", resp)
		}
		if resp.Previous != nil || resp.Next != nil {
			t.Errorf("expected no neighbors")
		}
	})

	t.Run("unknown chapter", func(t *testing.T) {
		rec := get(t, "chapter=nope")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		rec := get(t, "title=broken&chapter=x")
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if resp := decode[NavigationResponse](t, rec); !resp.Retryable {
			t.Errorf("expected retryable error")
		}
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), shared.NewLogger(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
