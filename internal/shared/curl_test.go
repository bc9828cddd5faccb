package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantErr     bool
	}{
		{
			name:        "single header with single quotes",
			curlCmd:     `curl -H 'User-Agent: Mozilla/5.0' https://api.comick.fun/comic/x`,
			wantHeaders: map[string]string{"User-Agent": "Mozilla/5.0"},
		},
		{
			name:        "single header with double quotes",
			curlCmd:     `curl -H "Referer: https://comick.io/" https://api.comick.fun/comic/x`,
			wantHeaders: map[string]string{"Referer": "https://comick.io/"},
		},
		{
			name:    "multiple headers",
			curlCmd: `curl -H 'accept: application/json' -H 'origin: https://comick.io' https://api.comick.fun`,
			wantHeaders: map[string]string{
				"accept": "application/json",
				"origin": "https://comick.io",
			},
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl -b 'cf_clearance=abc123' https://api.comick.fun`,
			wantHeaders: map[string]string{},
			wantCookie:  "cf_clearance=abc123",
		},
		{
			name:        "cookie header is excluded from regular headers",
			curlCmd:     `curl -H 'Cookie: cf_clearance=abc123' -H 'accept: */*' https://api.comick.fun`,
			wantHeaders: map[string]string{"accept": "*/*"},
			wantCookie:  "cf_clearance=abc123",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.comick.fun`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'https://api.comick.fun/chapter/abc' \
  -H 'accept: application/json' \
  -H 'user-agent : Mozilla/5.0' \
  --compressed`,
			wantHeaders: map[string]string{
				"accept":     "application/json",
				"user-agent": "Mozilla/5.0",
			},
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.comick.fun`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}

			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}

			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}

			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		curlCmd := `curl -H 'accept: application/json' -H 'Referer: https://comick.io/' https://api.comick.fun`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if len(result.Headers) != 2 {
			t.Errorf("ParseCurlFile() headers count = %v, want 2", len(result.Headers))
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}

func TestCurlHeaders(t *testing.T) {
	t.Run("All folds cookie into headers", func(t *testing.T) {
		h := &CurlHeaders{Headers: map[string]string{"accept": "*/*"}, Cookie: "a=b"}
		all := h.All()

		if all["accept"] != "*/*" {
			t.Errorf("expected accept header, got %v", all)
		}
		if all["Cookie"] != "a=b" {
			t.Errorf("expected Cookie header a=b, got %q", all["Cookie"])
		}
		if _, ok := h.Headers["Cookie"]; ok {
			t.Error("All must not mutate the receiver")
		}
	})

	t.Run("All without cookie", func(t *testing.T) {
		h := &CurlHeaders{Headers: map[string]string{"accept": "*/*"}}
		if _, ok := h.All()["Cookie"]; ok {
			t.Error("expected no Cookie header")
		}
	})

	t.Run("Save and Load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "headers.json")
		h := &CurlHeaders{Headers: map[string]string{"user-agent": "test"}, Cookie: "x=y"}

		if err := h.Save(path); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		loaded, err := LoadCurlHeaders(path)
		if err != nil {
			t.Fatalf("LoadCurlHeaders() error = %v", err)
		}
		if loaded.Headers["user-agent"] != "test" || loaded.Cookie != "x=y" {
			t.Errorf("unexpected headers after round trip: %+v", loaded)
		}
	})

	t.Run("Load invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "headers.json")
		if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := LoadCurlHeaders(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
