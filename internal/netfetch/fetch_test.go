package netfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestGetDisabledClient(t *testing.T) {
	c := NewClient(false, 3)
	if _, _, err := c.Get(context.Background(), "http://example.invalid/x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("disabled client returned %v, want ErrUnavailable", err)
	}
}

func TestGetStripsContentTypeParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png; charset=binary")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := NewClient(true, 1)
	body, contentType, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != "png-bytes" {
		t.Errorf("body = %q", body)
	}
	if contentType != "image/png" {
		t.Errorf("content type = %q, want parameters stripped", contentType)
	}
}

func TestGetRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := NewClient(true, 3, WithBackoff(0))
	body, contentType, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("server saw %d attempts, want 3", attempts)
	}
	if string(body) != "mp3" || contentType != "audio/mpeg" {
		t.Errorf("got %q %q", body, contentType)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(true, 2, WithBackoff(0))
	_, _, err := c.Get(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
	if attempts != 2 {
		t.Errorf("server saw %d attempts, want 2", attempts)
	}
}

func TestGetHonorsContextBetweenAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(true, 5)
	_, _, err := c.Get(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestSaveChoosesExtension(t *testing.T) {
	tests := []struct {
		contentType string
		wantExt     string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"audio/mpeg", ".mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte("payload"))
			}))
			defer srv.Close()

			prefix := filepath.Join(t.TempDir(), "asset")
			c := NewClient(true, 1)
			path, err := c.Save(context.Background(), prefix, srv.URL)
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if path != prefix+tt.wantExt {
				t.Errorf("saved to %q, want extension %s", path, tt.wantExt)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("saved file missing: %v", err)
			}
			if string(data) != "payload" {
				t.Errorf("saved content %q", data)
			}
		})
	}
}

func TestSaveRejectsUnknownType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not found page</html>"))
	}))
	defer srv.Close()

	prefix := filepath.Join(t.TempDir(), "asset")
	c := NewClient(true, 1)
	if _, err := c.Save(context.Background(), prefix, srv.URL); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}

	entries, err := os.ReadDir(filepath.Dir(prefix))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unsupported type must write nothing, found %v", entries)
	}
}

func TestNewClientClampsRetries(t *testing.T) {
	c := NewClient(true, 0)
	if c.Retries != 1 {
		t.Errorf("Retries = %d, want clamped to 1", c.Retries)
	}
}
