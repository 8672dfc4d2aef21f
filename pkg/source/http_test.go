package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cfaller/planweave/pkg/kv"
)

func TestHTTPLoader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/roadmap.json":
			w.Write([]byte(jsonDoc))
		case "/roadmap.yaml":
			w.Write([]byte(yamlDoc))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	tests := []struct {
		name string
		path string
	}{
		{"json", "/roadmap.json"},
		{"yaml", "/roadmap.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewHTTPLoader(ts.URL+tt.path, kv.NewMemoryStore(), time.Hour)
			if err != nil {
				t.Fatalf("NewHTTPLoader() error = %v", err)
			}
			doc, err := loader.Load(context.Background(), "")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if doc.ID != "q3-roadmap" {
				t.Errorf("doc.ID = %q, want q3-roadmap", doc.ID)
			}
		})
	}
}

func TestHTTPLoaderMissing(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	loader, err := NewHTTPLoader(ts.URL+"/gone.json", nil, 0)
	if err != nil {
		t.Fatalf("NewHTTPLoader() error = %v", err)
	}
	if _, err := loader.Load(context.Background(), ""); err == nil {
		t.Fatal("Load() error = nil, want fetch error")
	}
}

func TestNewHTTPLoaderRejectsScheme(t *testing.T) {
	if _, err := NewHTTPLoader("ftp://example.com/roadmap.json", nil, 0); err == nil {
		t.Fatal("NewHTTPLoader() error = nil, want scheme error")
	}
}
