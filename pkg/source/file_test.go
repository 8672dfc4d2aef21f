package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cfaller/planweave/pkg/errors"
)

const jsonDoc = `{
  "id": "q3-roadmap",
  "type": "roadmap",
  "name": "Q3",
  "strategies": [
    {
      "id": "s1",
      "name": "Strategy",
      "programs": [
        {
          "id": "p1",
          "name": "Program",
          "workstreams": [
            {"id": "ws-a", "name": "Alpha", "milestones": []}
          ]
        }
      ]
    }
  ]
}`

const yamlDoc = `
id: q3-roadmap
type: roadmap
name: Q3
strategies:
  - id: s1
    name: Strategy
    programs:
      - id: p1
        name: Program
        workstreams:
          - id: ws-a
            name: Alpha
            milestones: []
`

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFileLoader(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json", file: "roadmap.json", content: jsonDoc},
		{name: "yaml", file: "roadmap.yaml", content: yamlDoc},
		{name: "yml extension", file: "roadmap.yml", content: yamlDoc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, err := NewFileLoader(writeDoc(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("NewFileLoader() error = %v", err)
			}

			doc, err := loader.Load(context.Background(), "")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if doc.ID != "q3-roadmap" {
				t.Errorf("doc.ID = %q, want %q", doc.ID, "q3-roadmap")
			}
			if doc.Raw["name"] != "Q3" {
				t.Errorf("doc.Raw[name] = %v, want Q3", doc.Raw["name"])
			}

			strategies, ok := doc.Raw["strategies"].([]any)
			if !ok || len(strategies) != 1 {
				t.Fatalf("strategies = %T %v, want one-element slice", doc.Raw["strategies"], doc.Raw["strategies"])
			}
			strategy, ok := strategies[0].(map[string]any)
			if !ok {
				t.Fatalf("strategy = %T, want map", strategies[0])
			}
			if strategy["id"] != "s1" {
				t.Errorf("strategy id = %v, want s1", strategy["id"])
			}
		})
	}
}

func TestFileLoaderMissingFile(t *testing.T) {
	loader, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("NewFileLoader() error = %v", err)
	}
	_, err = loader.Load(context.Background(), "")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFileLoaderRejectsTraversal(t *testing.T) {
	if _, err := NewFileLoader("../outside.json"); err == nil {
		t.Error("NewFileLoader() accepted a traversal path")
	}
}

func TestReadJSONNumericID(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(`{"id": 42, "type": "roadmap", "name": "n"}`))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if doc.ID != "42" {
		t.Errorf("doc.ID = %q, want %q", doc.ID, "42")
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("ReadJSON() error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestReadYAMLNumericID(t *testing.T) {
	doc, err := ReadYAML(strings.NewReader("id: 42\ntype: roadmap\nname: n\n"))
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if doc.ID != "42" {
		t.Errorf("doc.ID = %q, want %q", doc.ID, "42")
	}
}
