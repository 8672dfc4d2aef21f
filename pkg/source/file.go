package source

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cfaller/planweave/pkg/errors"
)

// FileLoader reads a document from a local JSON or YAML file. The format is
// chosen by file extension.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the given path.
func NewFileLoader(path string) (*FileLoader, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &FileLoader{path: path}, nil
}

// Load reads and decodes the file. The datasetID argument is ignored; a
// file is its own dataset.
func (l *FileLoader) Load(ctx context.Context, datasetID string) (*Document, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", l.path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", l.path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}

// ReadJSON decodes a JSON document from r.
//
// The input must be a JSON object; its top-level "id" field, when present,
// becomes the dataset id. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decoding json document")
	}
	return &Document{ID: documentID(raw), Raw: raw}, nil
}

// ReadYAML decodes a YAML document from r. Mapping keys must be strings.
// ReadYAML does not close r.
func ReadYAML(r io.Reader) (*Document, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decoding yaml document")
	}
	return &Document{ID: documentID(raw), Raw: raw}, nil
}

var _ Loader = (*FileLoader)(nil)
