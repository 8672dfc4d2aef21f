package source

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	apperrors "github.com/cfaller/planweave/pkg/errors"
	"github.com/cfaller/planweave/pkg/httputil"
	"github.com/cfaller/planweave/pkg/kv"
)

// HTTPLoader reads a planning document from a remote URL. Responses are
// cached through the fetcher, so repeated runs against the same URL only
// refetch after the TTL elapses.
type HTTPLoader struct {
	fetcher *httputil.Fetcher
	url     string
}

// NewHTTPLoader creates a loader for the given http or https URL. The
// store backs the response cache; pass nil to fetch on every load.
func NewHTTPLoader(rawURL string, store kv.Store, ttl time.Duration) (*HTTPLoader, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "parsing document URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidPath, "document URL must use http or https")
	}
	return &HTTPLoader{
		fetcher: httputil.NewFetcher(store, ttl),
		url:     rawURL,
	}, nil
}

// Load fetches and decodes the remote document. The format is chosen by
// the URL path extension; anything that is not .yaml or .yml decodes as
// JSON.
func (l *HTTPLoader) Load(ctx context.Context, datasetID string) (*Document, error) {
	body, err := l.fetcher.Fetch(ctx, l.url)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "fetching remote document")
	}

	switch strings.ToLower(path.Ext(l.urlPath())) {
	case ".yaml", ".yml":
		return ReadYAML(bytes.NewReader(body))
	default:
		return ReadJSON(bytes.NewReader(body))
	}
}

func (l *HTTPLoader) urlPath() string {
	u, err := url.Parse(l.url)
	if err != nil {
		return ""
	}
	return u.Path
}
