package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/cfaller/planweave/pkg/errors"
	"github.com/cfaller/planweave/pkg/export"
	"github.com/cfaller/planweave/pkg/layout/state"
	"github.com/cfaller/planweave/pkg/pipeline"
)

// layoutResponse wraps the rendering document with run metadata.
type layoutResponse struct {
	Document  export.Document    `json:"document"`
	Stats     pipeline.Stats     `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

// handleLayout runs the full pipeline for the posted options.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
			return
		}
	}
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), s.loader, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		Document:  result.Document,
		Stats:     result.Stats,
		CacheInfo: result.CacheInfo,
	})
}

// overridesResponse lists the stored override maps for a dataset.
type overridesResponse struct {
	Dataset     string             `json:"dataset"`
	Workstreams map[string]float64 `json:"workstreams"`
	Placements  map[string]float64 `json:"placements"`
}

func (s *Server) handleOverridesList(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, overridesResponse{
		Dataset:     store.DatasetID(),
		Workstreams: store.Workstreams(),
		Placements:  store.Placements(),
	})
}

func (s *Server) handleOverridesReset(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}

	if err := store.Reset(r.Context()); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStoreWrite, err, "resetting overrides"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// workstreamCommitRequest is the body of a workstream drag commit. The
// client sends the committed track position, the drag delta, and the
// current absolute y of each placement on the track.
type workstreamCommitRequest struct {
	Y          float64            `json:"y"`
	Delta      float64            `json:"delta"`
	Placements map[string]float64 `json:"placements"`
}

func (s *Server) handleWorkstreamCommit(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}
	workstreamID := chi.URLParam(r, "workstream")
	if err := apperrors.ValidateNodeID(workstreamID); err != nil {
		writeError(w, err)
		return
	}

	var req workstreamCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	if err := store.CommitWorkstreamDrag(r.Context(), workstreamID, req.Y, req.Delta, req.Placements); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStoreWrite, err, "committing workstream drag"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// placementCommitRequest is the body of a single-placement drag commit.
type placementCommitRequest struct {
	Y float64 `json:"y"`
}

func (s *Server) handlePlacementCommit(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}
	placementID := chi.URLParam(r, "placement")
	if err := apperrors.ValidateNodeID(placementID); err != nil {
		writeError(w, err)
		return
	}

	var req placementCommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decoding request body"))
		return
	}

	if err := store.CommitPlacementDrag(r.Context(), placementID, req.Y); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStoreWrite, err, "committing placement drag"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWorkstreamRemove drops one workstream override. Unknown ids map to
// 404 so clients can distinguish "nothing stored" from a successful drop.
func (s *Server) handleWorkstreamRemove(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}
	workstreamID := chi.URLParam(r, "workstream")
	if err := apperrors.ValidateNodeID(workstreamID); err != nil {
		writeError(w, err)
		return
	}

	found, err := store.RemoveWorkstream(r.Context(), workstreamID)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStoreWrite, err, "removing workstream override"))
		return
	}
	if !found {
		writeError(w, apperrors.New(apperrors.ErrCodeWorkstreamNotFound,
			"no override stored for workstream %q", workstreamID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePlacementRemove drops one placement override.
func (s *Server) handlePlacementRemove(w http.ResponseWriter, r *http.Request) {
	store, ok := s.openOverrides(w, r)
	if !ok {
		return
	}
	placementID := chi.URLParam(r, "placement")
	if err := apperrors.ValidateNodeID(placementID); err != nil {
		writeError(w, err)
		return
	}

	found, err := store.RemovePlacement(r.Context(), placementID)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStoreWrite, err, "removing placement override"))
		return
	}
	if !found {
		writeError(w, apperrors.New(apperrors.ErrCodePlacementNotFound,
			"no override stored for placement %q", placementID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// openOverrides loads the override store for the dataset in the URL. On
// failure it writes the error response and returns ok=false.
func (s *Server) openOverrides(w http.ResponseWriter, r *http.Request) (*state.Store, bool) {
	dataset := chi.URLParam(r, "dataset")
	if err := apperrors.ValidateDatasetID(dataset); err != nil {
		writeError(w, err)
		return nil, false
	}

	store := state.New(s.runner.Store, dataset, s.logger)
	store.Load(r.Context())
	return store, true
}
