package scenario

import (
	"errors"
	"net/http"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/handlers/render"
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	msgNotFound       = "scenario not found"
	msgSelectTwoToCmp = "select two scenarios to compare"
)

type Handler struct {
	scenarios *scenario.Service
	session   *session.Store
}

func NewHandler(scenarios *scenario.Service, store *session.Store) *Handler {
	return &Handler{
		scenarios: scenarios,
		session:   store,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scenarios := h.scenarios.List()

	response := make([]api.ScenarioSummary, 0, len(scenarios))
	for _, sc := range scenarios {
		response = append(response, adapters.MapDomainScenarioSummaryToAPI(sc))
	}
	render.JSON(w, r, http.StatusOK, response)
}

// Save snapshots the live session under a new scenario.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SaveScenarioRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshot := h.session.Snapshot()
	id, err := h.scenarios.Save(ctx, req.Name, req.Description, snapshot.Resources, snapshot.Adjustments)
	if err != nil {
		if errors.Is(err, scenario.ErrEmptyName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to save scenario")
		http.Error(w, "failed to save scenario", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, http.StatusCreated, api.SaveScenarioResponse{ID: id})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.scenarios.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}
	render.JSON(w, r, http.StatusOK, adapters.MapDomainScenarioToAPI(sc))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.scenarios.Delete(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("id", id).Msg("failed to delete scenario")
		http.Error(w, "failed to delete scenario", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Load restores a scenario into the live session.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	loaded, ok := h.scenarios.Load(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	snapshot := h.session.Restore(loaded)
	render.JSON(w, r, http.StatusOK,
		adapters.MapDomainSessionToAPI(snapshot.ProjectID, snapshot.Resources, snapshot.Adjustments))
}

// Compare diffs the scenarios named by the baseline and proposed query
// parameters, or the current comparison selection when both are omitted.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	baselineID := r.URL.Query().Get("baseline")
	proposedID := r.URL.Query().Get("proposed")

	var (
		cmp *domain.Comparison
		ok  bool
	)
	if baselineID == "" && proposedID == "" {
		cmp, ok = h.scenarios.Compare()
	} else {
		cmp, ok = h.scenarios.CompareIDs(baselineID, proposedID)
		if ok {
			h.scenarios.SetComparison(baselineID, proposedID)
		}
	}

	if !ok {
		http.Error(w, msgSelectTwoToCmp, http.StatusNotFound)
		return
	}
	render.JSON(w, r, http.StatusOK, adapters.MapDomainComparisonToAPI(cmp))
}

func (h *Handler) ExitComparison(w http.ResponseWriter, r *http.Request) {
	h.scenarios.ExitComparison()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Selection(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, http.StatusOK, adapters.MapDomainSelectionToAPI(h.scenarios.Selection()))
}

// SelectActive marks a saved scenario active without touching the session.
func (h *Handler) SelectActive(w http.ResponseWriter, r *http.Request) {
	var req api.SelectActiveRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.scenarios.Get(req.ID); !ok {
		http.Error(w, msgNotFound, http.StatusNotFound)
		return
	}

	h.scenarios.SetActive(req.ID)
	render.JSON(w, r, http.StatusOK, adapters.MapDomainSelectionToAPI(h.scenarios.Selection()))
}
