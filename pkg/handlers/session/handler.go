package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/handlers/render"
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/cost"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/de-tools/cost-planner/pkg/services/wizard"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxUploadSize = 32 << 20

// Estimator is the subset of the estimator client the session endpoints use.
type Estimator interface {
	session.Suggester
	Upload(ctx context.Context, filename string, file io.Reader) (domain.Project, error)
	ClarifyQuestions(ctx context.Context, resources []domain.Resource) ([]domain.Question, error)
	GenerateUsage(
		ctx context.Context,
		resources []domain.Resource,
		questions []domain.Question,
		answers []string,
	) (domain.UsageAnswer, error)
	GenerateUsageLegacy(
		ctx context.Context,
		resources []domain.Resource,
		answers []domain.ResourceAnswer,
	) (domain.UsageAnswer, error)
	AskCopilot(ctx context.Context, question string, resources []domain.Resource) (string, error)
	ListTemplates(ctx context.Context) ([]domain.UsageTemplate, error)
	ApplyTemplate(ctx context.Context, templateID string, resources []domain.Resource) (domain.UsageAnswer, error)
}

type Handler struct {
	store     *session.Store
	estimator Estimator
}

func NewHandler(store *session.Store, estimator Estimator) *Handler {
	return &Handler{
		store:     store,
		estimator: estimator,
	}
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	project, err := h.estimator.Upload(ctx, header.Filename, file)
	if err != nil {
		render.UpstreamError(w, r, err, "failed to upload file")
		return
	}

	// Re-uploading an edited project can keep the usage of resources whose
	// names survive instead of asking for fresh suggestions.
	var snapshot session.Snapshot
	if keep, _ := strconv.ParseBool(r.URL.Query().Get("keep_adjustments")); keep {
		snapshot = h.store.ReplaceResources(project.ID, project.Resources)
	} else {
		snapshot = h.store.Ingest(ctx, project, h.estimator)
	}
	logger.Info().
		Str("project", snapshot.ProjectID).
		Int("resources", len(snapshot.Resources)).
		Msg("project uploaded")

	h.writeSnapshot(w, r, snapshot)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	field, err := cost.ParseSortField(params.Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	descending := true
	switch params.Get("order") {
	case "", "desc":
	case "asc":
		descending = false
	default:
		http.Error(w, "order must be asc or desc", http.StatusBadRequest)
		return
	}

	snapshot := h.store.Snapshot()
	items := cost.LineItems(snapshot.Resources, snapshot.Adjustments)
	query := cost.Query{
		Search:       params.Get("search"),
		ResourceType: params.Get("type"),
		SortField:    field,
		Descending:   descending,
	}

	render.JSON(w, r, http.StatusOK, api.Breakdown{
		Resources: adapters.MapDomainLineItemsToAPI(query.Apply(items)),
		Groups:    adapters.MapDomainTypeGroupsToAPI(cost.GroupByType(items)),
		Types:     cost.ResourceTypes(snapshot.Resources),
		Total:     cost.FormatAmount(cost.Total(snapshot.Resources, snapshot.Adjustments)),
	})
}

func (h *Handler) UpdateAdjustment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid resource index", http.StatusBadRequest)
		return
	}

	var req api.AdjustmentRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Adjustment == nil {
		http.Error(w, "adjustment is required", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateAdjustment(index, *req.Adjustment); err != nil {
		h.writeUpdateError(w, err)
		return
	}
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) UpdateAdjustments(w http.ResponseWriter, r *http.Request) {
	var req map[string]int
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	values := make(domain.Adjustments, len(req))
	for key, value := range req {
		index, err := strconv.Atoi(key)
		if err != nil {
			http.Error(w, "invalid resource index: "+key, http.StatusBadRequest)
			return
		}
		values[index] = value
	}

	if err := h.store.UpdateAdjustments(values); err != nil {
		h.writeUpdateError(w, err)
		return
	}
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) ApplyUsage(w http.ResponseWriter, r *http.Request) {
	var req api.UsageRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.store.ApplyUsage(adapters.MapAPIUsageToDomain(req.Usage))
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.estimator.ListTemplates(r.Context())
	if err != nil {
		render.UpstreamError(w, r, err, "failed to get templates")
		return
	}
	render.JSON(w, r, http.StatusOK, adapters.MapDomainTemplatesToAPI(templates))
}

func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	usage, err := h.estimator.ApplyTemplate(ctx, id, h.store.Resources())
	if err != nil {
		render.UpstreamError(w, r, err, "failed to apply template")
		return
	}

	h.store.ApplyUsage(usage)
	zerolog.Ctx(ctx).Info().Str("template", id).Msg("usage template applied")
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) WizardQuestions(w http.ResponseWriter, r *http.Request) {
	resources := h.store.Resources()
	if len(resources) == 0 {
		http.Error(w, wizard.ErrNoResources.Error(), http.StatusBadRequest)
		return
	}

	questions, err := h.estimator.ClarifyQuestions(r.Context(), resources)
	if err != nil {
		render.UpstreamError(w, r, err, "failed to get questions")
		return
	}
	render.JSON(w, r, http.StatusOK, api.QuestionsResponse{
		Questions: adapters.MapDomainQuestionsToAPI(questions),
	})
}

func (h *Handler) WizardUsage(w http.ResponseWriter, r *http.Request) {
	var req api.WizardUsageRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resources := h.store.Resources()
	if len(resources) == 0 {
		http.Error(w, wizard.ErrNoResources.Error(), http.StatusBadRequest)
		return
	}

	var (
		usage domain.UsageAnswer
		err   error
	)
	if len(req.ResourceAnswers) > 0 {
		usage, err = h.estimator.GenerateUsageLegacy(
			r.Context(),
			resources,
			adapters.MapAPIResourceAnswersToDomain(req.ResourceAnswers),
		)
	} else {
		usage, err = h.estimator.GenerateUsage(
			r.Context(),
			resources,
			adapters.MapAPIQuestionsToDomain(req.Questions),
			req.Answers,
		)
	}
	if err != nil {
		render.UpstreamError(w, r, err, "failed to generate usage")
		return
	}

	h.store.ApplyUsage(usage)
	h.writeSnapshot(w, r, h.store.Snapshot())
}

func (h *Handler) Copilot(w http.ResponseWriter, r *http.Request) {
	var req api.CopilotQuestion
	if err := render.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	answer, err := h.estimator.AskCopilot(r.Context(), req.Question, h.store.Resources())
	if err != nil {
		render.UpstreamError(w, r, err, "failed to get answer")
		return
	}
	render.JSON(w, r, http.StatusOK, api.CopilotAnswer{Answer: answer})
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, r *http.Request, snapshot session.Snapshot) {
	render.JSON(w, r, http.StatusOK,
		adapters.MapDomainSessionToAPI(snapshot.ProjectID, snapshot.Resources, snapshot.Adjustments))
}

func (h *Handler) writeUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrUnknownResource) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
