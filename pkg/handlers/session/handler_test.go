package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/de-tools/cost-planner/pkg/client/estimator"
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEstimator struct {
	mock.Mock
}

func (m *mockEstimator) Upload(ctx context.Context, filename string, file io.Reader) (domain.Project, error) {
	args := m.Called(ctx, filename, file)
	return args.Get(0).(domain.Project), args.Error(1)
}

func (m *mockEstimator) SuggestUsage(ctx context.Context, resource domain.Resource) (int, error) {
	args := m.Called(ctx, resource)
	return args.Int(0), args.Error(1)
}

func (m *mockEstimator) ClarifyQuestions(ctx context.Context, resources []domain.Resource) ([]domain.Question, error) {
	args := m.Called(ctx, resources)
	questions, _ := args.Get(0).([]domain.Question)
	return questions, args.Error(1)
}

func (m *mockEstimator) GenerateUsage(
	ctx context.Context,
	resources []domain.Resource,
	questions []domain.Question,
	answers []string,
) (domain.UsageAnswer, error) {
	args := m.Called(ctx, resources, questions, answers)
	usage, _ := args.Get(0).(domain.UsageAnswer)
	return usage, args.Error(1)
}

func (m *mockEstimator) GenerateUsageLegacy(
	ctx context.Context,
	resources []domain.Resource,
	answers []domain.ResourceAnswer,
) (domain.UsageAnswer, error) {
	args := m.Called(ctx, resources, answers)
	usage, _ := args.Get(0).(domain.UsageAnswer)
	return usage, args.Error(1)
}

func (m *mockEstimator) AskCopilot(ctx context.Context, question string, resources []domain.Resource) (string, error) {
	args := m.Called(ctx, question, resources)
	return args.String(0), args.Error(1)
}

func (m *mockEstimator) ListTemplates(ctx context.Context) ([]domain.UsageTemplate, error) {
	args := m.Called(ctx)
	templates, _ := args.Get(0).([]domain.UsageTemplate)
	return templates, args.Error(1)
}

func (m *mockEstimator) ApplyTemplate(
	ctx context.Context,
	templateID string,
	resources []domain.Resource,
) (domain.UsageAnswer, error) {
	args := m.Called(ctx, templateID, resources)
	usage, _ := args.Get(0).(domain.UsageAnswer)
	return usage, args.Error(1)
}

func project() domain.Project {
	return domain.Project{
		ID: "est-1",
		Resources: []domain.Resource{
			{Name: "web", ResourceType: "aws_instance", MonthlyCost: decimal.RequireFromString("10.00")},
			{Name: "fn", ResourceType: "aws_lambda_function", MonthlyCost: decimal.RequireFromString("5.25")},
		},
	}
}

// seededStore returns a store holding project() at 100% usage.
func seededStore(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(nil)
	store.Ingest(context.Background(), project(), nil)
	return store
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) api.Session {
	t.Helper()
	var response api.Session
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	return response
}

func TestHandler_Upload(t *testing.T) {
	multipartBody := func(t *testing.T) (*bytes.Buffer, string) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "main.tf")
		require.NoError(t, err)
		_, err = part.Write([]byte(`resource "aws_instance" "web" {}`))
		require.NoError(t, err)
		require.NoError(t, writer.Close())
		return &body, writer.FormDataContentType()
	}

	t.Run("uploads and seeds suggestions", func(t *testing.T) {
		est := new(mockEstimator)
		est.On("Upload", mock.Anything, "main.tf", mock.Anything).Return(project(), nil)
		est.On("SuggestUsage", mock.Anything, mock.MatchedBy(func(r domain.Resource) bool { return r.Name == "web" })).
			Return(50, nil)
		est.On("SuggestUsage", mock.Anything, mock.MatchedBy(func(r domain.Resource) bool { return r.Name == "fn" })).
			Return(0, errors.New("llm down"))

		handler := NewHandler(session.NewStore(nil), est)
		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/session/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeSession(t, rec)
		assert.Equal(t, "est-1", response.ProjectID)
		assert.Equal(t, map[int]int{0: 50, 1: 100}, response.Adjustments)
		assert.Equal(t, "10.25", response.Total)
		require.Len(t, response.Resources, 2)
		assert.Equal(t, "5.00", response.Resources[0].AdjustedCost)
		est.AssertExpectations(t)
	})

	t.Run("keep adjustments carries usage by name", func(t *testing.T) {
		reordered := domain.Project{
			ID: "est-2",
			Resources: []domain.Resource{
				{Name: "fn", ResourceType: "aws_lambda_function", MonthlyCost: decimal.RequireFromString("5.25")},
				{Name: "db", ResourceType: "aws_db_instance", MonthlyCost: decimal.RequireFromString("30.00")},
				{Name: "web", ResourceType: "aws_instance", MonthlyCost: decimal.RequireFromString("10.00")},
			},
		}
		est := new(mockEstimator)
		est.On("Upload", mock.Anything, "main.tf", mock.Anything).Return(reordered, nil)

		store := seededStore(t)
		require.NoError(t, store.UpdateAdjustment(0, 40))
		handler := NewHandler(store, est)
		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/session/upload?keep_adjustments=true", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		response := decodeSession(t, rec)
		assert.Equal(t, "est-2", response.ProjectID)
		assert.Equal(t, map[int]int{0: 100, 1: 100, 2: 40}, response.Adjustments)
		est.AssertNotCalled(t, "SuggestUsage", mock.Anything, mock.Anything)
		est.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		handler := NewHandler(session.NewStore(nil), new(mockEstimator))
		req := httptest.NewRequest(http.MethodPost, "/session/upload", strings.NewReader(""))
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("estimator failure keeps session", func(t *testing.T) {
		est := new(mockEstimator)
		est.On("Upload", mock.Anything, "main.tf", mock.Anything).
			Return(domain.Project{}, &estimator.APIError{StatusCode: 400, Message: "not a terraform file"})

		store := seededStore(t)
		handler := NewHandler(store, est)
		body, contentType := multipartBody(t)
		req := httptest.NewRequest(http.MethodPost, "/session/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "not a terraform file\n", rec.Body.String())
		assert.Equal(t, "est-1", store.Snapshot().ProjectID)
		assert.Len(t, store.Resources(), 2)
	})
}

func TestHandler_Get(t *testing.T) {
	handler := NewHandler(seededStore(t), new(mockEstimator))
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	response := decodeSession(t, rec)
	assert.Equal(t, "15.25", response.Total)
	assert.Equal(t, []api.LineItem{
		{Index: 0, Name: "web", ResourceType: "aws_instance", MonthlyCost: "10.00", Adjustment: 100, AdjustedCost: "10.00"},
		{Index: 1, Name: "fn", ResourceType: "aws_lambda_function", MonthlyCost: "5.25", Adjustment: 100, AdjustedCost: "5.25"},
	}, response.Resources)
}

func TestHandler_Breakdown(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedNames  []string
	}{
		{name: "default sort by cost descending", query: "", expectedStatus: http.StatusOK, expectedNames: []string{"web", "fn"}},
		{name: "name ascending", query: "?sort=name&order=asc", expectedStatus: http.StatusOK, expectedNames: []string{"fn", "web"}},
		{name: "search", query: "?search=LAMBDA", expectedStatus: http.StatusOK, expectedNames: []string{"fn"}},
		{name: "type filter", query: "?type=aws_instance", expectedStatus: http.StatusOK, expectedNames: []string{"web"}},
		{name: "unknown sort field", query: "?sort=color", expectedStatus: http.StatusBadRequest},
		{name: "unknown order", query: "?order=sideways", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(seededStore(t), new(mockEstimator))
			req := httptest.NewRequest(http.MethodGet, "/session/breakdown"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.Breakdown(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response api.Breakdown
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
			names := make([]string, 0, len(response.Resources))
			for _, item := range response.Resources {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
			assert.Len(t, response.Groups, 2)
			assert.Equal(t, "15.25", response.Total)
		})
	}
}

func TestHandler_UpdateAdjustment(t *testing.T) {
	tests := []struct {
		name           string
		index          string
		body           string
		expectedStatus int
		expectedTotal  string
	}{
		{name: "update", index: "0", body: `{"adjustment": 50}`, expectedStatus: http.StatusOK, expectedTotal: "10.25"},
		{name: "clamped", index: "1", body: `{"adjustment": 400}`, expectedStatus: http.StatusOK, expectedTotal: "15.25"},
		{name: "unknown index", index: "9", body: `{"adjustment": 50}`, expectedStatus: http.StatusNotFound},
		{name: "bad index", index: "web", body: `{"adjustment": 50}`, expectedStatus: http.StatusBadRequest},
		{name: "missing value", index: "0", body: `{}`, expectedStatus: http.StatusBadRequest},
		{name: "malformed body", index: "0", body: `{`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(seededStore(t), new(mockEstimator))
			req := httptest.NewRequest(http.MethodPut, "/session/adjustments/"+tt.index, strings.NewReader(tt.body))
			req = withURLParam(req, "index", tt.index)
			rec := httptest.NewRecorder()

			handler.UpdateAdjustment(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedTotal, decodeSession(t, rec).Total)
			}
		})
	}
}

func TestHandler_UpdateAdjustments(t *testing.T) {
	t.Run("bulk update", func(t *testing.T) {
		handler := NewHandler(seededStore(t), new(mockEstimator))
		req := httptest.NewRequest(http.MethodPatch, "/session/adjustments", strings.NewReader(`{"0": 50, "1": 0}`))
		rec := httptest.NewRecorder()

		handler.UpdateAdjustments(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[int]int{0: 50, 1: 0}, decodeSession(t, rec).Adjustments)
	})

	t.Run("unknown index applies nothing", func(t *testing.T) {
		store := seededStore(t)
		handler := NewHandler(store, new(mockEstimator))
		req := httptest.NewRequest(http.MethodPatch, "/session/adjustments", strings.NewReader(`{"0": 50, "7": 10}`))
		rec := httptest.NewRecorder()

		handler.UpdateAdjustments(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.Adjustments{0: 100, 1: 100}, store.Snapshot().Adjustments)
	})

	t.Run("non-numeric key", func(t *testing.T) {
		handler := NewHandler(seededStore(t), new(mockEstimator))
		req := httptest.NewRequest(http.MethodPatch, "/session/adjustments", strings.NewReader(`{"web": 50}`))
		rec := httptest.NewRecorder()

		handler.UpdateAdjustments(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_ApplyUsage(t *testing.T) {
	handler := NewHandler(seededStore(t), new(mockEstimator))
	body := `{"usage": {"web": {"monthly_hours": 360}, "fn": {"monthly_requests": 250000}}}`
	req := httptest.NewRequest(http.MethodPost, "/session/usage", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ApplyUsage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[int]int{0: 50, 1: 25}, decodeSession(t, rec).Adjustments)
}

func TestHandler_Templates(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		est := new(mockEstimator)
		est.On("ListTemplates", mock.Anything).Return([]domain.UsageTemplate{{
			ID:       "dev",
			Name:     "Development",
			Template: map[string]domain.UsageRecord{"aws_instance": {"monthly_hours": 160.0}},
		}}, nil)

		handler := NewHandler(seededStore(t), est)
		rec := httptest.NewRecorder()
		handler.ListTemplates(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var response []api.UsageTemplate
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response, 1)
		assert.Equal(t, "dev", response[0].ID)
	})

	t.Run("list failure", func(t *testing.T) {
		est := new(mockEstimator)
		est.On("ListTemplates", mock.Anything).Return(nil, errors.New("connection refused"))

		handler := NewHandler(seededStore(t), est)
		rec := httptest.NewRecorder()
		handler.ListTemplates(rec, httptest.NewRequest(http.MethodGet, "/templates", nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "failed to get templates\n", rec.Body.String())
	})

	t.Run("apply", func(t *testing.T) {
		store := seededStore(t)
		est := new(mockEstimator)
		est.On("ApplyTemplate", mock.Anything, "dev", store.Resources()).
			Return(domain.UsageAnswer{"web": {"monthly_hours": 72.0}}, nil)

		handler := NewHandler(store, est)
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/session/templates/dev", nil), "id", "dev")
		rec := httptest.NewRecorder()

		handler.ApplyTemplate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[int]int{0: 10, 1: 100}, decodeSession(t, rec).Adjustments)
		est.AssertExpectations(t)
	})
}

func TestHandler_Wizard(t *testing.T) {
	t.Run("questions", func(t *testing.T) {
		store := seededStore(t)
		est := new(mockEstimator)
		est.On("ClarifyQuestions", mock.Anything, store.Resources()).
			Return([]domain.Question{{ResourceName: "web", Question: "Hours per day?"}}, nil)

		handler := NewHandler(store, est)
		rec := httptest.NewRecorder()
		handler.WizardQuestions(rec, httptest.NewRequest(http.MethodPost, "/session/wizard/questions", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var response api.QuestionsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, []api.Question{{ResourceName: "web", Question: "Hours per day?"}}, response.Questions)
	})

	t.Run("questions without resources", func(t *testing.T) {
		handler := NewHandler(session.NewStore(nil), new(mockEstimator))
		rec := httptest.NewRecorder()
		handler.WizardQuestions(rec, httptest.NewRequest(http.MethodPost, "/session/wizard/questions", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("usage", func(t *testing.T) {
		store := seededStore(t)
		questions := []domain.Question{{ResourceName: "web", Question: "Hours per day?"}}
		est := new(mockEstimator)
		est.On("GenerateUsage", mock.Anything, store.Resources(), questions, []string{"12"}).
			Return(domain.UsageAnswer{"web": {"monthly_hours": 360.0}}, nil)

		handler := NewHandler(store, est)
		body := `{"questions": [{"resource_name": "web", "question": "Hours per day?"}], "answers": ["12"]}`
		rec := httptest.NewRecorder()
		handler.WizardUsage(rec, httptest.NewRequest(http.MethodPost, "/session/wizard/usage", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[int]int{0: 50, 1: 100}, decodeSession(t, rec).Adjustments)
	})

	t.Run("usage from resource answers", func(t *testing.T) {
		store := seededStore(t)
		answers := []domain.ResourceAnswer{{ResourceName: "web", Answer: "office hours"}}
		est := new(mockEstimator)
		est.On("GenerateUsageLegacy", mock.Anything, store.Resources(), answers).
			Return(domain.UsageAnswer{"web": {"monthly_hours": 360.0}}, nil)

		handler := NewHandler(store, est)
		body := `{"resource_answers": [{"resource_name": "web", "answer": "office hours"}]}`
		rec := httptest.NewRecorder()
		handler.WizardUsage(rec, httptest.NewRequest(http.MethodPost, "/session/wizard/usage", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, map[int]int{0: 50, 1: 100}, decodeSession(t, rec).Adjustments)
		est.AssertNotCalled(t, "GenerateUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("usage failure leaves adjustments", func(t *testing.T) {
		store := seededStore(t)
		est := new(mockEstimator)
		est.On("GenerateUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout"))

		handler := NewHandler(store, est)
		rec := httptest.NewRecorder()
		handler.WizardUsage(rec, httptest.NewRequest(http.MethodPost, "/session/wizard/usage", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, domain.Adjustments{0: 100, 1: 100}, store.Snapshot().Adjustments)
	})
}

func TestHandler_Copilot(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		store := seededStore(t)
		est := new(mockEstimator)
		est.On("AskCopilot", mock.Anything, "What costs most?", store.Resources()).Return("The web instance.", nil)

		handler := NewHandler(store, est)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/session/copilot", strings.NewReader(`{"question": "What costs most?"}`))
		handler.Copilot(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var response api.CopilotAnswer
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "The web instance.", response.Answer)
	})

	t.Run("empty question", func(t *testing.T) {
		handler := NewHandler(seededStore(t), new(mockEstimator))
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/session/copilot", strings.NewReader(`{"question": ""}`))
		handler.Copilot(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
