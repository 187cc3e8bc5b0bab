package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/de-tools/cost-planner/pkg/services/scenario"
	"github.com/de-tools/cost-planner/pkg/services/session"
	"github.com/de-tools/cost-planner/pkg/store/sqlite"
	scenariostore "github.com/de-tools/cost-planner/pkg/store/sqlite/scenario"
	"github.com/rs/zerolog"
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

func setupServer(t *testing.T, est *mockEstimator) *httptest.Server {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	db, err := sqlite.NewDB(ctx, sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := scenariostore.NewStore(db)
	require.NoError(t, err)
	repo, err := scenario.NewRepository(store)
	require.NoError(t, err)
	scenarios, err := scenario.NewService(repo)
	require.NoError(t, err)
	scenarios.Init(ctx)

	router := ConfigureRouter(logger, Dependencies{
		Session:   session.NewStore(nil),
		Scenarios: scenarios,
		Estimator: est,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestWebAPI_PlanningFlow(t *testing.T) {
	est := new(mockEstimator)
	est.On("Upload", mock.Anything, "main.tf", mock.Anything).Return(domain.Project{
		ID: "est-1",
		Resources: []domain.Resource{
			{Name: "web", ResourceType: "aws_instance", MonthlyCost: decimal.RequireFromString("72.00")},
			{Name: "fn", ResourceType: "aws_lambda_function", MonthlyCost: decimal.RequireFromString("20.00")},
			{Name: "bucket", ResourceType: "aws_s3_bucket", MonthlyCost: decimal.RequireFromString("8.00")},
		},
	}, nil)
	est.On("SuggestUsage", mock.Anything, mock.Anything).Return(100, nil)

	srv := setupServer(t, est)
	base := srv.URL + "/api/v1"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "main.tf")
	require.NoError(t, err)
	_, err = part.Write([]byte("terraform"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp := do(t, http.MethodPost, base+"/session/upload", writer.FormDataContentType(), &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100.00", decode[api.Session](t, resp).Total)

	resp = do(t, http.MethodPost, base+"/scenarios", "application/json", strings.NewReader(`{"name": "Baseline"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	baselineID := decode[api.SaveScenarioResponse](t, resp).ID

	resp = do(t, http.MethodPost, base+"/session/usage", "application/json",
		strings.NewReader(`{"usage": {"web": {"monthly_hours": 360}}}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPut, base+"/session/adjustments/2", "application/json", strings.NewReader(`{"adjustment": 0}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "56.00", decode[api.Session](t, resp).Total)

	resp = do(t, http.MethodPost, base+"/scenarios", "application/json", strings.NewReader(`{"name": "Office hours"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	proposedID := decode[api.SaveScenarioResponse](t, resp).ID

	resp = do(t, http.MethodGet, base+"/scenarios", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]api.ScenarioSummary](t, resp), 2)

	resp = do(t, http.MethodGet, base+"/comparison?baseline="+baselineID+"&proposed="+proposedID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cmp := decode[api.Comparison](t, resp)
	assert.Equal(t, "-44.00", cmp.Summary.TotalDifference)
	assert.Equal(t, "-44.0", cmp.Summary.TotalPercentChange)
	assert.Equal(t, 3, cmp.Summary.ChangedCount)

	resp = do(t, http.MethodPost, base+"/scenarios/"+baselineID+"/load", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "100.00", decode[api.Session](t, resp).Total)

	resp = do(t, http.MethodGet, base+"/selection", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.Selection{
		ActiveID:       baselineID,
		BaselineID:     baselineID,
		ProposedID:     proposedID,
		ComparisonMode: true,
	}, decode[api.Selection](t, resp))

	resp = do(t, http.MethodPut, base+"/selection/active", "application/json",
		strings.NewReader(`{"id": "`+proposedID+`"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, proposedID, decode[api.Selection](t, resp).ActiveID)

	resp = do(t, http.MethodDelete, base+"/scenarios/"+proposedID, "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/comparison", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[api.Session](t, resp).ProjectID)
}

func TestWebAPI_Routes(t *testing.T) {
	srv := setupServer(t, new(mockEstimator))
	base := srv.URL + "/api/v1"

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "empty session", method: http.MethodGet, path: "/session", expectedStatus: http.StatusOK},
		{name: "breakdown", method: http.MethodGet, path: "/session/breakdown?sort=name", expectedStatus: http.StatusOK},
		{name: "unknown scenario", method: http.MethodGet, path: "/scenarios/missing", expectedStatus: http.StatusNotFound},
		{name: "wizard without resources", method: http.MethodPost, path: "/session/wizard/questions", expectedStatus: http.StatusBadRequest},
		{name: "selection", method: http.MethodGet, path: "/selection", expectedStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/session", expectedStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, base+tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestNewWebAPI_DefaultShutdownTimeout(t *testing.T) {
	webAPI := NewWebAPI(zerolog.Nop(), Config{Addr: ":0"})
	assert.Equal(t, defaultShutdownTimeout, webAPI.shutdownTimeout)
	assert.Equal(t, ":0", webAPI.server.Addr)
}

func TestWebAPI_Start(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		webAPI := NewWebAPI(zerolog.New(zerolog.NewTestWriter(t)), Config{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- webAPI.Start(ctx) }()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		webAPI := NewWebAPI(zerolog.Nop(), Config{Addr: "127.0.0.1:-1"})
		assert.Error(t, webAPI.Start(context.Background()))
	})
}
