package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/cost-planner/pkg/adapters"
	"github.com/de-tools/cost-planner/pkg/models/api"
	"github.com/de-tools/cost-planner/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	DefaultLLM           = "gemini"
	DefaultUsage         = 100
	DefaultCopilotAnswer = "Sorry, I could not answer that question."

	headerGeminiKey    = "X-Gemini-Key"
	headerInfracostKey = "X-Infracost-Key"
)

// APIError is a non-2xx answer from the estimator.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("estimator: %s (status %d)", e.Message, e.StatusCode)
}

type Config struct {
	BaseURL      string
	GeminiKey    string
	InfracostKey string
	LLM          string
	// Timeout bounds every request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the estimator backend that parses projects and runs the
// LLM-assisted usage flows.
type Client interface {
	Upload(ctx context.Context, filename string, file io.Reader) (domain.Project, error)
	SuggestUsage(ctx context.Context, resource domain.Resource) (int, error)
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

type httpClient struct {
	baseURL      string
	geminiKey    string
	infracostKey string
	llm          string
	http         *http.Client
}

func NewClient(cfg Config) (Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("estimator base url is empty")
	}

	llm := cfg.LLM
	if llm == "" {
		llm = DefaultLLM
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &httpClient{
		baseURL:      baseURL,
		geminiKey:    cfg.GeminiKey,
		infracostKey: cfg.InfracostKey,
		llm:          llm,
		http:         hc,
	}, nil
}

func (c *httpClient) Upload(ctx context.Context, filename string, file io.Reader) (domain.Project, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.Project{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return domain.Project{}, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.Project{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return domain.Project{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setKeys(req)

	var resp api.UploadResponse
	if err := c.do(req, "failed to upload file", &resp); err != nil {
		return domain.Project{}, err
	}

	return domain.Project{
		ID:        resp.UID,
		Resources: adapters.MapEstimatorResourcesToDomain(resp.CostBreakdown),
	}, nil
}

func (c *httpClient) SuggestUsage(ctx context.Context, resource domain.Resource) (int, error) {
	var resp api.SuggestUsageResponse
	err := c.postJSON(ctx, "/suggest-usage", api.SuggestUsageRequest{
		Resource: adapters.MapDomainResourceToEstimator(resource),
		LLM:      c.llm,
	}, "failed to get usage suggestion", &resp)
	if err != nil {
		return 0, err
	}

	if resp.SuggestedUsage == nil || *resp.SuggestedUsage == 0 {
		return DefaultUsage, nil
	}
	return domain.ClampAdjustmentDecimal(decimal.NewFromFloat(*resp.SuggestedUsage)), nil
}

func (c *httpClient) ClarifyQuestions(ctx context.Context, resources []domain.Resource) ([]domain.Question, error) {
	var resp api.ClarifyResponse
	err := c.postJSON(ctx, "/usage-clarify", api.ClarifyRequest{
		Resources: adapters.MapDomainResourcesToEstimator(resources),
	}, "failed to get questions", &resp)
	if err != nil {
		return nil, err
	}
	return adapters.MapEstimatorQuestionsToDomain(resp.Questions), nil
}

func (c *httpClient) GenerateUsage(
	ctx context.Context,
	resources []domain.Resource,
	questions []domain.Question,
	answers []string,
) (domain.UsageAnswer, error) {
	if answers == nil {
		answers = []string{}
	}

	var resp api.UsageResponse
	err := c.postJSON(ctx, "/usage-generate", api.GenerateUsageRequest{
		Resources: adapters.MapDomainResourcesToEstimator(resources),
		Questions: adapters.MapDomainQuestionsToText(questions),
		Answers:   answers,
	}, "failed to generate usage", &resp)
	if err != nil {
		return nil, err
	}
	return adapters.MapEstimatorUsageToDomain(resp.Usage), nil
}

func (c *httpClient) GenerateUsageLegacy(
	ctx context.Context,
	resources []domain.Resource,
	answers []domain.ResourceAnswer,
) (domain.UsageAnswer, error) {
	var resp api.UsageResponse
	err := c.postJSON(ctx, "/usage-generate", api.GenerateUsageLegacyRequest{
		Resources: adapters.MapDomainResourcesToEstimator(resources),
		Answers:   adapters.MapDomainAnswersToEstimator(answers),
	}, "failed to generate usage", &resp)
	if err != nil {
		return nil, err
	}
	return adapters.MapEstimatorUsageToDomain(resp.Usage), nil
}

func (c *httpClient) AskCopilot(ctx context.Context, question string, resources []domain.Resource) (string, error) {
	var resp api.CopilotResponse
	err := c.postJSON(ctx, "/copilot", api.CopilotRequest{
		Question:  question,
		Resources: adapters.MapDomainResourcesToEstimator(resources),
	}, "failed to get answer", &resp)
	if err != nil {
		return "", err
	}

	if resp.Answer == "" {
		return DefaultCopilotAnswer, nil
	}
	return resp.Answer, nil
}

func (c *httpClient) ListTemplates(ctx context.Context) ([]domain.UsageTemplate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/templates", nil)
	if err != nil {
		return nil, fmt.Errorf("create templates request: %w", err)
	}
	c.setKeys(req)

	var resp api.TemplatesResponse
	if err := c.do(req, "failed to get templates", &resp); err != nil {
		return nil, err
	}

	templates := make([]domain.UsageTemplate, 0, len(resp.Templates))
	for _, t := range resp.Templates {
		templates = append(templates, adapters.MapEstimatorTemplateToDomain(t))
	}
	return templates, nil
}

func (c *httpClient) ApplyTemplate(
	ctx context.Context,
	templateID string,
	resources []domain.Resource,
) (domain.UsageAnswer, error) {
	var resp api.UsageResponse
	err := c.postJSON(ctx, "/apply-template", api.ApplyTemplateRequest{
		TemplateID: templateID,
		Resources:  adapters.MapDomainResourcesToEstimator(resources),
	}, "failed to apply template", &resp)
	if err != nil {
		return nil, err
	}
	return adapters.MapEstimatorUsageToDomain(resp.Usage), nil
}

func (c *httpClient) postJSON(ctx context.Context, path string, payload any, fallback string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setKeys(req)

	return c.do(req, fallback, out)
}

func (c *httpClient) setKeys(req *http.Request) {
	if c.geminiKey != "" {
		req.Header.Set(headerGeminiKey, c.geminiKey)
	}
	if c.infracostKey != "" {
		req.Header.Set(headerInfracostKey, c.infracostKey)
	}
}

func (c *httpClient) do(req *http.Request, fallback string, out any) error {
	logger := zerolog.Ctx(req.Context())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fallback
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			message = errResp.Error
		}
		logger.Warn().
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Str("message", message).
			Msg("estimator request failed")
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
