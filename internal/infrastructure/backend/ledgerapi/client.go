package ledgerapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
	"github.com/kirillkom/ledger-dashboard/internal/infrastructure/resilience"
)

const (
	statsPath     = "/admin/stats"
	documentsPath = "/documents"
	alertsPath    = "/alerts"
	uploadPath    = "/documents/upload"
	healthPath    = "/health"

	maxResponseBytes = 32 << 20
)

// Client talks to the ledger backend over HTTP/JSON. Calls go through an optional
// resilience executor; uploads are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	contract   *Contract
}

type Options struct {
	Timeout            time.Duration
	HTTPClient         *http.Client
	ResilienceExecutor *resilience.Executor
	Contract           *Contract
}

func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

func NewWithOptions(baseURL string, options Options) *Client {
	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		executor:   options.ResilienceExecutor,
		contract:   options.Contract,
	}
}

func (c *Client) GetStats(ctx context.Context) (domain.StatsSnapshot, error) {
	var stats domain.StatsSnapshot
	if err := c.getJSON(ctx, statsPath, &stats, "get_stats"); err != nil {
		return domain.StatsSnapshot{}, err
	}
	return stats, nil
}

func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var docs []domain.Document
	if err := c.getJSON(ctx, documentsPath, &docs, "list_documents"); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (c *Client) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	var alerts []domain.Alert
	if err := c.getJSON(ctx, alertsPath, &alerts, "list_alerts"); err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	return alerts, nil
}

// UploadDocument streams body as the multipart "file" field alongside "tag". Any 2xx
// response is success; the response body is ignored.
func (c *Client) UploadDocument(ctx context.Context, filename, tag string, body io.Reader) error {
	return c.postMultipart(ctx, uploadPath, filename, tag, body, "upload_document")
}

func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var response struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := c.getJSON(ctx, healthPath, &response, "health"); err != nil {
		return domain.Health{}, err
	}

	status := domain.HealthDegraded
	if strings.EqualFold(strings.TrimSpace(response.Status), "healthy") {
		status = domain.HealthHealthy
	}
	for _, serviceStatus := range response.Services {
		if !strings.EqualFold(serviceStatus, "healthy") {
			status = domain.HealthDegraded
		}
	}
	return domain.Health{
		Status:    status,
		Services:  response.Services,
		CheckedAt: time.Now().UTC(),
	}, nil
}
