package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ucardlabs/ucard-admin/internal/logger"
	"github.com/ucardlabs/ucard-admin/internal/metrics"
)

const (
	approvePath  = "/v1/card/approval"
	rejectPath   = "/v1/card/reject"
	cardBinPath  = "/v1/system/getCardbin"
	maxBodyBytes = 1 << 20
)

// Client ходит в API эмитента карт (ucard-api).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиента. timeout <= 0 оставляет таймаут транспорта по умолчанию.
func NewClient(baseURL string, timeout time.Duration) *Client {
	httpClient := &http.Client{}
	if timeout > 0 {
		httpClient.Timeout = timeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Response описывает успешный ответ внешнего API. Тело не валидируется.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Failure описывает неуспешный вызов внешнего API.
// StatusCode == 0 означает ошибку транспорта.
type Failure struct {
	Operation  string
	StatusCode int
	Diagnostic json.RawMessage
	Message    string
	Cause      error
}

func (f *Failure) Error() string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("gateway: %s: %s", f.Operation, f.Message)
	}
	return fmt.Sprintf("gateway: %s: status %d: %s", f.Operation, f.StatusCode, string(f.Diagnostic))
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// IsTransport сообщает, что ответа от API не было.
func (f *Failure) IsTransport() bool {
	return f.StatusCode == 0
}

// Approve отправляет одобрение заявки.
func (c *Client) Approve(ctx context.Context, req ApprovalRequest) (*Response, error) {
	return c.do(ctx, "approve", http.MethodPost, approvePath, req)
}

// Reject отправляет отказ по заявке.
func (c *Client) Reject(ctx context.Context, req RejectionRequest) (*Response, error) {
	return c.do(ctx, "reject", http.MethodPost, rejectPath, req)
}

// CardBins возвращает список BIN-ов карт как есть.
func (c *Client) CardBins(ctx context.Context) (*Response, error) {
	return c.do(ctx, "cardbin", http.MethodGet, cardBinPath, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload interface{}) (resp *Response, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.GatewayDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &Failure{Operation: operation, Message: "не удалось сериализовать запрос", Cause: err}
		}
		body = bytes.NewReader(raw)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &Failure{Operation: operation, Message: err.Error(), Cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Log.WithFields(logrus.Fields{
		"operation": operation,
		"url":       url,
	}).Info("gateway: вызов внешнего API")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Operation: operation, Message: err.Error(), Cause: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Failure{Operation: operation, Message: err.Error(), Cause: err}
	}

	logger.Log.WithFields(logrus.Fields{
		"operation": operation,
		"status":    httpResp.StatusCode,
	}).Info("gateway: ответ внешнего API")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &Failure{
			Operation:  operation,
			StatusCode: httpResp.StatusCode,
			Diagnostic: diagnosticBody(raw),
			Message:    "status " + strconv.Itoa(httpResp.StatusCode),
		}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}
	if !json.Valid(trimmed) {
		return nil, &Failure{Operation: operation, Message: "некорректный ответ внешнего API"}
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: json.RawMessage(trimmed)}, nil
}

// diagnosticBody возвращает тело ошибки, если это JSON, иначе пустой объект.
func diagnosticBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return json.RawMessage("{}")
	}
	return json.RawMessage(trimmed)
}
