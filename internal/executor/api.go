package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/report"
)

// apiResponse is the body returned by the engine's REST endpoint.
type apiResponse struct {
	Code     int      `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
	Report   string   `json:"report"`
}

// API posts report payloads to the engine's REST endpoint. Requests are
// sent once; failures are returned to the caller.
type API struct {
	endpoint string
	client   *http.Client
	log      logger.Logger
}

// NewAPI builds an API executor from configuration.
func NewAPI(cfg *config.Config, log logger.Logger) (*API, error) {
	if strings.TrimSpace(cfg.APIEndpoint) == "" {
		return nil, errors.New("engine api endpoint is not configured")
	}
	return &API{
		endpoint: cfg.APIEndpoint,
		client:   &http.Client{Timeout: cfg.APITimeout},
		log:      logger.Component(log, "executor.api"),
	}, nil
}

// WithClient swaps the HTTP client.
func (a *API) WithClient(c *http.Client) *API {
	a.client = c
	return a
}

// Execute sends the report payload as JSON and decodes the reply.
func (a *API) Execute(ctx context.Context, r *report.Report) (*Result, error) {
	payload, err := r.Request()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call engine: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	res := &Result{Status: resp.StatusCode, Duration: time.Since(start)}
	if err != nil {
		return res, fmt.Errorf("read engine response: %w", err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		res.Messages = []string{strings.TrimSpace(string(raw))}
		if !res.OK() {
			return res, fmt.Errorf("%w: engine returned %s", ErrExecution, resp.Status)
		}
		return res, fmt.Errorf("decode engine response: %w", err)
	}
	if decoded.Message != "" {
		res.Messages = append(res.Messages, decoded.Message)
	}
	res.Messages = append(res.Messages, decoded.Messages...)
	res.ExitCode = decoded.Code

	if !res.OK() || decoded.Code != 0 {
		a.log.WithField("status", resp.StatusCode).Warnf("engine rejected report: %s", strings.Join(res.Messages, "; "))
		return res, fmt.Errorf("%w: engine returned %s", ErrExecution, resp.Status)
	}
	if decoded.Report != "" {
		data, err := base64.StdEncoding.DecodeString(decoded.Report)
		if err != nil {
			return res, fmt.Errorf("decode rendered report: %w", err)
		}
		res.Report = data
	}
	a.log.WithField("duration", res.Duration.String()).Infof("report rendered by api")
	return res, nil
}
