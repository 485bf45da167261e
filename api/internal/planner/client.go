package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"survey-studio/api/internal/canon"
)

// bodyLimit bounds how much of an upstream error body is kept on errors.
const bodyLimit = 2048

// Candidate paths per operation. Deployments have mounted the planner under
// different prefixes; 404/405 means "wrong mount, try the next one", any
// other answer is the real one.
var (
	planPaths     = []string{"/v1/plan/generate", "/api/plan/generate", "/generate_plan"}
	sectionPaths  = []string{"/v1/plan/section", "/api/plan/section", "/generate_section"}
	rulesPaths    = []string{"/v1/rules/generate", "/api/rules/generate", "/generate_rules"}
	validatePaths = []string{"/v1/prompt/validate", "/api/prompt/validate"}
)

// Client is the HTTP engine for the planning service.
type Client struct {
	BaseURL string
	APIKey  string
	httpc   *http.Client
	log     *zap.Logger
}

// NewClient builds the default planner engine. The transport waits longer
// for first headers than for the TCP connect since plan generation is slow
// on the planner side.
func NewClient(baseURL, apiKey string, log *zap.Logger) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		httpc:   &http.Client{Timeout: 0, Transport: tr},
		log:     log,
	}
}

// WithHTTPClient overrides the internal HTTP client (tests, custom timeouts).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpc = hc
	}
	return c
}

func (c *Client) Name() string { return "planner" }

// GeneratePlan asks for a full survey structure and returns it canonical.
func (c *Client) GeneratePlan(ctx context.Context, in GenerateRequest) (map[string]any, error) {
	raw, err := c.postJSON(ctx, planPaths, in)
	if err != nil {
		return nil, err
	}
	return c.decodePlan(raw)
}

// GenerateSection asks for one section and returns it as a canonical plan
// holding that section.
func (c *Client) GenerateSection(ctx context.Context, in SectionRequest) (map[string]any, error) {
	raw, err := c.postJSON(ctx, sectionPaths, in)
	if err != nil {
		return nil, err
	}
	return c.decodePlan(raw)
}

// GenerateRules asks for conditional rules over a plan.
func (c *Client) GenerateRules(ctx context.Context, in RulesRequest) (map[string]any, error) {
	raw, err := c.postJSON(ctx, rulesPaths, in)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("planner rules: bad JSON body: %w", err)
	}
	converted := canon.ToRuleSet(v)
	if _, err := canon.ValidateRuleSet(converted); err != nil {
		return nil, err
	}
	return converted.(map[string]any), nil
}

// ValidatePrompt runs the planner's standalone prompt check. A structured
// rejection comes back as *ValidationError.
func (c *Client) ValidatePrompt(ctx context.Context, prompt string) error {
	_, err := c.postJSON(ctx, validatePaths, map[string]any{"prompt": prompt})
	return err
}

func (c *Client) decodePlan(raw []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Parsing failed entirely; distinct from parsed-but-unrecognized,
		// which ValidatePlan reports with the payload attached.
		return nil, fmt.Errorf("planner plan: bad JSON body: %w", err)
	}
	converted := canon.ToPlan(v)
	if _, err := canon.ValidatePlan(converted); err != nil {
		return nil, err
	}
	return converted.(map[string]any), nil
}

// postJSON posts the body to the first candidate path that is actually
// mounted. 404/405 advances to the next candidate; 422 is classified; other
// non-2xx statuses surface as *HTTPError with a truncated body.
func (c *Client) postJSON(ctx context.Context, paths []string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("planner: encode request: %w", err)
	}
	var lastErr error
	for _, p := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+p, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed:
			c.log.Debug("planner endpoint not mounted, trying next candidate",
				zap.String("path", p), zap.Int("status", resp.StatusCode))
			lastErr = &HTTPError{Status: resp.StatusCode, Body: truncate(data, bodyLimit)}
			continue
		case resp.StatusCode == http.StatusUnprocessableEntity:
			if cls := canon.Classify(resp.StatusCode, data); cls.Kind == canon.KindPromptValidation {
				return nil, &ValidationError{Detail: cls}
			}
			return nil, &HTTPError{Status: resp.StatusCode, Body: truncate(data, bodyLimit)}
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, &HTTPError{Status: resp.StatusCode, Body: truncate(data, bodyLimit)}
		}
		return data, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("planner: no candidate paths")
	}
	return nil, lastErr
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
