// Package remote implements a Classifier that delegates inference to an
// HTTP model server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

const (
	classifyPath     = "/classify"
	healthPath       = "/healthz"
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 64 << 10
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Classifier) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets the client-level timeout for every call.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// Classifier posts feature vectors to {base}/classify.
type Classifier struct {
	base     string
	hc       *http.Client
	features []string
}

type classifyRequest struct {
	Features     []int    `json:"features"`
	FeatureNames []string `json:"feature_names"`
}

type classifyResponse struct {
	Label *int `json:"label"`
}

// New builds a remote classifier for the model server at baseURL.
func New(baseURL string, schema *questionnaire.Schema, opts ...Option) (*Classifier, error) {
	if !(strings.HasPrefix(baseURL, "http://") || strings.HasPrefix(baseURL, "https://")) {
		return nil, fmt.Errorf("remote classifier: invalid base url %q", baseURL)
	}
	c := &Classifier{
		base:     strings.TrimRight(baseURL, "/"),
		hc:       &http.Client{Timeout: defaultTimeout},
		features: schema.FeatureNames(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Probe checks that the model server answers its health endpoint. A failing
// probe is a *inference.ModelUnavailableError.
func (c *Classifier) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+healthPath, http.NoBody)
	if err != nil {
		return &inference.ModelUnavailableError{Artifact: c.base, Err: err}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return &inference.ModelUnavailableError{Artifact: c.base, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode/100 != 2 {
		return &inference.ModelUnavailableError{Artifact: c.base, Err: fmt.Errorf("health status %d", resp.StatusCode)}
	}
	return nil
}

// Classify sends one feature vector and returns the encoded label. Every
// failure, including timeouts, is a *inference.InferenceError.
func (c *Classifier) Classify(ctx context.Context, features questionnaire.FeatureVector) (int, error) {
	body, err := json.Marshal(classifyRequest{Features: features.Ints(), FeatureNames: c.features})
	if err != nil {
		return 0, &inference.InferenceError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+classifyPath, bytes.NewReader(body))
	if err != nil {
		return 0, &inference.InferenceError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, &inference.InferenceError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, &inference.InferenceError{Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return 0, &inference.InferenceError{Err: fmt.Errorf("upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}
	var out classifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, &inference.InferenceError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Label == nil {
		return 0, &inference.InferenceError{Err: errors.New("response has no label")}
	}
	return *out.Label, nil
}

// Describe summarizes the remote classifier.
func (c *Classifier) Describe() map[string]any {
	return map[string]any{
		"kind": "remote",
		"url":  c.base,
	}
}
