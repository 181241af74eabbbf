package briefing

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
)

// OracleErrorKind distinguishes why a reasoning call failed. Callers see the
// same fallback text either way; the kind exists for tests and telemetry.
type OracleErrorKind string

const (
	OracleTimeout           OracleErrorKind = "timeout"
	OracleAuthFailed        OracleErrorKind = "auth_failed"
	OracleUnreachable       OracleErrorKind = "unreachable"
	OracleMalformedResponse OracleErrorKind = "malformed_response"
)

// OracleError wraps a failed reasoning call with its failure kind.
type OracleError struct {
	Kind OracleErrorKind
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Kind, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// Oracle produces a one-sentence risk assessment for a threat sighting.
type Oracle interface {
	Analyze(ctx context.Context, threatName, reasons, fileHash string) (string, error)
}

const (
	defaultOracleBaseURL = "https://generativelanguage.googleapis.com"
	defaultOracleModel   = "gemini-1.5-flash"
	defaultOracleTimeout = 15 * time.Second
)

// OracleClient talks to a Gemini-compatible generateContent endpoint.
type OracleClient struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewOracleClient creates an oracle client. An empty baseURL or model falls
// back to the Gemini defaults; timeout bounds each call.
func NewOracleClient(baseURL, model, apiKey string, timeout time.Duration) *OracleClient {
	if baseURL == "" {
		baseURL = defaultOracleBaseURL
	}
	if model == "" {
		model = defaultOracleModel
	}
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	return &OracleClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Analyze asks the model for a one-sentence assessment of the threat.
func (c *OracleClient) Analyze(ctx context.Context, threatName, reasons, fileHash string) (string, error) {
	prompt := fmt.Sprintf(
		"Act as a Cyber Security Analyst. Analyze this threat:\n"+
			"Name: %s\nBehaviors: %s\nHash: %s\n\n"+
			"Provide a 1-sentence assessment of the risk and technical impact. "+
			"Do not be verbose. Focus on what it does.",
		threatName, reasons, fileHash,
	)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", &OracleError{Kind: OracleMalformedResponse, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &OracleError{Kind: OracleUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &OracleError{Kind: OracleTimeout, Err: err}
		}
		return "", &OracleError{Kind: OracleUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &OracleError{Kind: OracleUnreachable, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &OracleError{Kind: OracleAuthFailed, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return "", &OracleError{Kind: OracleUnreachable, Err: fmt.Errorf("status %d: %s", resp.StatusCode, data)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &OracleError{Kind: OracleMalformedResponse, Err: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &OracleError{Kind: OracleMalformedResponse, Err: errors.New("empty candidates")}
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
