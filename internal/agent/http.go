package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// HTTPInvoker calls the agent platform over HTTP with the invocation
// contract: POST {message, agent_id, session_id} and a
// {success, response:{result, message}, error} reply.
type HTTPInvoker struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type invokeRequest struct {
	Message   string `json:"message"`
	AgentID   string `json:"agent_id"`
	SessionID string `json:"session_id,omitempty"`
}

type invokeResponse struct {
	Success  bool `json:"success"`
	Response *struct {
		Result  json.RawMessage `json:"result"`
		Message string          `json:"message"`
	} `json:"response"`
	Error string `json:"error"`
}

func (h HTTPInvoker) Invoke(ctx context.Context, message, agentID string, opts Options) (Result, error) {
	if strings.TrimSpace(h.BaseURL) == "" {
		return Result{}, fmt.Errorf("AGENT_BASE_URL is not set")
	}

	b, _ := json.Marshal(invokeRequest{
		Message:   message,
		AgentID:   agentID,
		SessionID: opts.SessionID,
	})
	url := strings.TrimRight(h.BaseURL, "/") + "/agents/invoke"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(h.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	client := h.Client
	if client == nil {
		timeout := 45 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("agent request timed out")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Result{}, fmt.Errorf("agent request timed out")
		}
		return Result{}, fmt.Errorf("agent request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if resp.StatusCode == http.StatusTooManyRequests {
			if d := extractRetryAfter(errBody); d > 0 {
				return Result{}, RateLimitError{RetryAfter: d}
			}
			return Result{}, RateLimitError{}
		}
		return Result{}, fmt.Errorf("agent http error: %s: %v", resp.Status, errBody)
	}

	var body invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, err
	}
	if !body.Success {
		if body.Error != "" {
			return Result{}, errors.New(body.Error)
		}
		return Result{}, errors.New("agent reported failure")
	}
	if body.Response == nil {
		return Result{}, errors.New("empty agent response")
	}

	out := Result{Message: body.Response.Message}
	if len(body.Response.Result) > 0 {
		var raw any
		if err := json.Unmarshal(body.Response.Result, &raw); err == nil {
			out.Raw = raw
		}
	}
	return out, nil
}

func extractRetryAfter(errBody map[string]any) time.Duration {
	errObj, ok := errBody["error"].(map[string]any)
	if !ok {
		return 0
	}
	details, ok := errObj["details"].([]any)
	if !ok {
		return 0
	}
	for _, d := range details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["@type"].(string); ok && strings.Contains(t, "RetryInfo") {
			if s, ok := m["retryDelay"].(string); ok {
				if dur, err := time.ParseDuration(s); err == nil {
					return dur
				}
			}
		}
	}
	return 0
}
