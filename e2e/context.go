package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TestContext holds one scenario's HTTP state against a running server.
type TestContext struct {
	BaseURL    string
	client     *http.Client
	lastStatus int
	lastBody   map[string]any
	remembered map[string]any
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		remembered: map[string]any{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.remembered = map[string]any{}
}

func (tc *TestContext) Do(method, path string, body any) error {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tc.lastBody); err != nil {
			return fmt.Errorf("decode response %q: %w", raw, err)
		}
	}
	return nil
}

func (tc *TestContext) Status() int { return tc.lastStatus }

// Field returns a top-level envelope field.
func (tc *TestContext) Field(name string) (any, bool) {
	v, ok := tc.lastBody[name]
	return v, ok
}

// DataField returns a field of the envelope's data object.
func (tc *TestContext) DataField(name string) (any, bool) {
	data, ok := tc.lastBody["data"].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := data[name]
	return v, ok
}

func (tc *TestContext) Remember(key string, v any) { tc.remembered[key] = v }

func (tc *TestContext) Recall(key string) (any, bool) {
	v, ok := tc.remembered[key]
	return v, ok
}
