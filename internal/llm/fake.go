package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns a deterministic payload for offline use and tests.
// Responses is consumed in order; when exhausted (or empty) it echoes an
// empty files object.
type FakeClient struct {
	Responses []string
	Err       error
	calls     int
}

func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{Responses: responses}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(_ context.Context, _ string, _ any) (json.RawMessage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.calls < len(f.Responses) {
		r := f.Responses[f.calls]
		f.calls++
		return json.RawMessage(r), nil
	}
	f.calls++
	return json.RawMessage(`{"files":[]}`), nil
}

// Calls reports how many generations were requested.
func (f *FakeClient) Calls() int { return f.calls }
