package openai

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/pkg/domain"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, reply string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		captured = append(captured, req)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestDialogue_Chat(t *testing.T) {
	srv, captured := newServer(t, "```json\n{}\n```")
	d := New(Config{BaseURL: srv.URL, APIKey: "test", Model: "gpt-4o"})

	reply, history, err := d.Chat(context.Background(), "Generate an FSM.", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", reply)
	require.Len(t, history, 3)
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: DefaultPersona}, history[0])
	assert.Equal(t, domain.RoleAssistant, history[2].Role)

	_, history, err = d.Chat(context.Background(), "Now the code.", history, false)
	require.NoError(t, err)
	assert.Len(t, history, 5)

	require.Len(t, *captured, 2)
	second := (*captured)[1]
	assert.Equal(t, "gpt-4o", second.Model)
	assert.Len(t, second.Messages, 4)
	assert.InDelta(t, 0.6, second.Temperature, 1e-6)
	assert.InDelta(t, 0.9, second.TopP, 1e-6)
}

func TestDialogue_EmptyReply(t *testing.T) {
	srv, _ := newServer(t, "   ")
	d := New(Config{BaseURL: srv.URL, Model: "m"})

	history := []domain.Message{{Role: domain.RoleSystem, Content: "p"}}
	_, got, err := d.Chat(context.Background(), "hi", history, false)
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
	assert.Equal(t, history, got, "history is unchanged on failure")
}

func TestDialogue_RandomSampling(t *testing.T) {
	srv, captured := newServer(t, "ok")
	d := New(Config{BaseURL: srv.URL, Model: "m"}, WithRand(rand.New(rand.NewPCG(1, 2))))

	for i := 0; i < 20; i++ {
		_, _, err := d.Chat(context.Background(), "hi", nil, true)
		require.NoError(t, err)
	}

	for _, req := range *captured {
		assert.GreaterOrEqual(t, req.Temperature, float32(MinTemperature))
		assert.LessOrEqual(t, req.Temperature, float32(MaxTemperature))
		assert.GreaterOrEqual(t, req.TopP, float32(MinTopP))
		assert.LessOrEqual(t, req.TopP, float32(MaxTopP))
		assert.InDelta(t, round2(float64(req.Temperature)), req.Temperature, 1e-4)
	}
}

func TestDialogue_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	d := New(Config{BaseURL: srv.URL, Model: "m"})
	_, _, err := d.Chat(context.Background(), "hi", nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}
