package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/caixo/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	path    string
	apiKey  string
	payload map[string]any
}

func newTestGateway(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		requests = append(requests, recordedRequest{
			path:    r.URL.Path,
			apiKey:  r.Header.Get("apikey"),
			payload: payload,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(url string) *EvolutionClient {
	return NewEvolutionClient(config.WhatsAppConfig{
		BaseURL:  url,
		Instance: "caixo_instance",
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
	}, zap.NewNop())
}

func TestEvolutionClientSendText(t *testing.T) {
	t.Run("delivers and strips the jid suffix", func(t *testing.T) {
		server, requests := newTestGateway(t, http.StatusOK, `{"status":"success"}`)
		client := newTestClient(server.URL)

		ok := client.SendText(context.Background(), "5511999990000@s.whatsapp.net", "olá")
		assert.True(t, ok)

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, "/message/sendText/caixo_instance", req.path)
		assert.Equal(t, "test-key", req.apiKey)
		assert.Equal(t, "5511999990000", req.payload["number"])
		assert.Equal(t, "olá", req.payload["text"])
	})

	t.Run("accepts a key-bearing response", func(t *testing.T) {
		server, _ := newTestGateway(t, http.StatusCreated, `{"key":{"id":"ABC"}}`)
		client := newTestClient(server.URL)
		assert.True(t, client.SendText(context.Background(), "5511999990000", "olá"))
	})

	t.Run("gateway error is absorbed", func(t *testing.T) {
		server, _ := newTestGateway(t, http.StatusUnauthorized, `{"error":"invalid apikey"}`)
		client := newTestClient(server.URL)
		assert.False(t, client.SendText(context.Background(), "5511999990000", "olá"))
	})

	t.Run("unaccepted response is a failure", func(t *testing.T) {
		server, _ := newTestGateway(t, http.StatusOK, `{"status":"error"}`)
		client := newTestClient(server.URL)
		assert.False(t, client.SendText(context.Background(), "5511999990000", "olá"))
	})

	t.Run("unreachable gateway is a failure", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:1")
		assert.False(t, client.SendText(context.Background(), "5511999990000", "olá"))
	})
}

func TestEvolutionClientSendPrompt(t *testing.T) {
	server, requests := newTestGateway(t, http.StatusOK, `{"status":"success"}`)
	client := newTestClient(server.URL)
	sessionID := uuid.New()

	ok := client.SendPrompt(context.Background(), "5511999990000", "💰 *Valor:* R$ 150,50", sessionID)
	assert.True(t, ok)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/message/sendButtons/caixo_instance", req.path)
	assert.Contains(t, req.payload["text"], "Resumo do Gasto Extraído")
	assert.Contains(t, req.payload["text"], "💰 *Valor:* R$ 150,50")
	assert.Equal(t, promptFooter, req.payload["footer"])

	buttons, ok := req.payload["buttons"].([]any)
	require.True(t, ok)
	require.Len(t, buttons, 2)

	confirm := buttons[0].(map[string]any)
	assert.Equal(t, "confirm_"+sessionID.String(), confirm["buttonId"])
	cancel := buttons[1].(map[string]any)
	assert.Equal(t, "cancel_"+sessionID.String(), cancel["buttonId"])
}

func TestMediaFetcher(t *testing.T) {
	t.Run("downloads media with its mime type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg; charset=binary")
			_, _ = w.Write([]byte("jpeg-bytes"))
		}))
		t.Cleanup(server.Close)

		media, err := NewMediaFetcher(2*time.Second).Fetch(context.Background(), server.URL+"/media/1")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), media.Data)
		assert.Equal(t, "image/jpeg", media.MIME)
		assert.Equal(t, server.URL+"/media/1", media.URL)
	})

	t.Run("non-200 status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(server.Close)

		_, err := NewMediaFetcher(2*time.Second).Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})
}
