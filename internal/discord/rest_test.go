package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTCreateMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/c1/messages", r.URL.Path)
		assert.Equal(t, "Bot secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body createMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Teams:\nDudes: <@1>\n", body.Content)
		assert.Equal(t, []string{"users"}, body.AllowedMentions.Parse)

		_ = json.NewEncoder(w).Encode(Message{ID: "m2", ChannelID: "c1", Content: body.Content})
	}))
	defer srv.Close()

	c := NewREST("secret", srv.URL, 0)
	m, err := c.CreateMessage(context.Background(), "c1", "Teams:\nDudes: <@1>\n")
	require.NoError(t, err)
	assert.Equal(t, "m2", m.ID)
}

func TestRESTDeleteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/channels/c1/messages/m1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewREST("secret", srv.URL, 0).DeleteMessage(context.Background(), "c1", "m1"))
}

func TestRESTRetriesOnceAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.01,"global":false}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewREST("secret", srv.URL, 0).DeleteMessage(context.Background(), "c1", "m1"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRESTAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Missing Permissions","code":50013}`))
	}))
	defer srv.Close()

	err := NewREST("secret", srv.URL, 0).DeleteMessage(context.Background(), "c1", "m1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 50013, apiErr.Code)
	assert.Equal(t, "Missing Permissions", apiErr.Message)
}
