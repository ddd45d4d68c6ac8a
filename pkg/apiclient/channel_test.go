package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEventWithChannelToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channel/append", r.URL.Path)
		assert.Equal(t, "cap-token", r.Header.Get("X-Channel-Token"))

		var req AppendEventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ch_1", req.ChannelID)
		assert.Equal(t, "hello", req.Content)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Event{ID: "ev_1", Seq: 1, Type: "message", Content: "hello"})
	}))
	defer server.Close()

	client := New(server.URL).WithChannelToken("cap-token")
	event, err := client.AppendEvent(AppendEventRequest{ChannelID: "ch_1", Content: "hello"})

	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Seq)
	assert.Equal(t, "hello", event.Content)
}

func TestReadEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channel/read", r.URL.Path)

		var req ReadEventsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint64(5), req.AfterSeq)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(ReadEventsResponse{
			Events: []Event{
				{ID: "ev_6", Seq: 6, Type: "message"},
				{ID: "ev_7", Seq: 7, Type: "tombstone", TargetSeq: 3},
			},
			HasMore: true,
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("key").ReadEvents(ReadEventsRequest{
		ChannelID: "ch_1",
		AfterSeq:  5,
	})

	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, uint64(3), resp.Events[1].TargetSeq)
	assert.True(t, resp.HasMore)
}

func TestCreateChannelToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channel/token/create", r.URL.Path)

		var req CreateChannelTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"read", "append"}, req.Permissions)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(CreateChannelTokenResponse{
			Token:     "v1.payload.sig",
			ChannelID: "ch_1",
		})
	}))
	defer server.Close()

	resp, err := New(server.URL).WithAPIKey("key").CreateChannelToken(CreateChannelTokenRequest{
		ChannelID:   "ch_1",
		Permissions: []string{"read", "append"},
	})

	require.NoError(t, err)
	assert.Equal(t, "v1.payload.sig", resp.Token)
}

func TestDeleteShortLinkPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/short/abc123", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	err := New(server.URL).WithAPIKey("key").DeleteShortLink("abc123")
	require.NoError(t, err)
}
