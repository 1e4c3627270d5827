package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/annosync/internal/protocol"
)

func testRequest() protocol.SyncRequest {
	return protocol.SyncRequest{
		Owner: "acme",
		Repo:  "design-sync",
		Issues: []protocol.IssueRequest{
			{Title: "Fix Button", Body: "...", Labels: []string{"QA"}, NodeID: "1:2", Signature: "a1b2"},
		},
	}
}

func TestSend_Success(t *testing.T) {
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(SecretHeader)

		var req protocol.SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Issues, 1)

		resp := protocol.SyncResponse{
			Created: 1,
			Results: []protocol.IssueResult{
				{NodeID: "1:2", Signature: "a1b2", Status: 201, URL: "https://github.com/acme/design-sync/issues/42"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := New(srv.URL, "hunter2", 0)
	outcome := client.Send(context.Background(), testRequest())

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	require.NotNil(t, outcome.Response)
	assert.Equal(t, 1, outcome.Response.Created)
	assert.Equal(t, "hunter2", gotSecret)
	require.Len(t, outcome.Response.Results, 1)
	assert.Equal(t, "a1b2", outcome.Response.Results[0].Signature)
}

func TestSend_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad secret"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	outcome := client.Send(context.Background(), testRequest())

	assert.Equal(t, OutcomeRejected, outcome.Kind)
	assert.Equal(t, http.StatusUnauthorized, outcome.Status)
	assert.Contains(t, outcome.Message, "bad secret")
}

func TestSend_TimeoutIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(srv.URL, "", 20*time.Millisecond)
	outcome := client.Send(context.Background(), testRequest())

	require.Equal(t, OutcomeUnreachable, outcome.Kind)
	assert.Equal(t, ReasonTimeout, outcome.Reason)
}

func TestSend_ConnectionError(t *testing.T) {
	// Closed server: connection refused, not a timeout.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, "", time.Second)
	outcome := client.Send(context.Background(), testRequest())

	require.Equal(t, OutcomeUnreachable, outcome.Kind)
	assert.NotEqual(t, ReasonTimeout, outcome.Reason)
	assert.NotEmpty(t, outcome.Reason)
}

func TestSend_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := New(srv.URL, "", 0)
	outcome := client.Send(context.Background(), testRequest())

	assert.Equal(t, OutcomeRejected, outcome.Kind)
	assert.Contains(t, outcome.Message, "decode response")
}
