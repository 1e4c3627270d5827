// Package transport delivers one sync batch to the remote sync service
// and reports a single structured outcome per call.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/annosync/internal/core/logging"
	"github.com/colonyops/annosync/internal/protocol"
)

// DefaultTimeout bounds a sync request when no override is configured.
const DefaultTimeout = 20 * time.Second

// ReasonTimeout is the distinguished unreachable reason for a request
// that exceeded its time budget, as opposed to a connection failure.
const ReasonTimeout = "timeout"

// SecretHeader carries the optional shared secret.
const SecretHeader = "X-Annosync-Secret"

const maxErrorBody = 4 << 10

// OutcomeKind discriminates the three possible results of Send.
type OutcomeKind int

const (
	// OutcomeSuccess means the service returned a well-formed batch response.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeRejected means the service responded, but not with a usable
	// 2xx payload.
	OutcomeRejected
	// OutcomeUnreachable means no response arrived: connection failure,
	// or the time budget elapsed first.
	OutcomeUnreachable
)

// Outcome is the single result of one Send call.
type Outcome struct {
	Kind OutcomeKind

	// Response is set for OutcomeSuccess.
	Response *protocol.SyncResponse

	// Status and Message are set for OutcomeRejected.
	Status  int
	Message string

	// Reason is set for OutcomeUnreachable; ReasonTimeout when the
	// budget elapsed.
	Reason string
}

// Client posts batches to a sync endpoint.
type Client struct {
	endpoint string
	secret   string
	timeout  time.Duration
	http     *http.Client
	log      zerolog.Logger
}

// New creates a Client. A zero timeout selects DefaultTimeout.
func New(endpoint, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		secret:   secret,
		timeout:  timeout,
		http:     &http.Client{},
		log:      logging.Component("transport"),
	}
}

// Send transmits the whole batch as one request and produces exactly
// one outcome. No partial or streaming results exist at this layer.
func (c *Client) Send(ctx context.Context, req protocol.SyncRequest) Outcome {
	payload, err := json.Marshal(req)
	if err != nil {
		return Outcome{Kind: OutcomeUnreachable, Reason: fmt.Sprintf("encode request: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Outcome{Kind: OutcomeUnreachable, Reason: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		httpReq.Header.Set(SecretHeader, c.secret)
	}

	c.log.Debug().Str("endpoint", c.endpoint).Int("issues", len(req.Issues)).Msg("sending batch")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if isTimeout(ctx, err) {
			return Outcome{Kind: OutcomeUnreachable, Reason: ReasonTimeout}
		}
		return Outcome{Kind: OutcomeUnreachable, Reason: err.Error()}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close sync response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Outcome{
			Kind:    OutcomeRejected,
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		}
	}

	var syncResp protocol.SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&syncResp); err != nil {
		return Outcome{
			Kind:    OutcomeRejected,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode response: %v", err),
		}
	}

	return Outcome{Kind: OutcomeSuccess, Response: &syncResp}
}

// isTimeout distinguishes an elapsed budget from a plain connection
// error so callers can give a tailored message.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err)
}
