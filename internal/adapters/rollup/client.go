// Package rollup is the transport to the rollup HTTP server: it fetches
// pending requests through the finish loop and posts vouchers, notices
// and reports back.
//
// The client carries no application state. Emissions are fire-and-forget
// relative to the state machine: a transition never waits for base-layer
// confirmation.
package rollup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
	"github.com/prototyp3-dev/ornithologist/pkg/logger"
)

// Request kinds delivered by the finish loop.
const (
	requestAdvance = "advance_state"
	requestInspect = "inspect_state"
)

// Poll backoff bounds while the server has no pending input.
const (
	pollBaseDelay = 100 * time.Millisecond
	pollCapDelay  = 5 * time.Second
)

// Handler consumes requests delivered by the finish loop. An Advance
// error rejects the input; Inspect errors reject the query. PinPortal is
// called once, with the sender of the very first log input.
type Handler interface {
	Advance(ctx context.Context, meta model.EventMeta, payload []byte) error
	Inspect(ctx context.Context, payload []byte) error
	PinPortal(acct model.Account) error
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client talks to one rollup server.
type Client struct {
	base string
	http *http.Client
	log  logger.Logger
}

// New builds a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wire shapes.

type finishRequest struct {
	Status string `json:"status"`
}

type rollupRequest struct {
	RequestType string          `json:"request_type"`
	Data        json.RawMessage `json:"data"`
}

type wireMetadata struct {
	MsgSender   string `json:"msg_sender"`
	EpochIndex  uint64 `json:"epoch_index"`
	InputIndex  uint64 `json:"input_index"`
	BlockNumber int64  `json:"block_number"`
	Timestamp   int64  `json:"timestamp"`
}

type advanceData struct {
	Metadata wireMetadata `json:"metadata"`
	Payload  string       `json:"payload"`
}

type inspectData struct {
	Payload string `json:"payload"`
}

// Run drives the finish loop until ctx is cancelled. Each iteration
// acknowledges the previous request and blocks for the next one; requests
// are handled strictly one at a time, in log order.
func (c *Client) Run(ctx context.Context, h Handler) error {
	status := "accept"
	for {
		req, err := c.finish(ctx, status)
		if err != nil {
			return err
		}
		status = "accept"

		switch req.RequestType {
		case requestAdvance:
			var data advanceData
			if err := json.Unmarshal(req.Data, &data); err != nil {
				c.logWarn(ctx, "malformed advance data", logger.Error(err))
				status = "reject"
				continue
			}
			if err := c.handleAdvance(ctx, h, data); err != nil {
				status = "reject"
			}
		case requestInspect:
			var data inspectData
			if err := json.Unmarshal(req.Data, &data); err != nil {
				c.logWarn(ctx, "malformed inspect data", logger.Error(err))
				status = "reject"
				continue
			}
			payload, err := Hex2Bin(data.Payload)
			if err != nil {
				status = "reject"
				continue
			}
			if err := h.Inspect(ctx, payload); err != nil {
				status = "reject"
			}
		default:
			c.logWarn(ctx, "unknown request type", logger.String("type", req.RequestType))
			status = "reject"
		}
	}
}

func (c *Client) handleAdvance(ctx context.Context, h Handler, data advanceData) error {
	sender, err := model.ParseAccount(data.Metadata.MsgSender)
	if err != nil {
		return err
	}

	// The first log input names the portal: capture, don't process.
	if data.Metadata.EpochIndex == 0 && data.Metadata.InputIndex == 0 {
		c.logInfo(ctx, "captured portal address", logger.String("portal", sender.String()))
		return h.PinPortal(sender)
	}

	payload, err := Hex2Bin(data.Payload)
	if err != nil {
		return err
	}
	meta := model.EventMeta{
		Sender:      sender,
		EpochIndex:  data.Metadata.EpochIndex,
		InputIndex:  data.Metadata.InputIndex,
		BlockNumber: data.Metadata.BlockNumber,
		Timestamp:   data.Metadata.Timestamp,
	}
	return h.Advance(ctx, meta, payload)
}

// finish acknowledges the previous request and fetches the next one,
// backing off while the server has nothing pending (202).
func (c *Client) finish(ctx context.Context, status string) (*rollupRequest, error) {
	backoff, err := retry.NewFibonacci(pollBaseDelay)
	if err != nil {
		return nil, err
	}
	backoff = retry.WithCappedDuration(pollCapDelay, backoff)

	var out rollupRequest
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.post(ctx, "/finish", finishRequest{Status: status})
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusAccepted {
			return retry.RetryableError(fmt.Errorf("no pending rollup request"))
		}
		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("finish returned status %d", resp.StatusCode))
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return json.Unmarshal(body, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Voucher posts a settlement instruction.
func (c *Client) Voucher(ctx context.Context, v model.Voucher) error {
	return c.emit(ctx, "/voucher", map[string]string{
		"address": v.Destination.String(),
		"payload": Bin2Hex(v.Payload),
	})
}

// Notice posts a human-readable result.
func (c *Client) Notice(ctx context.Context, payload string) error {
	return c.emit(ctx, "/notice", map[string]string{"payload": Str2Hex(payload)})
}

// Report posts a human-readable error or query answer.
func (c *Client) Report(ctx context.Context, payload string) error {
	return c.emit(ctx, "/report", map[string]string{"payload": Str2Hex(payload)})
}

func (c *Client) emit(ctx context.Context, endpoint string, body any) error {
	resp, err := c.post(ctx, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEmit, endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %s returned status %d", ErrEmit, endpoint, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func (c *Client) logInfo(ctx context.Context, msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Info(ctx, msg, fields...)
	}
}

func (c *Client) logWarn(ctx context.Context, msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Warn(ctx, msg, fields...)
	}
}
