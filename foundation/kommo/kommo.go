// Package kommo provides a client for the Kommo custom channel API. Outbound
// messages are signed with the per-channel shared secret following the
// platform's scheme: an HMAC-SHA1 hex digest of the body in X-Signature and
// an MD5 hex digest of the body in Content-MD5.
package kommo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lyracrm/lyra/foundation/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config defines the information needed to construct a Client.
type Config struct {
	BotID         string
	ChannelSecret string
	ScopeID       string
	BaseURL       string
	BotName       string
}

// Client sends messages into a Kommo custom channel.
type Client struct {
	log     *logger.Logger
	http    *http.Client
	botID   string
	secret  string
	scopeID string
	baseURL string
	botName string
	now     func() time.Time
}

// New constructs a Client for the configured channel.
func New(log *logger.Logger, cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://amojo.kommo.com"
	}

	botName := cfg.BotName
	if botName == "" {
		botName = "Lyra Assistant"
	}

	return &Client{
		log: log,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		botID:   cfg.BotID,
		secret:  cfg.ChannelSecret,
		scopeID: cfg.ScopeID,
		baseURL: baseURL,
		botName: botName,
		now:     time.Now,
	}
}

// Configured reports whether the client carries everything needed to call
// the channel API.
func (c *Client) Configured() bool {
	return c.botID != "" && c.secret != "" && c.scopeID != ""
}

// Reply describes an outbound reply into an existing conversation.
type Reply struct {
	ConversationID string
	ReceiverID     string
	ReceiverName   string
	ReceiverAvatar string
	Text           string
}

// Result is the soft-failure outcome of a reply dispatch. Failures are
// reported here, never raised.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SendReply posts a signed new_message event to the channel scope. Any
// failure is logged and returned as a Result, never as an error.
func (c *Client) SendReply(ctx context.Context, reply Reply) Result {
	if !c.Configured() {
		c.log.Error(ctx, "kommo: missing configuration: bot id, channel secret, or scope id")
		return Result{Success: false, Error: "missing configuration"}
	}

	now := c.now()

	payload := newMessageEvent{
		EventType: "new_message",
		Payload: messagePayload{
			Timestamp:      now.Unix(),
			MsecTimestamp:  now.UnixMilli(),
			MsgID:          "reply-" + uuid.NewString(),
			ConversationID: reply.ConversationID,
			Sender: participant{
				ID:    "bot-" + c.botID,
				Name:  c.botName,
				RefID: c.botID,
			},
			Receiver: participant{
				ID:     reply.ReceiverID,
				Name:   reply.ReceiverName,
				Avatar: reply.ReceiverAvatar,
			},
			Message: messageBody{
				Type: "text",
				Text: reply.Text,
			},
			Silent: false,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error(ctx, "kommo: marshaling payload", "err", err)
		return Result{Success: false, Error: err.Error()}
	}

	url := fmt.Sprintf("%s/v2/origin/custom/%s", c.baseURL, c.scopeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.log.Error(ctx, "kommo: building request", "err", err)
		return Result{Success: false, Error: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Date", now.UTC().Format(http.TimeFormat))
	req.Header.Set("Content-MD5", contentMD5(body))
	req.Header.Set("X-Signature", signature(body, c.secret))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error(ctx, "kommo: sending reply", "err", err)
		return Result{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		c.log.Error(ctx, "kommo: reading response", "err", err)
		return Result{Success: false, Error: err.Error()}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		c.log.Error(ctx, "kommo: reply rejected", "status", resp.StatusCode, "body", string(data))
		return Result{Success: false, Error: fmt.Sprintf("status %d: %s", resp.StatusCode, data)}
	}

	c.log.Info(ctx, "kommo: reply sent", "status", resp.StatusCode)

	return Result{Success: true, Data: data}
}

// signature computes the hex HMAC-SHA1 digest of the body with the channel
// secret.
func signature(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// contentMD5 computes the hex MD5 digest of the body.
func contentMD5(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

type newMessageEvent struct {
	EventType string         `json:"event_type"`
	Payload   messagePayload `json:"payload"`
}

type messagePayload struct {
	Timestamp      int64       `json:"timestamp"`
	MsecTimestamp  int64       `json:"msec_timestamp"`
	MsgID          string      `json:"msgid"`
	ConversationID string      `json:"conversation_id"`
	Sender         participant `json:"sender"`
	Receiver       participant `json:"receiver"`
	Message        messageBody `json:"message"`
	Silent         bool        `json:"silent"`
}

type participant struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	RefID  string `json:"ref_id,omitempty"`
}

type messageBody struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
