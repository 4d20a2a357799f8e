// Package whatsapp is a minimal WhatsApp Cloud API client for outbound text
// notifications.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/mamadbah2/linetrack/internal/config"
)

const defaultTimeout = 15 * time.Second

// ErrEmptyMessage is returned when there is nothing to send.
var ErrEmptyMessage = errors.New("whatsapp: empty message body")

// Sender sends text messages.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// APIError is an error payload returned by the Cloud API.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: status=%d, code=%d, message=%s", e.Status, e.Code, e.Message)
}

// Client is a resty-backed Sender.
type Client struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a client from the WhatsApp settings.
func NewClient(cfg config.WhatsAppConfig) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		httpClient:    httpClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// HTTPClient exposes the transport for test interception.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient.GetClient()
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body       string `json:"body"`
		PreviewURL bool   `json:"preview_url"`
	} `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText delivers body to the recipient and returns the message id.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyMessage
	}

	msg := textMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body

	result := new(sendResponse)
	failure := new(errorResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(result).
		SetError(failure).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.IsError() {
		return "", &APIError{Status: resp.StatusCode(), Code: failure.Error.Code, Message: failure.Error.Message}
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
