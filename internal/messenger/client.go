// Package messenger wraps outbound sends to the Messenger Platform.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	svcErr "github.com/duetapp/duet-bot/internal/errors"
)

// Sender is the outbound delivery abstraction the conversation engine
// depends on. Tests substitute a recording fake.
type Sender interface {
	Send(ctx context.Context, recipientID string, payload Payload) error
}

// Client is a thin authenticated client for the platform's send endpoint.
// No retry is built in; the platform's error surfaces to the caller.
type Client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient builds a client for the given API base URL
// (e.g. https://graph.facebook.com/v18.0) and page access token.
func NewClient(baseURL, pageAccessToken string) *Client {
	return &Client{
		apiURL:     fmt.Sprintf("%s/me/messages?access_token=%s", baseURL, url.QueryEscape(pageAccessToken)),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message Payload `json:"message"`
}

// Send posts {recipient:{id}, message: payload} to the send endpoint.
// Failures come back as platform-send errors carrying the platform's
// response body.
func (c *Client) Send(ctx context.Context, recipientID string, payload Payload) error {
	var reqBody sendRequest
	reqBody.Recipient.ID = recipientID
	reqBody.Message = payload

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return svcErr.PlatformSend(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(raw))
	if err != nil {
		return svcErr.PlatformSend(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return svcErr.PlatformSend(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return svcErr.PlatformSend(fmt.Errorf("send to %s failed: status %d: %s", recipientID, resp.StatusCode, body))
	}
	return nil
}
