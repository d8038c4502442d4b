package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// Sender delivers a text message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Client sends SMS through the Twilio Messages API.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Twilio SMS client.
func NewClient(accountSID, authToken, fromNumber string, log *logger.Logger) *Client {
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type twilioMessage struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"message"`
	ErrorCode    int    `json:"code"`
}

// Send posts a message to Twilio and returns the message SID.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, c.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to build Twilio request", err).WithOp("sms.Send")
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("twilio", "send", err)
		return "", apperr.Wrap(apperr.KindUpstream, "Twilio request failed", err).WithOp("sms.Send")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to read Twilio response", err).WithOp("sms.Send")
	}

	var msg twilioMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "failed to decode Twilio response", err).WithOp("sms.Send")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := msg.ErrorMessage
		if errMsg == "" {
			errMsg = fmt.Sprintf("Twilio returned status %d", resp.StatusCode)
		}
		c.log.UpstreamError("twilio", "send", fmt.Errorf("%s (code %d)", errMsg, msg.ErrorCode))
		return "", apperr.Upstream(errMsg).WithOp("sms.Send")
	}

	c.log.Info("sms sent", "sid", msg.SID, "status", msg.Status)
	return msg.SID, nil
}
