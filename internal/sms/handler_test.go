package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plumbing_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeSender struct {
	sid   string
	err   error
	to    string
	body  string
	calls int
}

func (f *fakeSender) Send(ctx context.Context, to, body string) (string, error) {
	f.calls++
	f.to = to
	f.body = body
	if f.err != nil {
		return "", f.err
	}
	return f.sid, nil
}

type relayConfig struct {
	secret  string
	enabled bool
	notify  string
}

func (c relayConfig) GetTwilioAccountSID() string  { return "AC123" }
func (c relayConfig) GetTwilioAuthToken() string   { return "token" }
func (c relayConfig) GetTwilioFromNumber() string  { return "+15550000000" }
func (c relayConfig) GetNotifyPhoneNumber() string { return c.notify }
func (c relayConfig) GetFunctionSecret() string    { return c.secret }
func (c relayConfig) IsSMSEnabled() bool           { return c.enabled }

func newRelayEngine(sender Sender, cfg relayConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := NewHandler(sender, cfg, logger.New("test"))
	engine.Any("/api/send-sms", handler.Relay)
	return engine
}

func TestRelayRejectsNonPOST(t *testing.T) {
	engine := newRelayEngine(&fakeSender{}, relayConfig{secret: "s3cret", enabled: true})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/send-sms", nil)
		req.Header.Set("X-Function-Secret", "s3cret")
		engine.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want %d", method, rec.Code, http.StatusMethodNotAllowed)
		}
	}
}

func TestRelayRejectsWrongSecret(t *testing.T) {
	sender := &fakeSender{sid: "SM1"}
	engine := newRelayEngine(sender, relayConfig{secret: "s3cret", enabled: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(`{"to":"+12505551234","body":"hi"}`))
	req.Header.Set("X-Function-Secret", "wrong")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if sender.calls != 0 {
		t.Fatalf("sender called %d times, want 0", sender.calls)
	}
}

func TestRelayRejectsWhenSecretUnconfigured(t *testing.T) {
	engine := newRelayEngine(&fakeSender{}, relayConfig{secret: "", enabled: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(`{"to":"+12505551234","body":"hi"}`))
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRelayRequiresToAndBody(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing to", `{"body":"hi"}`},
		{"missing body", `{"to":"+12505551234"}`},
		{"malformed json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			engine := newRelayEngine(sender, relayConfig{secret: "s3cret", enabled: true})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(tt.payload))
			req.Header.Set("X-Function-Secret", "s3cret")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if sender.calls != 0 {
				t.Fatalf("sender called %d times, want 0", sender.calls)
			}
		})
	}
}

func TestRelaySendsMessage(t *testing.T) {
	sender := &fakeSender{sid: "SM42"}
	engine := newRelayEngine(sender, relayConfig{secret: "s3cret", enabled: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(`{"to":"+12505551234","body":"Your plumber is on the way"}`))
	req.Header.Set("X-Function-Secret", "s3cret")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["success"] != true || resp["sid"] != "SM42" {
		t.Fatalf("response = %v", resp)
	}
	if sender.to != "+12505551234" {
		t.Fatalf("sender.to = %q", sender.to)
	}
}

func TestRelayReportsSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("unreachable carrier")}
	engine := newRelayEngine(sender, relayConfig{secret: "s3cret", enabled: true})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(`{"to":"+12505551234","body":"hi"}`))
	req.Header.Set("X-Function-Secret", "s3cret")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["success"] != false {
		t.Fatalf("response = %v", resp)
	}
}

func TestRelayWhenSMSNotConfigured(t *testing.T) {
	engine := newRelayEngine(&fakeSender{}, relayConfig{secret: "s3cret", enabled: false})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/send-sms", strings.NewReader(`{"to":"+12505551234","body":"hi"}`))
	req.Header.Set("X-Function-Secret", "s3cret")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
