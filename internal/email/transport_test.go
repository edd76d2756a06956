package email

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/logger"

	"golang.org/x/oauth2"
)

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("GMAIL_CLIENT_ID", "client-id")
	t.Setenv("GMAIL_CLIENT_SECRET", "client-secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh-token")
}

func newTestGmail(cfg *config.Config, srv *httptest.Server) *GmailTransport {
	g := NewGmailTransport(cfg)
	g.sendURL = srv.URL + "/send"
	g.endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	g.httpClient = srv.Client()
	return g
}

func TestGmailSendRefreshesTokenAndPostsRawMessage(t *testing.T) {
	setCredentials(t)
	cfg := &config.Config{MailTimeout: 5 * time.Second, MailFromName: "Apex", MailFromAddress: "sales@apex.example"}

	var tokenCalls int
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			tokenCalls++
			_ = r.ParseForm()
			if r.Form.Get("refresh_token") != "refresh-token" || r.Form.Get("grant_type") != "refresh_token" {
				t.Errorf("unexpected token form %v", r.Form)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
		case "/send":
			if r.Header.Get("Authorization") != "Bearer access-123" {
				t.Errorf("authorization = %q", r.Header.Get("Authorization"))
			}
			var body gmailSendRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			decoded, err := base64.RawURLEncoding.DecodeString(body.Raw)
			if err != nil {
				t.Errorf("raw is not base64url: %v", err)
			}
			raw = string(decoded)
			_, _ = w.Write([]byte(`{"id":"msg-1","threadId":"thread-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := newTestGmail(cfg, srv)
	msg := Message{To: "jane@corp.com", ToName: "Jane", Subject: "Hello Jane", HTMLBody: "<p>Hello</p>"}

	for i := 0; i < 2; i++ {
		receipt, err := g.Send(context.Background(), msg)
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if receipt.MessageID != "msg-1" {
			t.Fatalf("message id = %q", receipt.MessageID)
		}
	}
	if tokenCalls != 2 {
		t.Fatalf("token refreshed %d times, want once per send", tokenCalls)
	}
	for _, want := range []string{"Subject: Hello Jane", "jane@corp.com", "<p>Hello</p>", "text/plain", "text/html"} {
		if !strings.Contains(raw, want) {
			t.Errorf("raw message missing %q", want)
		}
	}
}

func TestGmailSendReportsNon2xx(t *testing.T) {
	setCredentials(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"a","token_type":"Bearer"}`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"insufficient scope"}`))
	}))
	defer srv.Close()

	g := newTestGmail(&config.Config{MailTimeout: time.Second}, srv)
	_, err := g.Send(context.Background(), Message{To: "a@b.com", Subject: "s", HTMLBody: "<p>b</p>"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestGmailSendWithoutCredentials(t *testing.T) {
	t.Setenv("GMAIL_CLIENT_ID", "")
	t.Setenv("GMAIL_CLIENT_SECRET", "")
	t.Setenv("GMAIL_REFRESH_TOKEN", "")

	g := NewGmailTransport(&config.Config{MailTimeout: time.Second})
	if _, err := g.Send(context.Background(), Message{To: "a@b.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGmailSendTokenFailure(t *testing.T) {
	setCredentials(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	g := newTestGmail(&config.Config{MailTimeout: time.Second}, srv)
	if _, err := g.Send(context.Background(), Message{To: "a@b.com", Subject: "s", HTMLBody: "x"}); err == nil {
		t.Fatal("expected token refresh error")
	}
}

func TestNewTransportSelection(t *testing.T) {
	log := logger.NewNop()

	if _, ok := NewTransport(&config.Config{MailTransport: "smtp"}, log).(DisabledTransport); !ok {
		t.Fatal("smtp without host should be disabled")
	}
	if _, ok := NewTransport(&config.Config{MailTransport: "smtp", SMTPHost: "localhost"}, log).(*SMTPTransport); !ok {
		t.Fatal("expected SMTP transport")
	}
	if _, ok := NewTransport(&config.Config{MailTransport: "gmail"}, log).(*GmailTransport); !ok {
		t.Fatal("expected Gmail transport")
	}
}

func TestDisabledTransport(t *testing.T) {
	if _, err := (DisabledTransport{}).Send(context.Background(), Message{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestBuildMIMERequiresRecipient(t *testing.T) {
	if _, err := buildMIME("Apex", "sales@apex.example", Message{Subject: "x"}); err == nil {
		t.Fatal("expected error without recipient")
	}
}
