package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"consulting_leads_backend/platform/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	gmailSendURL   = "https://gmail.googleapis.com/gmail/v1/users/me/messages/send"
	gmailSendScope = "https://www.googleapis.com/auth/gmail.send"
	maxErrorBody   = 512
)

// GmailTransport sends through the Gmail API using an OAuth refresh token.
// The client id, secret and refresh token are read on every call and a new
// access token is fetched each time; nothing is cached.
type GmailTransport struct {
	cfg        config.MailConfig
	sendURL    string
	endpoint   oauth2.Endpoint
	httpClient *http.Client
}

func NewGmailTransport(cfg config.MailConfig) *GmailTransport {
	return &GmailTransport{
		cfg:        cfg,
		sendURL:    gmailSendURL,
		endpoint:   google.Endpoint,
		httpClient: &http.Client{},
	}
}

type gmailSendRequest struct {
	Raw string `json:"raw"`
}

type gmailSendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

func (g *GmailTransport) Send(ctx context.Context, msg Message) (Receipt, error) {
	creds := g.cfg.GetMailCredentials()
	if !creds.Complete() {
		return Receipt{}, ErrNotConfigured
	}

	timeout := g.cfg.GetMailTimeout()
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m, err := buildMIME(g.cfg.GetMailFromName(), g.cfg.GetMailFromAddress(), msg)
	if err != nil {
		return Receipt{}, err
	}
	var mime bytes.Buffer
	if _, err := m.WriteTo(&mime); err != nil {
		return Receipt{}, fmt.Errorf("encode message: %w", err)
	}

	token, err := g.accessToken(ctx, creds)
	if err != nil {
		return Receipt{}, err
	}

	payload, err := json.Marshal(gmailSendRequest{Raw: base64.RawURLEncoding.EncodeToString(mime.Bytes())})
	if err != nil {
		return Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.sendURL, bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	token.SetAuthHeader(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("gmail send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Receipt{}, fmt.Errorf("gmail send returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out gmailSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Receipt{}, fmt.Errorf("decode gmail response: %w", err)
	}
	return Receipt{MessageID: out.ID}, nil
}

func (g *GmailTransport) accessToken(ctx context.Context, creds config.MailCredentials) (*oauth2.Token, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     g.endpoint,
		Scopes:       []string{gmailSendScope},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	token, err := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("gmail token refresh: %w", err)
	}
	return token, nil
}
