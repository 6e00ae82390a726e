package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vmunix/reqarr/internal/library"
)

// WebhookAgent posts notifications as JSON to a URL.
type WebhookAgent struct {
	url        string
	authHeader string
	types      Kind
	httpClient *http.Client
}

// WebhookOption configures a WebhookAgent.
type WebhookOption func(*WebhookAgent)

// WithAuthHeader sets the Authorization header sent with every post.
func WithAuthHeader(v string) WebhookOption {
	return func(a *WebhookAgent) {
		a.authHeader = v
	}
}

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(hc *http.Client) WebhookOption {
	return func(a *WebhookAgent) {
		a.httpClient = hc
	}
}

// NewWebhookAgent creates an agent posting kinds in types to url.
func NewWebhookAgent(url string, types Kind, opts ...WebhookOption) *WebhookAgent {
	a := &WebhookAgent{
		url:        url,
		types:      types,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *WebhookAgent) Name() string { return "webhook" }

func (a *WebhookAgent) ShouldSend(kind Kind) bool {
	return a.url != "" && a.types.Includes(kind)
}

// WebhookBody is the JSON document posted by WebhookAgent.
type WebhookBody struct {
	NotificationType string          `json:"notification_type"`
	Subject          string          `json:"subject"`
	Message          string          `json:"message,omitempty"`
	Image            string          `json:"image,omitempty"`
	Extra            []Field         `json:"extra,omitempty"`
	NotifyUserEmail  string          `json:"notify_user_email,omitempty"`
	Media            *WebhookMedia   `json:"media,omitempty"`
	Request          *WebhookRequest `json:"request,omitempty"`
}

type WebhookMedia struct {
	MediaType string `json:"media_type"`
	TMDBID    int64  `json:"tmdb_id"`
	TVDBID    *int64 `json:"tvdb_id,omitempty"`
	Status    string `json:"status"`
	Status4K  string `json:"status_4k"`
}

type WebhookRequest struct {
	RequestID   int64 `json:"request_id"`
	RequestedBy int64 `json:"requested_by"`
	Is4K        bool  `json:"is_4k"`
}

func newWebhookBody(kind Kind, p Payload) WebhookBody {
	body := WebhookBody{
		NotificationType: kind.String(),
		Subject:          p.Subject,
		Message:          p.Message,
		Image:            p.Image,
		Extra:            p.Extra,
	}
	if p.NotifyUser != nil {
		body.NotifyUserEmail = p.NotifyUser.Email
	}
	if m := p.Media; m != nil {
		body.Media = &WebhookMedia{
			MediaType: string(m.Type),
			TMDBID:    m.TMDBID,
			TVDBID:    m.TVDBID,
			Status:    string(m.StatusFor(library.VariantStandard)),
			Status4K:  string(m.StatusFor(library.Variant4K)),
		}
	}
	if r := p.Request; r != nil {
		body.Request = &WebhookRequest{RequestID: r.ID, RequestedBy: r.RequestedBy, Is4K: r.Is4K}
	}
	return body
}

// Send posts the notification.
func (a *WebhookAgent) Send(ctx context.Context, kind Kind, p Payload) error {
	data, err := json.Marshal(newWebhookBody(kind, p))
	if err != nil {
		return fmt.Errorf("marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.authHeader != "" {
		req.Header.Set("Authorization", a.authHeader)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
