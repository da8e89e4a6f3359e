package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const defaultEndpoint = "https://api.resend.com/emails"

// Config carries the Resend account settings, injected from the application
// configuration at startup.
type Config struct {
	APIKey   string
	From     string
	Endpoint string
	Timeout  time.Duration
}

// Resend delivers email through the Resend HTTP API.
type Resend struct {
	client   *fasthttp.Client
	apiKey   string
	from     string
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
}

func NewResend(cfg Config, logger *zap.Logger) *Resend {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resend{
		client:   &fasthttp.Client{},
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		logger:   logger,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (r *Resend) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	body, err := json.Marshal(sendRequest{
		From:    r.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.SetBody(body)

	if err := r.client.DoTimeout(req, resp, r.timeout); err != nil {
		return fmt.Errorf("mailer: request failed: %w", err)
	}

	if resp.StatusCode() >= 400 {
		r.logger.Warn("mail provider rejected message",
			zap.Int("status", resp.StatusCode()),
			zap.String("to", email.To))
		return fmt.Errorf("mailer: provider returned status %d", resp.StatusCode())
	}
	return nil
}

var _ Mailer = (*Resend)(nil)
