// Package messaging sends outbound WhatsApp messages through the hosted
// provider's REST API.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arthastra/internal/config"
	"arthastra/internal/infrastructure/monitoring"
	"arthastra/internal/pkg/apperrors"
)

// errCodeNotOptedIn is the provider's code for a recipient who has not
// opted in to the WhatsApp channel.
const errCodeNotOptedIn = 63015

type Sender struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	from       string
	logger     *slog.Logger
}

func NewSender(cfg config.MessagingConfig, logger *slog.Logger) *Sender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}
	return &Sender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.FromNumber,
		logger:     logger.With(slog.String("component", "whatsappSender")),
	}
}

type messageResponse struct {
	SID string `json:"sid"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SendWhatsApp delivers a message to the E.164 number and returns the
// provider's message SID. The whatsapp: channel prefix is added here, callers
// pass bare numbers.
func (s *Sender) SendWhatsApp(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", apperrors.NewValidationError("to", "recipient number cannot be empty")
	}
	if body == "" {
		return "", apperrors.NewValidationError("body", "message body cannot be empty")
	}

	form := url.Values{}
	form.Set("Body", body)
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+to)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build message request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		monitoring.MessagesSent.WithLabelValues("transport_error").Inc()
		return "", apperrors.WrapProviderError(err, "messaging")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		monitoring.MessagesSent.WithLabelValues("transport_error").Inc()
		return "", apperrors.WrapProviderError(err, "messaging")
	}

	if resp.StatusCode >= 400 {
		return "", s.classifyFailure(ctx, resp.StatusCode, payload)
	}

	var msg messageResponse
	if err := json.Unmarshal(payload, &msg); err != nil || msg.SID == "" {
		monitoring.MessagesSent.WithLabelValues("bad_response").Inc()
		return "", apperrors.WrapProviderError(fmt.Errorf("unexpected response body"), "messaging")
	}

	monitoring.MessagesSent.WithLabelValues("sent").Inc()
	s.logger.InfoContext(ctx, "WhatsApp message sent", slog.String("messageSID", msg.SID))
	return msg.SID, nil
}

func (s *Sender) classifyFailure(ctx context.Context, status int, payload []byte) error {
	var provErr errorResponse
	_ = json.Unmarshal(payload, &provErr)

	if provErr.Code == errCodeNotOptedIn {
		monitoring.MessagesSent.WithLabelValues("not_opted_in").Inc()
		return fmt.Errorf("%w: provider code %d", apperrors.ErrRecipientNotOptedIn, provErr.Code)
	}

	monitoring.MessagesSent.WithLabelValues("provider_error").Inc()
	s.logger.WarnContext(ctx, "Provider rejected message",
		slog.Int("status", status), slog.Int("code", provErr.Code), slog.String("message", provErr.Message))
	return apperrors.WrapProviderError(
		fmt.Errorf("status %d, code %d: %s", status, provErr.Code, provErr.Message), "messaging")
}
