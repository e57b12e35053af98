package messaging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arthastra/internal/config"
	"arthastra/internal/pkg/apperrors"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *Sender {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.MessagingConfig{
		AccountSID: "AC_test",
		AuthToken:  "secret",
		FromNumber: "+14155238886",
		BaseURL:    server.URL,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSender(cfg, logger)
}

func TestSendWhatsApp_Success(t *testing.T) {
	var gotForm map[string]string

	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC_test/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC_test", user)
		assert.Equal(t, "secret", pass)

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"Body": r.PostForm.Get("Body"),
			"From": r.PostForm.Get("From"),
			"To":   r.PostForm.Get("To"),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"sid": "SM_abc123"})
	})

	sid, err := sender.SendWhatsApp(context.Background(), "+919876543210", "Your score changed")

	require.NoError(t, err)
	assert.Equal(t, "SM_abc123", sid)
	assert.Equal(t, "whatsapp:+14155238886", gotForm["From"])
	assert.Equal(t, "whatsapp:+919876543210", gotForm["To"])
	assert.Equal(t, "Your score changed", gotForm["Body"])
}

func TestSendWhatsApp_NotOptedIn(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    63015,
			"message": "Recipient has not opted in",
		})
	})

	_, err := sender.SendWhatsApp(context.Background(), "+919876543210", "hello")

	assert.ErrorIs(t, err, apperrors.ErrRecipientNotOptedIn)
}

func TestSendWhatsApp_GenericProviderError(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"code":    20003,
			"message": "Authentication failed",
		})
	})

	_, err := sender.SendWhatsApp(context.Background(), "+919876543210", "hello")

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrRecipientNotOptedIn)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
	assert.Contains(t, err.Error(), "Authentication failed")
}

func TestSendWhatsApp_ValidatesInput(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := sender.SendWhatsApp(context.Background(), "", "hello")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = sender.SendWhatsApp(context.Background(), "+919876543210", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSendWhatsApp_MalformedSuccessBody(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json at all")
	})

	_, err := sender.SendWhatsApp(context.Background(), "+919876543210", "hello")
	assert.Error(t, err)
}
