package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	messages []Message
	err      error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func newTestClient(sender Sender) *Client {
	logger := zerolog.Nop()
	return NewClientWithSender(sender, Address{Name: "Riva Digital", Email: "hello@rivadigital.co"}, "team@rivadigital.co", &logger)
}

func TestRenderAllTemplates(t *testing.T) {
	for _, tmpl := range Templates {
		t.Run(string(tmpl), func(t *testing.T) {
			data, ok := PreviewData[tmpl]
			require.True(t, ok, "missing preview data")

			html, err := Render(tmpl, data)
			require.NoError(t, err)
			assert.Contains(t, html, "<!DOCTYPE html>")
			assert.Contains(t, html, "Riva Digital")
		})
	}
}

func TestRenderWelcomeFormatsMoney(t *testing.T) {
	html, err := Render(TemplateWelcome, PreviewData[TemplateWelcome])
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Jane,")
	assert.Contains(t, html, "$99.00")
	assert.Contains(t, html, "$8.88")
	assert.Contains(t, html, "$156.88")
	assert.NotContains(t, html, "free trial")
}

func TestRenderEscapesUserInput(t *testing.T) {
	html, err := Render(TemplateContactNotification, ContactNotificationData{
		Name:    "<script>alert(1)</script>",
		Email:   "a@b.com",
		Service: "seo",
		Message: "hi",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$0.00", dollars(int64(0)))
	assert.Equal(t, "$8.88", dollars(int64(888)))
	assert.Equal(t, "$1,294.00", dollars(129400))
	assert.Equal(t, "$1,234,567.89", dollars(int64(123456789)))
	assert.Equal(t, "-$5.00", dollars(-500))
}

func TestSendContactNotification(t *testing.T) {
	sender := &recordingSender{}
	client := newTestClient(sender)

	err := client.SendContactNotification(context.Background(), ContactNotificationData{
		Name:    "Jane Cooper",
		Email:   "jane@cooperbakery.com",
		Service: "seo",
		Message: "Need help with maps.",
	})
	require.NoError(t, err)

	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, []string{"team@rivadigital.co"}, msg.To)
	assert.Equal(t, "jane@cooperbakery.com", msg.ReplyTo)
	assert.Equal(t, "New inquiry from Jane Cooper", msg.Subject)
	assert.Equal(t, "Riva Digital <hello@rivadigital.co>", msg.From.String())
	assert.Equal(t, []string{"contact_notification"}, msg.Tags)
	assert.Contains(t, msg.HTML, "Need help with maps.")
}

func TestSendEmailWrapsSenderError(t *testing.T) {
	client := newTestClient(&recordingSender{err: errors.New("boom")})

	err := client.SendContactAutoreply(context.Background(), "jane@cooperbakery.com", ContactAutoreplyData{Name: "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact_autoreply")
}

func TestSyncContactDisabledWithoutBrevo(t *testing.T) {
	client := newTestClient(&recordingSender{})
	assert.False(t, client.ContactSyncEnabled())
	assert.ErrorIs(t, client.SyncContact(context.Background(), Contact{Email: "a@b.com"}), ErrContactSyncDisabled)
}

func TestBrevoClient(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		if r.URL.Path == "/contacts" && gotBody["email"] == "bad@example.com" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"invalid_parameter","message":"email is not valid"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	brevo := NewBrevoClient(srv.URL, "xkeysib-test", 7)

	t.Run("transactional email", func(t *testing.T) {
		err := brevo.Send(context.Background(), Message{
			From:    Address{Name: "Riva", Email: "hello@rivadigital.co"},
			To:      []string{"jane@cooperbakery.com"},
			ReplyTo: "team@rivadigital.co",
			Subject: "Hi",
			HTML:    "<p>Hi</p>",
		})
		require.NoError(t, err)

		assert.Equal(t, "/smtp/email", gotPath)
		assert.Equal(t, "xkeysib-test", gotKey)
		assert.Equal(t, "Hi", gotBody["subject"])
		assert.Equal(t, "<p>Hi</p>", gotBody["htmlContent"])
		assert.Equal(t, map[string]any{"email": "team@rivadigital.co"}, gotBody["replyTo"])
	})

	t.Run("contact upsert", func(t *testing.T) {
		err := brevo.UpsertContact(context.Background(), Contact{
			Email:      "jane@cooperbakery.com",
			Attributes: map[string]any{"FIRSTNAME": "Jane"},
		})
		require.NoError(t, err)

		assert.Equal(t, "/contacts", gotPath)
		assert.Equal(t, true, gotBody["updateEnabled"])
		assert.Equal(t, []any{float64(7)}, gotBody["listIds"])
	})

	t.Run("api error", func(t *testing.T) {
		err := brevo.UpsertContact(context.Background(), Contact{Email: "bad@example.com"})

		var apiErr *BrevoError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "invalid_parameter", apiErr.Code)
	})
}
