package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/notify/mocks"
	"github.com/fairyhunter13/storefront/internal/obs"
)

func TestSendGridMailerPostsMessage(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := notify.NewSendGridMailer("key", "shop@example.com", "Shop").WithHost(srv.URL)
	err := m.Send(context.Background(), notify.Message{To: "ana@example.com", Subject: "Hi", Text: "<b>hello</b>"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Equal(t, "Hi", gotBody["subject"])
	from, _ := gotBody["from"].(map[string]any)
	assert.Equal(t, "shop@example.com", from["email"])
}

func TestSendGridMailerFailsOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := notify.NewSendGridMailer("key", "shop@example.com", "Shop").WithHost(srv.URL)
	err := m.Send(context.Background(), notify.Message{To: "ana@example.com", Subject: "Hi", Text: "x"})
	assert.Error(t, err)
}

func TestSendGridMailerValidatesAddresses(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, notify.NewSendGridMailer("", "a@b.c", "").Send(ctx, notify.Message{To: "x@y.z"}))
	assert.Error(t, notify.NewSendGridMailer("k", "", "").Send(ctx, notify.Message{To: "x@y.z"}))
	assert.Error(t, notify.NewSendGridMailer("k", "a@b.c", "").Send(ctx, notify.Message{}))
}

func TestDeliverCountsOutcomes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mailer := mocks.NewMockMailer(ctrl)

	ok := notify.Message{To: "a@example.com", Subject: "ok"}
	bad := notify.Message{To: "b@example.com", Subject: "bad"}
	mailer.EXPECT().Send(gomock.Any(), ok).Return(nil)
	mailer.EXPECT().Send(gomock.Any(), bad).Return(errors.New("smtp down"))

	sent, failed := obs.NotificationsSent.Value(), obs.NotificationsFailed.Value()
	deliver := notify.Deliver(mailer)
	require.NoError(t, deliver(context.Background(), ok))
	require.Error(t, deliver(context.Background(), bad))
	assert.Equal(t, sent+1, obs.NotificationsSent.Value())
	assert.Equal(t, failed+1, obs.NotificationsFailed.Value())
}

func TestTemplates(t *testing.T) {
	m := notify.OrderReceived("ana@example.com", 42, "https://shop.example.com")
	assert.Equal(t, "Order #42 received", m.Subject)
	assert.Contains(t, m.Text, "https://shop.example.com/orders/42")

	c := notify.ContactReceived("inbox@example.com", model.ContactMessage{Name: "Ana", Email: "ana@example.com", Comment: "Hello"})
	assert.Equal(t, "inbox@example.com", c.To)
	assert.Contains(t, c.Text, "Hello")
	assert.NoError(t, notify.LogMailer{}.Send(context.Background(), c))
}
