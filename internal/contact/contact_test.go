package contact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/notify"
	"github.com/fairyhunter13/storefront/internal/store"
)

type recorder struct {
	msgs   []notify.Message
	reject bool
}

func (r *recorder) Enqueue(m notify.Message) bool {
	if r.reject {
		return false
	}
	r.msgs = append(r.msgs, m)
	return true
}

func TestSubmitStoresAndNotifies(t *testing.T) {
	rec := &recorder{}
	svc := NewService(store.NewMemory(), rec, "inbox@example.com")

	m, err := svc.Submit(context.Background(), "Ana", "ana@example.com", "Do you ship abroad?")
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, "inbox@example.com", rec.msgs[0].To)
	assert.Contains(t, rec.msgs[0].Text, "Do you ship abroad?")
}

func TestSubmitWithoutInboxOnlyStores(t *testing.T) {
	rec := &recorder{}
	svc := NewService(store.NewMemory(), rec, "")
	_, err := svc.Submit(context.Background(), "Ana", "ana@example.com", "hi")
	require.NoError(t, err)
	assert.Empty(t, rec.msgs)
}

func TestSubmitSurvivesRejectedNotification(t *testing.T) {
	svc := NewService(store.NewMemory(), &recorder{reject: true}, "inbox@example.com")
	_, err := svc.Submit(context.Background(), "Ana", "ana@example.com", "hi")
	assert.NoError(t, err)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(store.NewMemory(), nil, "")
	cases := map[string][3]string{
		"missing name":    {"", "a@b.c", "hi"},
		"missing email":   {"Ana", "", "hi"},
		"malformed email": {"Ana", "ana.example.com", "hi"},
		"missing comment": {"Ana", "a@b.c", " "},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), in[0], in[1], in[2])
			var ve *apperr.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}
