package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/storefront/internal/apperr"
	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/store"
)

func setup(t *testing.T, stock int) (*Service, *store.Memory, model.Product) {
	t.Helper()
	s := store.NewMemory()
	p := model.Product{Name: "Mug", Price: decimal.RequireFromString("4.5"), Stock: stock, Images: []string{}}
	require.NoError(t, s.CreateProduct(context.Background(), &p))
	return NewService(s), s, p
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{nil, 1, false},
		{float64(3), 3, false},
		{float64(0), 1, false},
		{"4", 4, false},
		{"abc", 1, false},
		{json.Number("2"), 2, false},
		{true, 1, false},
		{float64(-1), 0, true},
		{"-3", 0, true},
		{2.5, 0, true},
	}
	for _, tc := range cases {
		got, err := ParseQuantity(tc.in)
		if tc.wantErr {
			var ve *apperr.ValidationError
			assert.ErrorAs(t, err, &ve, "input %v", tc.in)
			continue
		}
		require.NoError(t, err, "input %v", tc.in)
		assert.Equal(t, tc.want, got, "input %v", tc.in)
	}
}

func TestUpsertTwiceKeepsOneLineWithLatestQuantity(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setup(t, 10)

	_, err := svc.Upsert(ctx, 7, p.ID, float64(2))
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, 7, p.ID, float64(5))
	require.NoError(t, err)

	items, err := svc.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	n, err := svc.Count(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestUpsertDefaultsQuantityToOne(t *testing.T) {
	svc, _, p := setup(t, 10)
	line, err := svc.Upsert(context.Background(), 7, p.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
}

func TestUpsertRejectsQuantityAboveStock(t *testing.T) {
	svc, _, p := setup(t, 2)
	_, err := svc.Upsert(context.Background(), 7, p.ID, float64(3))
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
}

func TestUpsertUnknownProduct(t *testing.T) {
	svc, _, _ := setup(t, 2)
	_, err := svc.Upsert(context.Background(), 7, 999, float64(1))
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Entity)

	_, err = svc.Upsert(context.Background(), 7, 0, float64(1))
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

// missingUserStore fails cart writes the way a foreign key on user_id does.
type missingUserStore struct {
	*store.Memory
}

func (missingUserStore) UpsertCartLine(context.Context, int64, int64, int) (model.CartLine, error) {
	return model.CartLine{}, fmt.Errorf("%w: cart_lines_user_id_fkey", store.ErrUserNotFound)
}

func TestUpsertUnknownUserIsNotReportedAsProduct(t *testing.T) {
	_, mem, p := setup(t, 5)
	svc := NewService(missingUserStore{mem})
	_, err := svc.Upsert(context.Background(), 42, p.ID, float64(1))
	var nf *apperr.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Entity)
	assert.EqualValues(t, 42, nf.ID)
}

func TestRemoveChecksOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setup(t, 5)
	line, err := svc.Upsert(ctx, 9, p.ID, float64(1))
	require.NoError(t, err)

	err = svc.Remove(ctx, 7, line.ID)
	var fe *apperr.AuthorizationError
	require.ErrorAs(t, err, &fe)

	items, err := svc.List(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, items, 1, "foreign line must survive")

	require.NoError(t, svc.Remove(ctx, 9, line.ID))
	items, err = svc.List(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, items)

	var nf *apperr.NotFoundError
	assert.ErrorAs(t, svc.Remove(ctx, 9, line.ID), &nf)
}

func TestClearOnlyTouchesOwnCart(t *testing.T) {
	ctx := context.Background()
	svc, _, p := setup(t, 5)
	_, err := svc.Upsert(ctx, 7, p.ID, float64(1))
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, 9, p.ID, float64(2))
	require.NoError(t, err)

	n, err := svc.Clear(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := svc.Count(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, left)
}
