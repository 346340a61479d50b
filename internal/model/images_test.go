package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseImages(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, []string{}},
		{"native strings", []string{"/img/a.png", " ", "/img/b.png"}, []string{"/img/a.png", "/img/b.png"}},
		{"native any", []any{"/img/a.png"}, []string{"/img/a.png"}},
		{"native any with number", []any{"/img/a.png", 3.0}, []string{}},
		{"encoded string", `["/img/a.png","/img/b.png"]`, []string{"/img/a.png", "/img/b.png"}},
		{"encoded bytes", []byte(`["/img/a.png"]`), []string{"/img/a.png"}},
		{"raw message list", json.RawMessage(`["/img/a.png"]`), []string{"/img/a.png"}},
		{"raw message double encoded", json.RawMessage(`"[\"/img/a.png\"]"`), []string{"/img/a.png"}},
		{"malformed", `["/img/a.png"`, []string{}},
		{"object", `{"src":"/img/a.png"}`, []string{}},
		{"plain path", "/img/a.png", []string{}},
		{"empty string", "", []string{}},
		{"unsupported type", 42, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseImages(tc.in)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFirstImage(t *testing.T) {
	assert.Equal(t, "", FirstImage(nil))
	assert.Equal(t, "/img/a.png", FirstImage([]string{"/img/a.png", "/img/b.png"}))
}

func TestProductPriceMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Product{ID: 1, Name: "Lamp", Images: []string{}})
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"price":0`)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleCustomer.Valid())
	assert.False(t, Role("Admin").Valid())
}
