package ledger

import (
	"encoding/json"
	"testing"

	"github.com/bingoo/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrPtr(t *testing.T) {
	t.Run("non-empty string", func(t *testing.T) {
		p := strPtr("paypal")
		require.NotNil(t, p)
		assert.Equal(t, "paypal", *p)
	})

	t.Run("empty string returns nil", func(t *testing.T) {
		assert.Nil(t, strPtr(""))
	})
}

func TestEnsureJSON(t *testing.T) {
	t.Run("nil returns empty object", func(t *testing.T) {
		assert.Equal(t, json.RawMessage(`{}`), ensureJSON(nil))
	})

	t.Run("non-nil passthrough", func(t *testing.T) {
		data := json.RawMessage(`{"key":"value"}`)
		assert.Equal(t, data, ensureJSON(data))
	})
}

func TestMergeMeta(t *testing.T) {
	t.Run("nil base with extras", func(t *testing.T) {
		result := mergeMeta(nil, map[string]interface{}{"cost": 2, "won": true})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, float64(2), m["cost"])
		assert.Equal(t, true, m["won"])
	})

	t.Run("extras overwrite base", func(t *testing.T) {
		base := json.RawMessage(`{"reason":"old","source":"admin"}`)
		result := mergeMeta(base, map[string]interface{}{"reason": "new"})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, "new", m["reason"])
		assert.Equal(t, "admin", m["source"])
	})

	t.Run("invalid base is replaced", func(t *testing.T) {
		result := mergeMeta(json.RawMessage(`not-json`), map[string]interface{}{"k": "v"})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, map[string]interface{}{"k": "v"}, m)
	})
}

func TestCurrencyOf(t *testing.T) {
	assert.Equal(t, "EUR", currencyOf(&domain.User{Region: "EUROPE"}))
	assert.Equal(t, "USD", currencyOf(&domain.User{Region: "LATIN_AMERICA"}))
	assert.Equal(t, "USD", currencyOf(&domain.User{Region: "", Country: "US"}))
}
