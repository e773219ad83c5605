package validator_test

import (
	"testing"

	"crm-app/src/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateID(t *testing.T) {
	t.Run("正の整数を受け付ける", func(t *testing.T) {
		id, err := validator.ValidateID("42")
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("数値以外・ゼロ以下は拒否する", func(t *testing.T) {
		for _, value := range []string{"abc", "0", "-1", "1.5", ""} {
			_, err := validator.ValidateID(value)
			assert.Error(t, err, "value=%q", value)
		}
	})
}

func TestSanitizeInput(t *testing.T) {
	cv := validator.NewCustomValidator()

	assert.Equal(t, "Taro Yamada", cv.SanitizeInput("  Taro   Yamada  "))
	assert.Equal(t, "a b c", cv.SanitizeInput("a\tb\n c"))
	assert.Equal(t, "", cv.SanitizeInput("   "))
}

func TestCustomRules(t *testing.T) {
	cv := validator.NewCustomValidator()

	type form struct {
		Name  string `validate:"safe_name"`
		Query string `validate:"no_sql_injection"`
	}

	t.Run("通常の入力を受け付ける", func(t *testing.T) {
		assert.NoError(t, cv.Validate(form{Name: "O'Brien-Smith", Query: "acme"}))
	})

	t.Run("SQLインジェクション風の入力を拒否する", func(t *testing.T) {
		err := cv.Validate(form{Name: "x", Query: "1; DROP TABLE contacts"})
		require.Error(t, err)

		var ve validator.ValidationErrors
		require.ErrorAs(t, err, &ve)
		require.Len(t, ve.Errors, 1)
		assert.Equal(t, "no_sql_injection", ve.Errors[0].Tag)
	})

	t.Run("記号始まりの名前を拒否する", func(t *testing.T) {
		err := cv.Validate(form{Name: "-bad", Query: "ok"})
		require.Error(t, err)
	})
}
