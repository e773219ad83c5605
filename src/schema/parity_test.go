package schema_test

import (
	"reflect"
	"testing"

	"crm-app/src/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("登録済みの全エンティティで整合している", func(t *testing.T) {
		assert.NoError(t, schema.Validate())
	})

	t.Run("全エンティティが登録されている", func(t *testing.T) {
		names := make([]string, 0, len(schema.Pairs))
		for _, pair := range schema.Pairs {
			names = append(names, pair.Name)
		}
		assert.ElementsMatch(t, []string{"Contact", "Organization", "Note", "Task"}, names)
	})
}

func TestValidateDetectsDrift(t *testing.T) {
	original := schema.Pairs
	defer func() { schema.Pairs = original }()

	t.Run("型の欠落を検出する", func(t *testing.T) {
		schema.Pairs = []schema.Pair{{Name: "Contact"}}
		err := schema.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing a type registration")
	})

	t.Run("ワイヤ側だけのフィールドを検出する", func(t *testing.T) {
		type Drifted struct {
			ID int `json:"id"`
		}
		// 保存側にない余剰フィールドを持つワイヤ型
		type DriftedResponse struct {
			ID    int    `json:"id"`
			Ghost string `json:"ghost"`
		}

		schema.Pairs = []schema.Pair{{
			Name:      "Drifted",
			Persisted: reflect.TypeOf(Drifted{}),
			Wire:      reflect.TypeOf(DriftedResponse{}),
		}}

		err := schema.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ghost"`)
	})
}
