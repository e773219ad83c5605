// Package schema は永続型とワイヤ型の構造的な対応を起動時に検証する。
// ワイヤ側にだけフィールドが追加されて保存側と乖離するのを防ぐ
package schema

import (
	"fmt"
	"reflect"
	"strings"

	"crm-app/src/domain"
	"crm-app/src/interface/handler"
)

// Pair couples a persisted entity type with its wire representation.
// 両者は必ず同じ場所（このレジストリ）で一緒に登録する
type Pair struct {
	Name      string
	Persisted reflect.Type
	Wire      reflect.Type
}

// Pairs enumerates every entity exchanged over the network
var Pairs = []Pair{
	{
		Name:      "Contact",
		Persisted: reflect.TypeOf(domain.Contact{}),
		Wire:      reflect.TypeOf(handler.ContactResponse{}),
	},
	{
		Name:      "Organization",
		Persisted: reflect.TypeOf(domain.Organization{}),
		Wire:      reflect.TypeOf(handler.OrganizationResponse{}),
	},
	{
		Name:      "Note",
		Persisted: reflect.TypeOf(domain.Note{}),
		Wire:      reflect.TypeOf(handler.NoteResponse{}),
	},
	{
		Name:      "Task",
		Persisted: reflect.TypeOf(domain.Task{}),
		Wire:      reflect.TypeOf(handler.TaskResponse{}),
	},
}

// Validate checks every wire type against its persisted counterpart.
// 違反はリクエスト時ではなくプロセス初期化の失敗として扱う
func Validate() error {
	for _, pair := range Pairs {
		if pair.Persisted == nil || pair.Wire == nil {
			return fmt.Errorf("schema parity: entity %q is missing a type registration", pair.Name)
		}
		if pair.Persisted.Name() != pair.Name {
			return fmt.Errorf("schema parity: persisted type %q does not match entity name %q",
				pair.Persisted.Name(), pair.Name)
		}
		if !strings.HasPrefix(pair.Wire.Name(), pair.Name) {
			return fmt.Errorf("schema parity: wire type %q is not named after entity %q",
				pair.Wire.Name(), pair.Name)
		}

		persisted := jsonFields(pair.Persisted)
		for _, field := range jsonFields(pair.Wire) {
			if !contains(persisted, field) {
				return fmt.Errorf("schema parity: wire type %q carries field %q with no persisted counterpart on %q",
					pair.Wire.Name(), field, pair.Persisted.Name())
			}
		}
	}
	return nil
}

// jsonFields JSONタグ名の一覧（埋め込みは展開、タグなしはフィールド名）
func jsonFields(t reflect.Type) []string {
	fields := []string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			fields = append(fields, jsonFields(f.Type)...)
			continue
		}
		tag := f.Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, name)
	}
	return fields
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
