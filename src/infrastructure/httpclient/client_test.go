package httpclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-app/src/config"
	"crm-app/src/domain"
	"crm-app/src/infrastructure/httpclient"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *httpclient.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	return httpclient.NewClient(&config.ServiceConfig{
		URL:     server.URL,
		Timeout: 5 * time.Second,
	}, nil, logger)
}

func TestContactClient(t *testing.T) {
	ctx := context.Background()

	t.Run("作成は201ボディをデコードする", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/contacts", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Taro", body["first_name"])

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": 1, "first_name": "Taro", "last_name": "Yamada",
			})
		}))

		contacts := httpclient.NewContactClient(client)
		contact, err := contacts.AddContact(ctx, "Taro", "Yamada")

		require.NoError(t, err)
		assert.Equal(t, 1, contact.ID)
		assert.Equal(t, "Taro Yamada", contact.FullName())
	})

	t.Run("重複のdetailを型付きエラーに復元する", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Contact 'Taro Yamada' already exists (ID: 7)",
			})
		}))

		contacts := httpclient.NewContactClient(client)
		_, err := contacts.AddContact(ctx, "Taro", "Yamada")

		require.Error(t, err)
		var dup *domain.DuplicateEntityError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "Contact", dup.Kind)
		assert.Equal(t, 7, dup.ExistingID)
	})

	t.Run("ノート付きコンタクト照会を1往復で取得する", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/contacts/42", r.URL.Path)
			assert.Equal(t, "3", r.URL.Query().Get("note_limit"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"contact": map[string]interface{}{
					"id": 42, "first_name": "Taro", "last_name": "Yamada",
				},
				"notes": []map[string]interface{}{
					{"id": 1, "title": "first call", "content": "intro"},
					{"id": 2, "title": "follow up", "content": "pricing"},
				},
			})
		}))

		contacts := httpclient.NewContactClient(client)
		contact, notes, err := contacts.GetContactWithNotes(ctx, 42, 3)

		require.NoError(t, err)
		assert.Equal(t, "Taro Yamada", contact.FullName())
		require.Len(t, notes, 2)
		assert.Equal(t, "first call", notes[0].Title)
		assert.Equal(t, "follow up", notes[1].Title)
	})

	t.Run("構造化できない404のdetailも不在エラーになる", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Route not found",
			})
		}))

		contacts := httpclient.NewContactClient(client)
		_, _, err := contacts.GetContactWithNotes(ctx, 1, 10)

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.EqualError(t, err, "Route not found")
	})
}

func TestTaskClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("参照欠落のdetailからIDを復元する", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Contact IDs not found: 2, 3",
			})
		}))

		tasks := httpclient.NewTaskClient(client)
		_, err := tasks.TagTask(ctx, 1, domain.TagInstruction{AddContactIDs: []int{2, 3}})

		require.Error(t, err)
		var refErr *domain.ReferenceNotFoundError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "Contact", refErr.Kind)
		assert.Equal(t, []int{2, 3}, refErr.MissingIDs)
	})

	t.Run("タスク不在のdetailはNotFoundになる", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Task with ID 99 not found",
			})
		}))

		tasks := httpclient.NewTaskClient(client)
		_, err := tasks.GetTask(ctx, 99)

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.Equal(t, "Task with ID 99 not found", err.Error())
	})

	t.Run("完了済みのdetailは状態エラーになる", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"detail": "Task 'done' is already completed",
			})
		}))

		tasks := httpclient.NewTaskClient(client)
		_, err := tasks.CompleteTask(ctx, 1)

		require.Error(t, err)
		var stateErr *domain.TaskStateError
		require.ErrorAs(t, err, &stateErr)
		assert.True(t, stateErr.Completed)
	})

	t.Run("5xxはBackendUnavailable", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		tasks := httpclient.NewTaskClient(client)
		_, err := tasks.GetTask(ctx, 1)

		require.Error(t, err)
		var unavail *domain.BackendUnavailableError
		require.ErrorAs(t, err, &unavail)
		assert.Contains(t, err.Error(), "Request failed:")
	})

	t.Run("接続不能もBackendUnavailable", func(t *testing.T) {
		logger := logrus.New()
		logger.SetLevel(logrus.FatalLevel)

		// 到達できないアドレス
		client := httpclient.NewClient(&config.ServiceConfig{
			URL:     "http://127.0.0.1:1",
			Timeout: time.Second,
		}, nil, logger)

		tasks := httpclient.NewTaskClient(client)
		_, err := tasks.GetTask(ctx, 1)

		require.Error(t, err)
		var unavail *domain.BackendUnavailableError
		assert.ErrorAs(t, err, &unavail)
	})
}

func TestUrgentTasksQuery(t *testing.T) {
	ctx := context.Background()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/urgent", r.URL.Path)
		assert.Equal(t, "14", r.URL.Query().Get("days"))
		assert.Equal(t, "importance", r.URL.Query().Get("sort_by"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]interface{}{})
	}))

	tasks := httpclient.NewTaskClient(client)
	result, err := tasks.UrgentTasks(ctx, 14, domain.TaskSortImportance)

	require.NoError(t, err)
	assert.Empty(t, result)
}

type staticTokens struct{ token string }

func (s staticTokens) Token() (string, error) { return s.token, nil }

func TestPeerTokenHeader(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]interface{}{})
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	client := httpclient.NewClient(&config.ServiceConfig{
		URL:     server.URL,
		Timeout: 5 * time.Second,
	}, staticTokens{token: "test-token"}, logger)

	contacts := httpclient.NewContactClient(client)
	_, err := contacts.ListContacts(ctx)
	require.NoError(t, err)
}
