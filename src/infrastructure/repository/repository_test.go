package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"crm-app/src/config"
	"crm-app/src/database"
	"crm-app/src/domain"
	"crm-app/src/infrastructure/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDB テスト用のsqliteデータベースを用意する
func setupDB(t *testing.T) *database.DB {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg := &config.DatabaseConfig{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := database.NewDB(cfg, logger)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := repository.NewContactRepository(db, testLogger())

	t.Run("作成と名前検索", func(t *testing.T) {
		created, err := repo.Create(ctx, "Taro", "Yamada")
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Taro Yamada", created.FullName())

		found, err := repo.FindByName(ctx, "Taro", "Yamada")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("存在しない名前はnilを返す", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "No", "Body")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("部分一致検索", func(t *testing.T) {
		_, err := repo.Create(ctx, "Hanako", "Sato")
		require.NoError(t, err)

		results, err := repo.Search(ctx, "hana")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Hanako", results[0].FirstName)
	})
}

func TestContactRepositoryTopByNoteCount(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	contacts := repository.NewContactRepository(db, testLogger())
	notes := repository.NewNoteRepository(db, testLogger())

	busy, err := contacts.Create(ctx, "Busy", "Person")
	require.NoError(t, err)
	quiet, err := contacts.Create(ctx, "Quiet", "Person")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := notes.Create(ctx, "meeting", "notes", []int{busy.ID}, nil, nil)
		require.NoError(t, err)
	}
	_, err = notes.Create(ctx, "call", "notes", []int{quiet.ID}, nil, nil)
	require.NoError(t, err)

	top, err := contacts.TopByNoteCount(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// ノート数の降順
	assert.Equal(t, busy.ID, top[0].ID)
	assert.Equal(t, 3, top[0].NoteCount)
	assert.Equal(t, quiet.ID, top[1].ID)
	assert.Equal(t, 1, top[1].NoteCount)

	t.Run("limitで件数を制限する", func(t *testing.T) {
		top, err := contacts.TopByNoteCount(ctx, 1)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, busy.ID, top[0].ID)
	})

	t.Run("ノートと直近のノートを同時に取得する", func(t *testing.T) {
		contact, recent, err := contacts.GetWithNotes(ctx, busy.ID, 2)
		require.NoError(t, err)
		require.NotNil(t, contact)
		assert.Len(t, recent, 2)
	})

	t.Run("存在しないIDはnilを返す", func(t *testing.T) {
		contact, _, err := contacts.GetWithNotes(ctx, 9999, 10)
		require.NoError(t, err)
		assert.Nil(t, contact)
	})
}

func TestNoteRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	contacts := repository.NewContactRepository(db, testLogger())
	notes := repository.NewNoteRepository(db, testLogger())

	contact, err := contacts.Create(ctx, "Jiro", "Tanaka")
	require.NoError(t, err)

	t.Run("参照付きで作成できる", func(t *testing.T) {
		note, err := notes.Create(ctx, "intro", "first meeting", []int{contact.ID}, nil, nil)
		require.NoError(t, err)
		require.Len(t, note.Contacts, 1)
		assert.Equal(t, contact.ID, note.Contacts[0].ID)
		assert.Empty(t, note.Organizations)
		assert.Empty(t, note.Tasks)
	})

	t.Run("存在しない参照IDは作成自体を拒否する", func(t *testing.T) {
		_, err := notes.Create(ctx, "bad", "refs", []int{contact.ID, 888, 999}, nil, nil)
		require.Error(t, err)

		var refErr *domain.ReferenceNotFoundError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "Contact", refErr.Kind)
		assert.Equal(t, "Contact IDs not found: 888, 999", refErr.Error())

		// 部分的な永続化が起きていないこと
		all, err := notes.List(ctx, domain.NoteFilter{Limit: 50})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("作成日時の降順で一覧する", func(t *testing.T) {
		listed, err := notes.List(ctx, domain.NoteFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "intro", listed[0].Title)
	})

	t.Run("存在しないコンタクトでの絞り込みはエラー", func(t *testing.T) {
		missing := 4242
		_, err := notes.List(ctx, domain.NoteFilter{Limit: 10, ContactID: &missing})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestNoteRepositoryReconcile(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	contacts := repository.NewContactRepository(db, testLogger())
	organizations := repository.NewOrganizationRepository(db, testLogger())
	tasks := repository.NewTaskRepository(db, testLogger())
	notes := repository.NewNoteRepository(db, testLogger())

	alice, err := contacts.Create(ctx, "Alice", "Aoki")
	require.NoError(t, err)
	bob, err := contacts.Create(ctx, "Bob", "Baba")
	require.NoError(t, err)
	acme, err := organizations.Create(ctx, "Acme")
	require.NoError(t, err)
	task, err := tasks.Create(ctx, "follow up", nil, time.Now().UTC().Add(24*time.Hour), 5, nil, nil)
	require.NoError(t, err)

	note, err := notes.Create(ctx, "kickoff", "project start", []int{alice.ID}, nil, nil)
	require.NoError(t, err)

	t.Run("追加と削除の差分を返す", func(t *testing.T) {
		diff, err := notes.Reconcile(ctx, note.ID, domain.TagInstruction{
			AddContactIDs:      []int{bob.ID},
			RemoveContactIDs:   []int{alice.ID},
			AddOrganizationIDs: []int{acme.ID},
			AddTaskIDs:         []int{task.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob Baba"}, diff.AddedContacts)
		assert.Equal(t, []string{"Alice Aoki"}, diff.RemovedContacts)
		assert.Equal(t, []string{"Acme"}, diff.AddedOrganizations)
		assert.Equal(t, []string{"follow up"}, diff.AddedTasks)
		assert.Empty(t, diff.RemovedOrganizations)
		assert.Empty(t, diff.RemovedTasks)
	})

	t.Run("同じ指示の再適用は空の差分になる", func(t *testing.T) {
		diff, err := notes.Reconcile(ctx, note.ID, domain.TagInstruction{
			AddContactIDs:      []int{bob.ID},
			AddOrganizationIDs: []int{acme.ID},
			AddTaskIDs:         []int{task.ID},
		})
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("関連していないIDの削除は無視される", func(t *testing.T) {
		diff, err := notes.Reconcile(ctx, note.ID, domain.TagInstruction{
			RemoveContactIDs: []int{alice.ID},
		})
		require.NoError(t, err)
		assert.True(t, diff.Empty())
	})

	t.Run("一部の種別に未解決IDがあれば全種別に変更を加えない", func(t *testing.T) {
		before, err := notes.GetByID(ctx, note.ID)
		require.NoError(t, err)

		_, err = notes.Reconcile(ctx, note.ID, domain.TagInstruction{
			AddContactIDs: []int{alice.ID},
			AddTaskIDs:    []int{12345},
		})
		require.Error(t, err)

		var refErr *domain.ReferenceNotFoundError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "Task", refErr.Kind)

		after, err := notes.GetByID(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, len(before.Contacts), len(after.Contacts))
		assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
	})

	t.Run("存在しないノートはNotFound", func(t *testing.T) {
		_, err := notes.Reconcile(ctx, 9999, domain.TagInstruction{AddContactIDs: []int{alice.ID}})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	tasks := repository.NewTaskRepository(db, testLogger())

	now := time.Now().UTC()

	soon, err := tasks.Create(ctx, "due soon", nil, now.Add(24*time.Hour), 3, nil, nil)
	require.NoError(t, err)
	later, err := tasks.Create(ctx, "due later", nil, now.Add(5*24*time.Hour), 9, nil, nil)
	require.NoError(t, err)
	_, err = tasks.Create(ctx, "far future", nil, now.Add(30*24*time.Hour), 10, nil, nil)
	require.NoError(t, err)

	t.Run("期限内のタスクを期限順で返す", func(t *testing.T) {
		urgent, err := tasks.Urgent(ctx, 7, domain.TaskSortUrgency)
		require.NoError(t, err)
		require.Len(t, urgent, 2)
		assert.Equal(t, soon.ID, urgent[0].ID)
		assert.Equal(t, later.ID, urgent[1].ID)
	})

	t.Run("重要度ソートは降順で期限がタイブレーク", func(t *testing.T) {
		urgent, err := tasks.Urgent(ctx, 7, domain.TaskSortImportance)
		require.NoError(t, err)
		require.Len(t, urgent, 2)
		assert.Equal(t, later.ID, urgent[0].ID)
		assert.Equal(t, soon.ID, urgent[1].ID)
	})

	t.Run("完了タスクは既定で一覧から除外する", func(t *testing.T) {
		completed, err := tasks.SetCompleted(ctx, soon.ID, true)
		require.NoError(t, err)
		assert.True(t, completed.Completed)

		listed, err := tasks.List(ctx, domain.TaskFilter{Limit: 10})
		require.NoError(t, err)
		for _, task := range listed {
			assert.NotEqual(t, soon.ID, task.ID)
		}

		all, err := tasks.List(ctx, domain.TaskFilter{Limit: 10, ShowCompleted: true})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		// 完了タスクはurgentにも現れない
		urgent, err := tasks.Urgent(ctx, 7, domain.TaskSortUrgency)
		require.NoError(t, err)
		require.Len(t, urgent, 1)
		assert.Equal(t, later.ID, urgent[0].ID)
	})

	t.Run("存在しないIDの完了状態変更はNotFound", func(t *testing.T) {
		_, err := tasks.SetCompleted(ctx, 9999, true)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestTaskRepositoryReconcile(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	contacts := repository.NewContactRepository(db, testLogger())
	tasks := repository.NewTaskRepository(db, testLogger())

	carol, err := contacts.Create(ctx, "Carol", "Chiba")
	require.NoError(t, err)
	task, err := tasks.Create(ctx, "review", nil, time.Now().UTC().Add(48*time.Hour), 4, nil, nil)
	require.NoError(t, err)

	diff, err := tasks.Reconcile(ctx, task.ID, domain.TagInstruction{AddContactIDs: []int{carol.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol Chiba"}, diff.AddedContacts)

	reloaded, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Contacts, 1)
	assert.True(t, reloaded.UpdatedAt.After(task.UpdatedAt) || reloaded.UpdatedAt.Equal(task.UpdatedAt))

	t.Run("存在しないタスクはNotFound", func(t *testing.T) {
		_, err := tasks.Reconcile(ctx, 9999, domain.TagInstruction{AddContactIDs: []int{carol.ID}})
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
		assert.Equal(t, "Task with ID 9999 not found", err.Error())
	})
}

func TestOrganizationRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	organizations := repository.NewOrganizationRepository(db, testLogger())
	notes := repository.NewNoteRepository(db, testLogger())

	acme, err := organizations.Create(ctx, "Acme")
	require.NoError(t, err)
	globex, err := organizations.Create(ctx, "Globex")
	require.NoError(t, err)

	found, err := organizations.FindByName(ctx, "Acme")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, acme.ID, found.ID)

	_, err = notes.Create(ctx, "contract", "renewal", nil, []int{globex.ID}, nil)
	require.NoError(t, err)

	top, err := organizations.TopByNoteCount(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, globex.ID, top[0].ID)
	assert.Equal(t, 1, top[0].NoteCount)
}
