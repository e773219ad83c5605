package usecase_test

import (
	"context"
	"testing"
	"time"

	"crm-app/src/domain"
	"crm-app/src/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContactRepository は ContactRepository のモック実装
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	args := m.Called(ctx, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByName(ctx context.Context, firstName, lastName string) (*domain.Contact, error) {
	args := m.Called(ctx, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactRepository) Search(ctx context.Context, query string) ([]domain.Contact, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactRepository) TopByNoteCount(ctx context.Context, limit int) ([]domain.ContactWithCount, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ContactWithCount), args.Error(1)
}

func (m *MockContactRepository) GetWithNotes(ctx context.Context, id, noteLimit int) (*domain.Contact, []domain.Note, error) {
	args := m.Called(ctx, id, noteLimit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Contact), args.Get(1).([]domain.Note), args.Error(2)
}

// MockTaskRepository は TaskRepository のモック実装
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, title string, description *string, dueDate time.Time, importance int, contactIDs, organizationIDs []int) (*domain.Task, error) {
	args := m.Called(ctx, title, description, dueDate, importance, contactIDs, organizationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Urgent(ctx context.Context, days int, sort domain.TaskSort) ([]domain.Task, error) {
	args := m.Called(ctx, days, sort)
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) SetCompleted(ctx context.Context, id int, completed bool) (*domain.Task, error) {
	args := m.Called(ctx, id, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Reconcile(ctx context.Context, id int, instr domain.TagInstruction) (*domain.TagDiff, error) {
	args := m.Called(ctx, id, instr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TagDiff), args.Error(1)
}

func TestAddContact(t *testing.T) {
	ctx := context.Background()

	t.Run("新規作成", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("FindByName", ctx, "Taro", "Yamada").Return(nil, nil)
		repo.On("Create", ctx, "Taro", "Yamada").Return(&domain.Contact{ID: 1, FirstName: "Taro", LastName: "Yamada"}, nil)

		u := usecase.NewContactUsecase(repo)
		contact, err := u.AddContact(ctx, "Taro", "Yamada")

		require.NoError(t, err)
		assert.Equal(t, 1, contact.ID)
		repo.AssertExpectations(t)
	})

	t.Run("重複は既存IDを添えて拒否する", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("FindByName", ctx, "Taro", "Yamada").Return(&domain.Contact{ID: 7, FirstName: "Taro", LastName: "Yamada"}, nil)

		u := usecase.NewContactUsecase(repo)
		_, err := u.AddContact(ctx, "Taro", "Yamada")

		require.Error(t, err)
		assert.True(t, domain.IsDuplicate(err))
		assert.Equal(t, "Contact 'Taro Yamada' already exists (ID: 7)", err.Error())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBulkAddContacts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContactRepository)

	// "Alice Aoki" は新規、"Bob" は姓なしの新規、"Carol Chiba" は既存
	repo.On("FindByName", ctx, "Alice", "Aoki").Return(nil, nil)
	repo.On("Create", ctx, "Alice", "Aoki").Return(&domain.Contact{ID: 1, FirstName: "Alice", LastName: "Aoki"}, nil)
	repo.On("FindByName", ctx, "Bob", "").Return(nil, nil)
	repo.On("Create", ctx, "Bob", "").Return(&domain.Contact{ID: 2, FirstName: "Bob"}, nil)
	repo.On("FindByName", ctx, "Carol", "Chiba").Return(&domain.Contact{ID: 3, FirstName: "Carol", LastName: "Chiba"}, nil)

	u := usecase.NewContactUsecase(repo)
	result, err := u.BulkAddContacts(ctx, []string{"Alice Aoki", "Bob", "Carol Chiba"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Alice Aoki (ID: 1)", "Bob  (ID: 2)"}, result.Added)
	assert.Equal(t, []string{"Carol Chiba (ID: 3)"}, result.Skipped)
}

func TestTopContactsDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockContactRepository)
	repo.On("TopByNoteCount", ctx, 10).Return([]domain.ContactWithCount{}, nil)

	u := usecase.NewContactUsecase(repo)
	_, err := u.TopContacts(ctx, 0)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetContactWithNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("不在はNotFound", func(t *testing.T) {
		repo := new(MockContactRepository)
		repo.On("GetWithNotes", ctx, 42, 10).Return(nil, nil, nil)

		u := usecase.NewContactUsecase(repo)
		_, _, err := u.GetContactWithNotes(ctx, 42, 0)

		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	due := time.Now().UTC().Add(24 * time.Hour)

	t.Run("重要度の範囲外は永続化せず拒否する", func(t *testing.T) {
		repo := new(MockTaskRepository)
		u := usecase.NewTaskUsecase(repo)

		for _, importance := range []int{-1, 11} {
			_, err := u.CreateTask(ctx, usecase.CreateTaskRequest{Title: "t", DueDate: due, Importance: importance})
			require.Error(t, err)
			assert.Equal(t, "Importance must be between 0 and 10", err.Error())
		}
		repo.AssertNotCalled(t, "Create",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("タイトル必須", func(t *testing.T) {
		repo := new(MockTaskRepository)
		u := usecase.NewTaskUsecase(repo)

		_, err := u.CreateTask(ctx, usecase.CreateTaskRequest{DueDate: due, Importance: 5})
		require.Error(t, err)
		assert.Equal(t, "Title is required", err.Error())
	})

	t.Run("境界値は受け付ける", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Create", ctx, "t", (*string)(nil), due, 10, []int(nil), []int(nil)).
			Return(&domain.Task{ID: 1, Title: "t"}, nil)

		u := usecase.NewTaskUsecase(repo)
		_, err := u.CreateTask(ctx, usecase.CreateTaskRequest{Title: "t", DueDate: due, Importance: 10})
		require.NoError(t, err)
	})
}

func TestUrgentTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("既定値は7日・期限順", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("Urgent", ctx, 7, domain.TaskSortUrgency).Return([]domain.Task{}, nil)

		u := usecase.NewTaskUsecase(repo)
		_, err := u.UrgentTasks(ctx, 0, "")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("不正なソートキーは拒否する", func(t *testing.T) {
		repo := new(MockTaskRepository)
		u := usecase.NewTaskUsecase(repo)

		_, err := u.UrgentTasks(ctx, 7, "deadline")
		require.Error(t, err)
		assert.Equal(t, "sort_by must be 'urgency' or 'importance'", err.Error())
	})
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("完了済みタスクの再完了は状態エラー", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", ctx, 1).Return(&domain.Task{ID: 1, Title: "done", Completed: true}, nil)

		u := usecase.NewTaskUsecase(repo)
		_, err := u.CompleteTask(ctx, 1)

		require.Error(t, err)
		assert.Equal(t, "Task 'done' is already completed", err.Error())
		repo.AssertNotCalled(t, "SetCompleted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("未完了タスクの未完了化は状態エラー", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", ctx, 2).Return(&domain.Task{ID: 2, Title: "open", Completed: false}, nil)

		u := usecase.NewTaskUsecase(repo)
		_, err := u.UncompleteTask(ctx, 2)

		require.Error(t, err)
		assert.Equal(t, "Task 'open' is already incomplete", err.Error())
	})

	t.Run("不在はNotFound", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", ctx, 99).Return(nil, nil)

		u := usecase.NewTaskUsecase(repo)
		_, err := u.CompleteTask(ctx, 99)

		require.Error(t, err)
		assert.Equal(t, "Task with ID 99 not found", err.Error())
	})

	t.Run("正常な完了遷移", func(t *testing.T) {
		repo := new(MockTaskRepository)
		repo.On("GetByID", ctx, 3).Return(&domain.Task{ID: 3, Title: "work", Completed: false}, nil)
		repo.On("SetCompleted", ctx, 3, true).Return(&domain.Task{ID: 3, Title: "work", Completed: true}, nil)

		u := usecase.NewTaskUsecase(repo)
		task, err := u.CompleteTask(ctx, 3)

		require.NoError(t, err)
		assert.True(t, task.Completed)
	})
}
