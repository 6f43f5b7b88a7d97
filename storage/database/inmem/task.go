package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db.task}
}

// copyTask detaches the share list from the stored record.
func copyTask(t *task.Task) task.Task {
	cp := *t
	cp.SharedWith = core.StringSet(t.SharedWith...)
	return cp
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = uuid.New().String()
	t.SharedWith = core.StringSet(t.SharedWith...)
	stored := copyTask(&t)
	repo.db.t[t.ID] = &stored
	return t, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.t[id]; ok {
		return copyTask(t), nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.t {
		if filter.Matches(*t) {
			tasks = append(tasks, copyTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if task.Less(tasks[i], tasks[j]) != task.Less(tasks[j], tasks[i]) {
			return task.Less(tasks[i], tasks[j])
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, id string, ut task.UpdateTask) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t, ok := repo.db.t[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	ut.Apply(t)
	return copyTask(t), nil
}

func (repo *taskRepository) DeleteTask(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[id]; !ok {
		return task.ErrNotFound
	}
	delete(repo.db.t, id)
	return nil
}

func (repo *taskRepository) AddTaskShares(_ context.Context, id string, studentIDs ...string) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t, ok := repo.db.t[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	t.SharedWith = core.StringSet(append(t.SharedWith, studentIDs...)...)
	return copyTask(t), nil
}

func (repo *taskRepository) RemoveTaskShare(_ context.Context, id string, studentID string) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t, ok := repo.db.t[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	shared := make([]string, 0, len(t.SharedWith))
	for _, sid := range t.SharedWith {
		if sid != studentID {
			shared = append(shared, sid)
		}
	}
	t.SharedWith = shared
	return copyTask(t), nil
}
