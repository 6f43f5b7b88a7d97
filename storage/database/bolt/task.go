package boltrepos

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/task"
)

type taskRepository struct {
	db *bbolt.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *bbolt.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	t.SharedWith = core.StringSet(t.SharedWith...)
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, tasksBucket, t.ID, t)
	})
	if err != nil {
		return task.Task{}, errors.Wrap(err, "storing task")
	}
	return t, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id string) (task.Task, error) {
	var t task.Task
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		t, err = getDoc[task.Task](tx, tasksBucket, id, task.ErrNotFound)
		return err
	})
	t.SharedWith = core.StringSet(t.SharedWith...)
	return t, err
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter) ([]task.Task, error) {
	var tasks []task.Task
	err := repo.db.View(func(tx *bbolt.Tx) error {
		var err error
		tasks, err = allDocs(tx, tasksBucket, filter.Matches)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	for i := range tasks {
		tasks[i].SharedWith = core.StringSet(tasks[i].SharedWith...)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if task.Less(tasks[i], tasks[j]) != task.Less(tasks[j], tasks[i]) {
			return task.Less(tasks[i], tasks[j])
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// modify applies `fn` to the stored task inside a single write transaction.
func (repo *taskRepository) modify(id string, fn func(t *task.Task)) (task.Task, error) {
	var t task.Task
	err := repo.db.Update(func(tx *bbolt.Tx) error {
		var err error
		t, err = getDoc[task.Task](tx, tasksBucket, id, task.ErrNotFound)
		if err != nil {
			return err
		}
		fn(&t)
		t.SharedWith = core.StringSet(t.SharedWith...)
		return putDoc(tx, tasksBucket, id, t)
	})
	return t, err
}

func (repo *taskRepository) UpdateTask(_ context.Context, id string, ut task.UpdateTask) (task.Task, error) {
	return repo.modify(id, ut.Apply)
}

func (repo *taskRepository) DeleteTask(_ context.Context, id string) error {
	return repo.db.Update(func(tx *bbolt.Tx) error {
		return deleteDoc(tx, tasksBucket, id, task.ErrNotFound)
	})
}

func (repo *taskRepository) AddTaskShares(_ context.Context, id string, studentIDs ...string) (task.Task, error) {
	return repo.modify(id, func(t *task.Task) {
		t.SharedWith = append(t.SharedWith, studentIDs...)
	})
}

func (repo *taskRepository) RemoveTaskShare(_ context.Context, id string, studentID string) (task.Task, error) {
	return repo.modify(id, func(t *task.Task) {
		shared := make([]string, 0, len(t.SharedWith))
		for _, sid := range t.SharedWith {
			if sid != studentID {
				shared = append(shared, sid)
			}
		}
		t.SharedWith = shared
	})
}
