package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
)

type taskRow struct {
	ID            string    `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	DueDate       string    `db:"due_date"`
	Completed     int       `db:"completed"`
	StudentID     string    `db:"student_id"`
	CreatedByID   string    `db:"created_by_id"`
	CreatedByRole string    `db:"created_by_role"`
	Priority      string    `db:"priority"`
	CreatedAt     time.Time `db:"created_at"`
}

func toTaskRow(t task.Task) taskRow {
	var completed int
	if t.Completed {
		completed = 1
	}
	return taskRow{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       t.DueDate,
		Completed:     completed,
		StudentID:     t.StudentID,
		CreatedByID:   t.CreatedByID,
		CreatedByRole: string(t.CreatedByRole),
		Priority:      t.Priority,
		CreatedAt:     t.CreatedAt.UTC(),
	}
}

func (r taskRow) task(sharedWith []string) task.Task {
	return task.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		DueDate:       r.DueDate,
		Completed:     r.Completed != 0,
		StudentID:     r.StudentID,
		CreatedByID:   r.CreatedByID,
		CreatedByRole: user.Role(r.CreatedByRole),
		Priority:      r.Priority,
		SharedWith:    core.StringSet(sharedWith...),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type shareRow struct {
	TaskID    string `db:"task_id"`
	StudentID string `db:"student_id"`
}

const taskColumns = "id, title, description, due_date, completed, student_id, created_by_id, created_by_role, priority, created_at"

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	t.SharedWith = core.StringSet(t.SharedWith...)
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := `INSERT INTO tasks (` + taskColumns + `)
			VALUES (:id, :title, :description, :due_date, :completed, :student_id, :created_by_id, :created_by_role, :priority, :created_at)`
		if _, err := tx.NamedExecContext(ctx, q, toTaskRow(t)); err != nil {
			return errors.Wrap(err, "inserting task")
		}
		return insertShares(ctx, tx, t.ID, t.SharedWith)
	})
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func insertShares(ctx context.Context, tx *sqlx.Tx, taskID string, studentIDs []string) error {
	q := tx.Rebind("INSERT INTO task_shares (task_id, student_id) VALUES (?, ?) ON CONFLICT DO NOTHING")
	for _, sid := range studentIDs {
		if _, err := tx.ExecContext(ctx, q, taskID, sid); err != nil {
			return errors.Wrap(err, "inserting task share")
		}
	}
	return nil
}

// loadShares returns the share lists of the given tasks, keyed by task id.
func loadShares(ctx context.Context, q sqlx.ExtContext, ids ...string) (map[string][]string, error) {
	shares := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return shares, nil
	}
	query, args, err := sqlx.In("SELECT task_id, student_id FROM task_shares WHERE task_id IN (?)", ids)
	if err != nil {
		return nil, errors.Wrap(err, "building task shares query")
	}
	var rows []shareRow
	if err = sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting task shares")
	}
	for _, r := range rows {
		shares[r.TaskID] = append(shares[r.TaskID], r.StudentID)
	}
	return shares, nil
}

func getTask(ctx context.Context, q sqlx.ExtContext, id string) (task.Task, error) {
	var row taskRow
	if err := sqlx.GetContext(ctx, q, &row, q.Rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id); err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "selecting task")
	}
	shares, err := loadShares(ctx, q, id)
	if err != nil {
		return task.Task{}, err
	}
	return row.task(shares[id]), nil
}

func (repo *taskRepository) GetTask(ctx context.Context, id string) (task.Task, error) {
	return getTask(ctx, repo.db, id)
}

func (repo *taskRepository) QueryTasks(ctx context.Context, filter *task.QueryFilter) ([]task.Task, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.CreatedByID != "" {
			where = append(where, "t.created_by_id = ?")
			args = append(args, filter.CreatedByID)
		}
		if filter.AssignedTo != "" {
			where = append(where, "(t.student_id = ? OR EXISTS (SELECT 1 FROM task_shares s WHERE s.task_id = t.id AND s.student_id = ?))")
			args = append(args, filter.AssignedTo, filter.AssignedTo)
		}
	}
	q := "SELECT " + prefixColumns("t", taskColumns) + " FROM tasks t"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.due_date, t.created_at, t.id"

	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	shares, err := loadShares(ctx, repo.db, ids...)
	if err != nil {
		return nil, err
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task(shares[r.ID]))
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, id string, ut task.UpdateTask) (task.Task, error) {
	var t task.Task
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var set setClause
		if ut.Title != nil {
			set.add("title", *ut.Title)
		}
		if ut.Description != nil {
			set.add("description", *ut.Description)
		}
		if ut.DueDate != nil {
			set.add("due_date", *ut.DueDate)
		}
		if ut.Priority != nil {
			set.add("priority", *ut.Priority)
		}
		if ut.Completed != nil {
			completed := 0
			if *ut.Completed {
				completed = 1
			}
			set.add("completed", completed)
		}
		if !set.empty() {
			found, err := set.update(ctx, tx, "tasks", id)
			if err != nil {
				return errors.Wrap(err, "updating task")
			}
			if !found {
				return task.ErrNotFound
			}
		}

		var err error
		t, err = getTask(ctx, tx, id)
		return err
	})
	return t, err
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "tasks", id, task.ErrNotFound)
}

func (repo *taskRepository) AddTaskShares(ctx context.Context, id string, studentIDs ...string) (task.Task, error) {
	var t task.Task
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := getTask(ctx, tx, id); err != nil {
			return err
		}
		if err := insertShares(ctx, tx, id, core.StringSet(studentIDs...)); err != nil {
			return err
		}
		var err error
		t, err = getTask(ctx, tx, id)
		return err
	})
	return t, err
}

func (repo *taskRepository) RemoveTaskShare(ctx context.Context, id string, studentID string) (task.Task, error) {
	var t task.Task
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := getTask(ctx, tx, id); err != nil {
			return err
		}
		q := tx.Rebind("DELETE FROM task_shares WHERE task_id = ? AND student_id = ?")
		if _, err := tx.ExecContext(ctx, q, id, studentID); err != nil {
			return errors.Wrap(err, "deleting task share")
		}
		var err error
		t, err = getTask(ctx, tx, id)
		return err
	})
	return t, err
}

// prefixColumns qualifies a comma separated column list with a table alias.
func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ", ")
	for i, c := range parts {
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}
