package task

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

var (
	// errors
	ErrNotFound   = errors.New("task not found")
	ErrNotStudent = errors.New("must reference an existing student")
)

// BroadcastError reports a broadcast creation that did not succeed for every student.
// Tasks created before the failure are kept.
type BroadcastError struct {
	Created int
	Failed  int
	Err     error // first failure
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast task: %d created, %d failed: %v", e.Created, e.Failed, e.Err)
}

type (
	Repository interface {
		// CreateTask assigns the ID.
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		// QueryTasks returns tasks ordered by DueDate then CreatedAt, without duplicates.
		QueryTasks(ctx context.Context, filter *QueryFilter) ([]Task, error)
		UpdateTask(ctx context.Context, id string, ut UpdateTask) (Task, error)
		DeleteTask(ctx context.Context, id string) error
		// AddTaskShares adds the student ids missing from the task's share list.
		AddTaskShares(ctx context.Context, id string, studentIDs ...string) (Task, error)
		// RemoveTaskShare removes one id from the share list. Absent ids are a no-op.
		RemoveTaskShare(ctx context.Context, id string, studentID string) (Task, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		usrSvc  *user.Service
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	if logger == nil {
		logger = core.NopLogger
	}
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo),
		mailSvc: mailSvc,
		logger:  logger,
	}
}

// Create creates the task(s) described by `nt` on behalf of `actor`. `nt` must be validated.
// Students always create tasks for themselves. Teachers and admins target one student or,
// with BroadcastStudentID, every current student.
func (svc *Service) Create(ctx context.Context, actor user.Actor, nt NewTask) ([]Task, error) {
	t := Task{
		Title:         nt.Title,
		Description:   nt.Description,
		DueDate:       nt.DueDate,
		CreatedByID:   actor.ID,
		CreatedByRole: actor.Role,
		Priority:      core.PriorityOrDefault(nt.Priority),
		SharedWith:    []string{},
	}

	if !actor.IsStaff() {
		t.StudentID = actor.ID
		created, err := svc.create(ctx, t)
		if err != nil {
			return nil, err
		}
		return []Task{created}, nil
	}

	if nt.StudentID == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "this field is required"})
	}
	if nt.IsBroadcast() {
		return svc.broadcast(ctx, t)
	}

	student, err := svc.student(ctx, nt.StudentID)
	if err != nil {
		if errors.Cause(err) == ErrNotStudent {
			return nil, core.NewValidationError(err, core.FieldError{Field: "studentId", Error: err.Error()})
		}
		return nil, err
	}
	t.StudentID = student.ID
	created, err := svc.create(ctx, t)
	if err != nil {
		return nil, err
	}
	svc.notify(created, student)
	return []Task{created}, nil
}

func (svc *Service) create(ctx context.Context, t Task) (Task, error) {
	t.CreatedAt = time.Now().UTC()
	created, err := svc.repo.CreateTask(ctx, t)
	return created, errors.Wrap(err, "creating task")
}

// broadcast creates one independent copy of `t` per current student. It is not atomic.
func (svc *Service) broadcast(ctx context.Context, t Task) ([]Task, error) {
	students, err := svc.usrSvc.Students(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	tasks := make([]Task, 0, len(students))
	var bErr *BroadcastError
	for _, student := range students {
		cp := t
		cp.StudentID = student.ID
		cp.SharedWith = []string{}
		created, err := svc.create(ctx, cp)
		if err != nil {
			if bErr == nil {
				bErr = &BroadcastError{Err: err}
			}
			bErr.Failed++
			continue
		}
		tasks = append(tasks, created)
		svc.notify(created, student)
	}
	if bErr != nil {
		bErr.Created = len(tasks)
		svc.logger.Error("broadcast task: partial failure", bErr.Err, map[string]interface{}{
			"title":   t.Title,
			"created": bErr.Created,
			"failed":  bErr.Failed,
		})
		return tasks, bErr
	}
	return tasks, nil
}

// student returns the student identified by `id` or ErrNotStudent.
func (svc *Service) student(ctx context.Context, id string) (user.User, error) {
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: id})
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, ErrNotStudent
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsStudent() {
		return user.User{}, ErrNotStudent
	}
	return usr, nil
}

// notify emails `student` about a task assigned by staff.
func (svc *Service) notify(t Task, student user.User) {
	fields := map[string]interface{}{"task": t.ID, "student": student.ID}
	if svc.mailSvc == nil {
		svc.logger.Debug("task notification skipped: no mailer", fields)
		return
	}
	svc.logger.Info("task notification: "+student.Email, fields)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.Name, Address: student.Email}},
		Subject: "New task: " + t.Title,
		BodyStr: fmt.Sprintf("Hello %s,\n\nA new task was assigned to you: %s\nDue: %s\nPriority: %s\n\n%s",
			student.Name, t.Title, t.DueDate, t.Priority, t.Description),
	})
}

// List returns the tasks visible to `actor`.
func (svc *Service) List(ctx context.Context, actor user.Actor) ([]Task, error) {
	tasks, err := svc.repo.QueryTasks(ctx, ReadFilter(actor))
	return tasks, errors.Wrap(err, "querying tasks")
}

// Get returns the task if `actor` may read it.
func (svc *Service) Get(ctx context.Context, actor user.Actor, id string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !CanRead(actor, t) {
		return Task{}, core.ErrPermissionDenied
	}
	return t, nil
}

// Update modifies the task if `actor` may mutate it. `ut` must be validated.
func (svc *Service) Update(ctx context.Context, actor user.Actor, id string, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !CanMutate(actor, t) {
		return Task{}, core.ErrPermissionDenied
	}
	return svc.repo.UpdateTask(ctx, id, ut)
}

func (svc *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(actor, t) {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteTask(ctx, id)
}

// Share adds `studentIDs` to the task's share list. Every id must be an existing student,
// otherwise nothing is applied.
func (svc *Service) Share(ctx context.Context, actor user.Actor, id string, studentIDs []string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !CanShare(actor, t) {
		return Task{}, core.ErrPermissionDenied
	}

	ids := core.StringSet(studentIDs...)
	var invalid []string
	for _, sid := range ids {
		if _, err := svc.student(ctx, sid); err != nil {
			if errors.Cause(err) != ErrNotStudent {
				return Task{}, err
			}
			invalid = append(invalid, sid)
		}
	}
	if len(invalid) > 0 {
		msg := fmt.Sprintf("%s: %v", ErrNotStudent.Error(), invalid)
		return Task{}, core.NewValidationError(ErrNotStudent, core.FieldError{Field: "studentIds", Error: msg})
	}
	return svc.repo.AddTaskShares(ctx, id, ids...)
}

// Unshare removes `studentID` from the task's share list. Unknown ids are a no-op.
func (svc *Service) Unshare(ctx context.Context, actor user.Actor, id, studentID string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !CanShare(actor, t) {
		return Task{}, core.ErrPermissionDenied
	}
	return svc.repo.RemoveTaskShare(ctx, id, core.CleanString(studentID))
}
