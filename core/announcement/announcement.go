package announcement

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

// DefaultAuthorName is used when the author cannot be resolved.
const DefaultAuthorName = "Administrateur"

var ErrNotFound = errors.New("announcement not found")

type Announcement struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Priority   string    `json:"priority"`
	CreatedAt  time.Time `json:"createdAt"` // UTC
}

type NewAnnouncement struct {
	Title    string `json:"title" validate:"required,notblank"`
	Content  string `json:"content" validate:"required,notblank"`
	Priority string `json:"priority" validate:"omitempty,priority"`
}

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	na.Priority = core.CleanString(na.Priority, true /* lower */)
	return validate.Struct(na)
}

type UpdateAnnouncement struct {
	Title    *string `json:"title" validate:"omitempty,notblank"`
	Content  *string `json:"content" validate:"omitempty,notblank"`
	Priority *string `json:"priority" validate:"omitempty,priority"`
}

func (ua *UpdateAnnouncement) Validate(validate *validator.Validate) error {
	if ua.Title != nil {
		*ua.Title = core.CleanString(*ua.Title)
	}
	if ua.Content != nil {
		*ua.Content = core.CleanString(*ua.Content)
	}
	if ua.Priority != nil {
		*ua.Priority = core.CleanString(*ua.Priority, true /* lower */)
	}
	return validate.Struct(ua)
}

// Apply sets the non-nil fields of `ua` on `a`.
func (ua UpdateAnnouncement) Apply(a *Announcement) {
	if ua.Title != nil {
		a.Title = *ua.Title
	}
	if ua.Content != nil {
		a.Content = *ua.Content
	}
	if ua.Priority != nil {
		a.Priority = *ua.Priority
	}
}

// Less orders announcements newest first.
func Less(a, b Announcement) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

type (
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		GetAnnouncement(ctx context.Context, id string) (Announcement, error)
		// QueryAnnouncements returns every announcement, newest first.
		QueryAnnouncements(ctx context.Context) ([]Announcement, error)
		UpdateAnnouncement(ctx context.Context, id string, ua UpdateAnnouncement) (Announcement, error)
		DeleteAnnouncement(ctx context.Context, id string) error
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, usrRepo: usrRepo}
}

func (svc *Service) List(ctx context.Context) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx)
}

// Create publishes an announcement. Only admins may write announcements.
func (svc *Service) Create(ctx context.Context, actor user.Actor, na NewAnnouncement) (Announcement, error) {
	if !actor.IsAdmin() {
		return Announcement{}, core.ErrPermissionDenied
	}
	authorName := DefaultAuthorName
	if usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{ID: actor.ID}); err == nil && usr.Name != "" {
		authorName = usr.Name
	}
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		Title:      na.Title,
		Content:    na.Content,
		AuthorID:   actor.ID,
		AuthorName: authorName,
		Priority:   core.PriorityOrDefault(na.Priority),
		CreatedAt:  time.Now().UTC(),
	})
}

// Update edits any announcement, whoever authored it. Admin only.
func (svc *Service) Update(ctx context.Context, actor user.Actor, id string, ua UpdateAnnouncement) (Announcement, error) {
	if !actor.IsAdmin() {
		return Announcement{}, core.ErrPermissionDenied
	}
	return svc.repo.UpdateAnnouncement(ctx, id, ua)
}

func (svc *Service) Delete(ctx context.Context, actor user.Actor, id string) error {
	if !actor.IsAdmin() {
		return core.ErrPermissionDenied
	}
	return svc.repo.DeleteAnnouncement(ctx, id)
}
