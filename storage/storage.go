// Package storage opens the repositories of the configured database engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
	"github.com/Armandk18/taskmanager/storage/database"
	boltrepos "github.com/Armandk18/taskmanager/storage/database/bolt"
	inmemdb "github.com/Armandk18/taskmanager/storage/database/inmem"
	sqlxrepos "github.com/Armandk18/taskmanager/storage/database/sqlx"
)

const (
	EngineMemory = "memory"
	EngineBolt   = "bolt"
)

type Repositories struct {
	Users         user.Repository
	Tasks         task.Repository
	Announcements announcement.Repository
	Events        event.Repository

	// SQL is set for the SQL engines only.
	SQL   *sqlx.DB
	close func() error
}

// Open opens the engine selected by `conf`. SQL databases are migrated to the latest version.
func Open(ctx context.Context, conf core.DatabaseConfig) (*Repositories, error) {
	switch conf.Engine {
	case EngineMemory:
		db := inmemdb.Open()
		return &Repositories{
			Users:         inmemdb.NewUserRepository(db),
			Tasks:         inmemdb.NewTaskRepository(db),
			Announcements: inmemdb.NewAnnouncementRepository(db),
			Events:        inmemdb.NewEventRepository(db),
			close:         func() error { return nil },
		}, nil

	case EngineBolt:
		db, err := boltrepos.Open(conf.Path)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:         boltrepos.NewUserRepository(db),
			Tasks:         boltrepos.NewTaskRepository(db),
			Announcements: boltrepos.NewAnnouncementRepository(db),
			Events:        boltrepos.NewEventRepository(db),
			close:         db.Close,
		}, nil

	case database.EngineSQLite, database.EnginePostgres:
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Repositories{
			Users:         sqlxrepos.NewUserRepository(db),
			Tasks:         sqlxrepos.NewTaskRepository(db),
			Announcements: sqlxrepos.NewAnnouncementRepository(db),
			Events:        sqlxrepos.NewEventRepository(db),
			SQL:           db,
			close:         db.Close,
		}, nil
	}
	return nil, errors.Errorf("unsupported database engine %q", conf.Engine)
}

func (r *Repositories) Close() error {
	return r.close()
}
