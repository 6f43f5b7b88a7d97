// Package inmemdb implements the repositories in process memory. Every table is guarded by its own lock.
package inmemdb

import (
	"sync"

	"github.com/Armandk18/taskmanager/core/announcement"
	"github.com/Armandk18/taskmanager/core/event"
	"github.com/Armandk18/taskmanager/core/task"
	"github.com/Armandk18/taskmanager/core/user"
)

type (
	DB struct {
		user         *userTable
		task         *taskTable
		announcement *announcementTable
		event        *eventTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	taskTable struct {
		t     map[string]*task.Task
		mutex sync.RWMutex
	}

	announcementTable struct {
		t     map[string]*announcement.Announcement
		mutex sync.RWMutex
	}

	eventTable struct {
		t     map[string]*event.Event
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{t: make(map[string]*user.User)},
		task:         &taskTable{t: make(map[string]*task.Task)},
		announcement: &announcementTable{t: make(map[string]*announcement.Announcement)},
		event:        &eventTable{t: make(map[string]*event.Event)},
	}
}
