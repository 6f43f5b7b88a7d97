package logsvc

import (
	"fmt"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/Armandk18/taskmanager/core"
	"github.com/Armandk18/taskmanager/core/user"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// person is the acting user of an entry.
type person struct {
	id, name, email string
	role            user.Role
}

func personOf(arg interface{}) (person, bool) {
	switch a := arg.(type) {
	case user.User:
		return person{id: a.ID, name: a.Name, email: a.Email, role: a.Role}, true
	case user.Actor:
		return person{id: a.ID, role: a.Role}, true
	}
	return person{}, false
}

// prepare builds the rollbar args of an entry and picks its acting user.
// expected fmt: msg | error, map[string]interface{}, user.User | user.Actor
// The first user is reported as the rollbar person and its role joins the custom data.
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, *person) {
	var (
		actor  *person
		extras map[string]interface{}
	)
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if p, ok := personOf(arg); ok {
			if actor == nil { // only set one user
				actor = &p
			}
			continue
		}
		if m, ok := arg.(map[string]interface{}); ok && extras == nil {
			extras = m
			continue
		}
		newArgs = append(newArgs, arg)
	}

	if actor == nil {
		rollbar.ClearPerson()
	} else {
		rollbar.SetPerson(actor.id, actor.name, actor.email)
		custom := make(map[string]interface{}, len(extras)+1)
		for k, v := range extras {
			custom[k] = v
		}
		custom["role"] = string(actor.role)
		extras = custom
	}
	if extras != nil {
		newArgs = append(newArgs, extras)
	}
	return newArgs, actor
}

// print writes the prepared entry, tagging the message with the actor's role & ID.
func (l RollbarLogger) print(args []interface{}, actor *person) {
	msg := fmt.Sprint(args[0])
	if actor != nil {
		msg = fmt.Sprintf("%s [%s %s]", msg, actor.role, actor.id)
	}
	l.std.Println(msg)
	for _, arg := range args[1:] {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) log(report func(...interface{}), msg string, args []interface{}) {
	prepared, actor := l.prepare(msg, args)
	report(prepared...)
	l.print(prepared, actor)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.Critical, msg, args)
	l.std.Fatal(msg)
}
