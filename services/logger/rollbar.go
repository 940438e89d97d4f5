package logsvc

import (
	"github.com/rollbar/rollbar-go"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// RollbarLogger reports Error/Fatal events to Rollbar and falls back to a
// wrapped Logger for everything (so local output is never lost).
type RollbarLogger struct {
	std core.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std core.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.Rollbar.Token)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetCodeVersion(conf.AppName)
	rollbar.SetEnabled(conf.Rollbar.Token != "" && !(conf.Debug || conf.TestMode))
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in User
		if usr, ok := arg.(user.User); ok {
			if !usrSet { // only set one User
				rollbar.SetPerson(usr.ID, usr.Username, usr.Email)
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.std.Debug(msg, args...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.std.Info(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.std.Error(msg, args...)
	rollbar.Error(l.prepare(msg, args)...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.std.Fatal(msg, args...)
}
