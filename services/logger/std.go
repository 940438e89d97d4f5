package logsvc

import (
	"fmt"
	"os"

	"github.com/labstack/gommon/log"

	"github.com/trezcool/darasa/core"
)

type StdLogger struct {
	lg *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(conf *core.Config) *StdLogger {
	lg := log.New(conf.AppName)
	lg.SetHeader("${time_rfc3339} ${level} ${prefix}")
	lg.SetOutput(os.Stderr)
	if conf.Debug {
		lg.SetLevel(log.DEBUG)
	} else {
		lg.SetLevel(log.INFO)
	}
	return &StdLogger{lg: lg}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.lg.Debug(line(msg, args)) }
func (l StdLogger) Info(msg string, args ...interface{})  { l.lg.Info(line(msg, args)) }
func (l StdLogger) Error(msg string, args ...interface{}) { l.lg.Error(line(msg, args)) }
func (l StdLogger) Fatal(msg string, args ...interface{}) { l.lg.Fatal(line(msg, args)) }

func line(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return msg + ":" + fmt.Sprintln(args...)
}
