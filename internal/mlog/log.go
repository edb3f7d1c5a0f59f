package mlog

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Log is the default logger for the marigold commands.
var Log log.Logger

var hlog log.Logger

// ApplyLogLevel applies the minimum logging level. It only takes effect once;
// later calls are no-ops so libraries cannot un-filter the CLI's choice.
var ApplyLogLevel func(string)

func init() {
	setup(false)
}

// UseJSON switches the backing logger to JSON output. Must be called before
// ApplyLogLevel to take effect.
func UseJSON() {
	setup(true)
}

func setup(jsonOut bool) {
	if jsonOut {
		Log = log.NewJSONLogger(os.Stderr)
	} else {
		Log = log.NewLogfmtLogger(os.Stderr)
	}
	hlog = log.With(Log, "ts", log.DefaultTimestampUTC, "caller", log.Caller(6))
	Log = log.With(Log, "ts", log.DefaultTimestampUTC, "caller", log.Caller(5))

	ApplyLogLevel = func(lvl string) {
		switch lvl {
		case "debug":
			Log = level.NewFilter(Log, level.AllowDebug())
			hlog = level.NewFilter(hlog, level.AllowDebug())
		case "warn":
			Log = level.NewFilter(Log, level.AllowWarn())
			hlog = level.NewFilter(hlog, level.AllowWarn())
		case "error":
			Log = level.NewFilter(Log, level.AllowError())
			hlog = level.NewFilter(hlog, level.AllowError())
		case "all":
			Log = level.NewFilter(Log, level.AllowAll())
			hlog = level.NewFilter(hlog, level.AllowAll())
		default:
			Log = level.NewFilter(Log, level.AllowInfo())
			hlog = level.NewFilter(hlog, level.AllowInfo())
		}
		ApplyLogLevel = func(string) {}
	}
}

// Debug adds a log entry w/ Debug level
func Debug(keyvals ...interface{}) {
	level.Debug(hlog).Log(keyvals...)
}

// Info adds a log entry w/ Info level
func Info(keyvals ...interface{}) {
	level.Info(hlog).Log(keyvals...)
}

// Warn adds a log entry w/ Warn level
func Warn(keyvals ...interface{}) {
	level.Warn(hlog).Log(keyvals...)
}

// Error adds a log entry w/ Error level
func Error(keyvals ...interface{}) {
	level.Error(hlog).Log(keyvals...)
}

// Fatal adds a log entry w/ Error level and exits
func Fatal(keyvals ...interface{}) {
	level.Error(hlog).Log(keyvals...)
	os.Exit(1)
}
