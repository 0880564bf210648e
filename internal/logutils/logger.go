package logutils

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Log is the logger shared by every package of the tracker.
var Log = logrus.New()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

//nolint:gochecknoinits // This is the only place where we should set the formatter.
func init() {
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:           "2006-01-02 15:04:05",
		EnvironmentOverrideColors: true,
		FullTimestamp:             true,
		CallerPrettyfier:          shortCaller,
	})
}

// shortCaller prints the caller as file.go:line and drops the function name.
func shortCaller(f *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

// SetLevel parses level ("debug", "info", "warn", ...) and applies it to Log.
// Caller locations are only reported at debug level and below.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	Log.SetReportCaller(lvl >= logrus.DebugLevel)
	return nil
}
