// Package logger is a thin leveled logging facade shared by the pricing
// packages. The engine only speaks at debug level; at the default level a
// library consumer sees nothing.
package logger

import (
	"os"

	"github.com/fatih/structs"
	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.SetLevel(logrus.WarnLevel)
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	return l
}

func GetLevel() string {
	return log.Level.String()
}

// SetLevel adjusts the global level. Unknown or empty strings fall back to
// debug, matching the permissive behavior consumers rely on when wiring up
// diagnostics.
func SetLevel(lvl string) {
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		parsed = logrus.DebugLevel
	}
	log.SetLevel(parsed)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// DebugStruct logs a message with every exported field of v attached as a
// structured field. Used to dump model configurations.
func DebugStruct(msg string, v interface{}) {
	log.WithFields(logrus.Fields(structs.Map(v))).Debug(msg)
}
