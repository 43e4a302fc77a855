package test

import (
	"io"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"github.com/coupergateway/authproxy/errors"
)

// NewLogger returns a discarding logger with the error hook of the
// application. The returned test hook sees the final entries.
func NewLogger() (*logrus.Logger, *logrustest.Hook) {
	log := logrus.New()
	log.Out = io.Discard
	log.Level = logrus.DebugLevel
	log.AddHook(&errors.LogHook{})
	hook := logrustest.NewLocal(log)
	return log, hook
}
