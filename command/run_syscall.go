//go:build linux || darwin

package command

import (
	"syscall"

	"github.com/sirupsen/logrus"
)

func init() {
	checkLimit = func(logEntry *logrus.Entry) {
		var lim syscall.Rlimit
		if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &lim); err != nil {
			logEntry.WithError(err).Warn("ulimit: error retrieving file descriptor limit")
			return
		}
		logEntry.Infof("ulimit: max open files: %d (hard limit: %d)", lim.Cur, lim.Max)
	}
}
