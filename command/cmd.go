package command

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config"
)

type Cmd interface {
	Execute(args Args, conf *config.AuthProxy, logger *logrus.Entry) error
	Usage()
}

func NewCommand(ctx context.Context, cmd string) Cmd {
	switch strings.ToLower(cmd) {
	case "run":
		return NewRun(ContextWithSignal(ctx))
	case "verify":
		return NewVerify()
	case "version":
		return NewVersion()
	default:
		return nil
	}
}
