package command

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/authorizer"
	"github.com/coupergateway/authproxy/config"
)

var _ Cmd = &Verify{}

// Verify resolves the configuration like Run does and builds the
// authorization mechanism without opening any listener or connection.
type Verify struct {
	run *Run
}

func NewVerify() *Verify {
	return &Verify{run: NewRun(context.Background())}
}

func (v Verify) Execute(args Args, conf *config.AuthProxy, logger *logrus.Entry) error {
	if err := v.run.Configure(args, conf); err != nil {
		logger.WithError(err).Error()
		return err
	}

	// No token gets requested before the first authorization.
	mechanism, err := authorizer.New(conf, &http.Client{}, logger, nil)
	if err != nil {
		logger.WithError(err).Error()
		return err
	}

	logger.WithField("mechanism", mechanism.Kind().String()).Info("configuration is valid")
	return nil
}

func (v Verify) Usage() {
	println("Usage of verify:\n  verify [-f <file>] <options>	Verify the given configuration, options and environment.")
	v.run.Usage()
}
