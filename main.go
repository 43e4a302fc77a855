package main

import (
	"context"
	goerrors "errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/command"
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/env"
	"github.com/coupergateway/authproxy/logging"
	"github.com/coupergateway/authproxy/utils"
)

var testHook logrus.Hook

func main() {
	os.Exit(realmain(context.Background(), os.Args))
}

func realmain(ctx context.Context, arguments []string) int {
	conf := config.New()

	set := flag.NewFlagSet(utils.ServiceName, flag.ContinueOnError)
	set.Usage = command.Help
	filePath := set.String("f", "", "-f ./authproxy.hcl")
	logFormat := set.String("log-format", "", "-log-format json")
	logLevel := set.String("log-level", "", "-log-level debug")
	logPretty := set.Bool("log-pretty", false, "-log-pretty")

	if err := set.Parse(arguments[1:]); err != nil {
		newLogger(conf.Settings).WithError(err).Error()
		return 1
	}

	var loadErr error
	if *filePath != "" {
		loadErr = config.LoadFile(*filePath, conf)
	} else if _, statErr := os.Stat(config.DefaultFileName); statErr == nil {
		loadErr = config.LoadFile(config.DefaultFileName, conf)
	}

	set.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-format":
			conf.Settings.LogFormat = *logFormat
		case "log-level":
			conf.Settings.LogLevel = *logLevel
		case "log-pretty":
			conf.Settings.LogPretty = *logPretty
		}
	})

	envErr := env.Decode(conf.Settings)

	logger := newLogger(conf.Settings)
	logger = logger.WithField("build", utils.BuildName)

	for _, err := range []error{loadErr, envErr} {
		if err != nil {
			logger.WithError(err).Error()
			return 1
		}
	}

	args := set.Args()
	if len(args) == 0 {
		command.Help()
		return 1
	}

	if args[0] == "help" {
		command.Help()
		return 0
	}

	cmd := command.NewCommand(ctx, args[0])
	if cmd == nil {
		command.Help()
		logger.Errorf("unknown command: %s", args[0])
		return 1
	}

	if err := cmd.Execute(command.NewArgs(args), conf, logger); err != nil {
		if goerrors.Is(err, flag.ErrHelp) {
			return 0
		}
		logger.WithError(err).Error()
		return 1
	}
	return 0
}

// newLogger creates the application logger. Invalid log settings fall
// back to the defaults and get reported by the configuration validation.
func newLogger(settings *config.Settings) *logrus.Entry {
	logConf := *logging.DefaultConfig
	logConf.Format = settings.LogFormat
	logConf.Level = settings.LogLevel
	logConf.Pretty = settings.LogPretty

	logger, err := logging.New(&logConf, os.Stdout)
	if err != nil {
		logger, _ = logging.New(logging.DefaultConfig, os.Stdout)
		logger.WithError(err).Warnf("falling back to log level %q", logging.DefaultConfig.Level)
	}

	if testHook != nil {
		logger.Logger.AddHook(testHook)
	}
	return logger
}
