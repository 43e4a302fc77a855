package logging

import (
	"io"
	"regexp"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/errors"
)

// New creates the application logger. The returned entry carries the
// daemon type field.
func New(conf *Config, out io.Writer) (*logrus.Entry, error) {
	logger := logrus.New()
	logger.Out = out
	logger.AddHook(&errors.LogHook{})
	logger.AddHook(&ContextHook{})

	level := conf.Level
	if level == "" {
		level = "info"
	}
	parsedLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Configuration.Label("log_level").With(err)
	}
	logger.Level = parsedLevel

	if conf.Format == "json" {
		logger.Formatter = NewJSONColorFormatter(conf.ParentFieldKey, conf.Pretty)
	} else {
		logger.Formatter = &logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	}

	return logger.WithField("type", TypeDaemon), nil
}

type JSONColorFormatter struct {
	inner *logrus.JSONFormatter
}

func NewJSONColorFormatter(parent string, pretty bool) logrus.Formatter {
	return &JSONColorFormatter{
		inner: &logrus.JSONFormatter{
			DataKey: parent,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
			PrettyPrint: pretty,
		},
	}
}

var (
	keyRegex   = regexp.MustCompile(`"([A-Za-z0-9-_]+)":`)
	levelRegex = regexp.MustCompile(`"level": "(error|fatal|panic|warning)"`)
)

// Format highlights keys and severe levels if pretty printing is enabled.
func (jcf *JSONColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b, err := jcf.inner.Format(entry)
	if !jcf.inner.PrettyPrint || err != nil {
		return b, err
	}

	result := levelRegex.ReplaceAllFunc(b, func(needle []byte) []byte {
		return []byte(color.HiRedString("%s", string(needle)))
	})

	result = keyRegex.ReplaceAllFunc(result, func(needle []byte) []byte {
		return []byte(color.HiGreenString("%s", string(needle)))
	})

	return result, nil
}
