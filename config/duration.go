package config

import (
	"time"

	"github.com/coupergateway/authproxy/errors"
)

func ParseDuration(attribute string, value string, _default time.Duration) (time.Duration, error) {
	if value == "" {
		return _default, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Configuration.Label(attribute).With(err)
	}
	if duration < 0 {
		return 0, errors.Configuration.Label(attribute).Messagef("cannot be negative: '%s'", value)
	}

	return duration, nil
}
