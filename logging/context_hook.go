package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config/request"
)

var _ logrus.Hook = &ContextHook{}

// ContextHook adds the request id of the entry context.
type ContextHook struct{}

func (c *ContextHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (c *ContextHook) Fire(entry *logrus.Entry) error {
	_, exist := entry.Data["uid"]
	if entry.Context != nil && !exist {
		if uid, ok := entry.Context.Value(request.UID).(string); ok && uid != "" {
			entry.Data["uid"] = uid
		}
	}
	return nil
}
