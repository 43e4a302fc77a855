package logging

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/errors"
)

type RecorderInfo interface {
	StatusCode() int
	WrittenBytes() int
}

type AccessLog struct {
	conf   *Config
	logger logrus.FieldLogger
}

func NewAccessLog(c *Config, logger logrus.FieldLogger) *AccessLog {
	return &AccessLog{
		conf:   c,
		logger: logger,
	}
}

// Handler logs one entry for every request served by next.
func (log *AccessLog) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		startTime, ok := req.Context().Value(request.StartTime).(time.Time)
		if !ok {
			startTime = time.Now()
		}

		recorder, isRecorder := rw.(RecorderInfo)
		if !isRecorder {
			sr := NewStatusRecorder(rw)
			rw, recorder = sr, sr
		}

		log.ServeHTTP(rw, req, next, startTime, recorder)
	})
}

func (log *AccessLog) ServeHTTP(rw http.ResponseWriter, req *http.Request, nextHandler http.Handler, startTime time.Time, recorder RecorderInfo) {
	nextHandler.ServeHTTP(rw, req)
	serveDone := time.Now()

	fields := Fields{
		"method": req.Method,
		"proto":  req.Proto,
		"type":   TypeAccess,
		"uid":    req.Context().Value(request.UID),
	}
	if log.conf.TypeFieldKey != "" {
		fields["type"] = log.conf.TypeFieldKey
	}

	requestFields := Fields{
		"headers": filterHeader(log.conf.RequestHeaders, req.Header),
		"tls":     req.TLS != nil,
	}
	fields["request"] = requestFields

	if req.ContentLength > 0 {
		requestFields["bytes"] = req.ContentLength
	}

	path := &url.URL{
		Path:     req.URL.Path,
		RawPath:  req.URL.RawPath,
		RawQuery: req.URL.RawQuery,
	}
	requestFields["path"] = path.String()

	if req.Host != "" {
		requestFields["addr"] = req.Host
		requestFields["host"], requestFields["port"] = splitHostPort(req.Host)
	}

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	fields["url"] = scheme + "://" + req.Host + path.String()
	fields["client_ip"], _ = splitHostPort(req.RemoteAddr)

	statusCode := recorder.StatusCode()
	fields["realtime"] = RoundMS(serveDone.Sub(startTime))
	fields["status"] = statusCode

	responseFields := Fields{
		"headers": filterHeader(log.conf.ResponseHeaders, rw.Header()),
	}
	if writtenBytes := recorder.WrittenBytes(); writtenBytes > 0 {
		responseFields["bytes"] = writtenBytes
	}
	fields["response"] = responseFields

	var entry *logrus.Entry
	if log.conf.ParentFieldKey != "" {
		entry = log.logger.WithField(log.conf.ParentFieldKey, fields)
	} else {
		entry = log.logger.WithFields(logrus.Fields(fields))
	}
	entry.Time = startTime

	proxyErr := rw.Header().Get(errors.HeaderErrorCode)
	switch {
	case statusCode >= http.StatusInternalServerError:
		if proxyErr != "" {
			entry.Error(proxyErr)
			return
		}
		entry.Error()
	case proxyErr != "":
		entry.Warn(proxyErr)
	default:
		entry.Info()
	}
}
