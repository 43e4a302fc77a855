package logging

import (
	"crypto/tls"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coupergateway/authproxy/config/request"
)

var _ http.RoundTripper = &UpstreamLog{}

// UpstreamLog logs every outgoing request. Query strings, bodies and
// credential headers are never part of the entry.
type UpstreamLog struct {
	config *Config
	log    *logrus.Entry
	next   http.RoundTripper
}

func NewUpstreamLog(log *logrus.Entry, next http.RoundTripper, conf *Config) *UpstreamLog {
	logConf := *DefaultConfig
	if conf != nil {
		logConf = *conf
	}
	if logConf.TypeFieldKey == "" {
		logConf.TypeFieldKey = TypeUpstream
	}
	return &UpstreamLog{
		config: &logConf,
		log:    log,
		next:   next,
	}
}

func (u *UpstreamLog) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()

	req, timings := u.withTraceContext(req)

	fields := Fields{
		"type": u.config.TypeFieldKey,
		"uid":  req.Context().Value(request.UID),
	}

	requestFields := Fields{
		"headers": filterHeader(u.config.RequestHeaders, req.Header),
		"method":  req.Method,
		"name":    req.Context().Value(request.RoundTripName),
		"path":    req.URL.EscapedPath(),
		"scheme":  req.URL.Scheme,
	}

	if req.ContentLength > 0 {
		requestFields["bytes"] = req.ContentLength
	}

	if req.URL.Host != "" {
		requestFields["addr"] = req.URL.Host
		requestFields["host"], requestFields["port"] = splitHostPort(req.URL.Host)
	}

	fields["request"] = requestFields

	beresp, err := u.next.RoundTrip(req)

	fields["realtime"] = RoundMS(time.Since(startTime))
	fields["timings"] = timings.Fields()

	fields["status"] = 0
	if beresp != nil {
		fields["status"] = beresp.StatusCode
		fields["response"] = Fields{
			"headers": filterHeader(u.config.ResponseHeaders, beresp.Header),
			"proto":   beresp.Proto,
			"tls":     beresp.TLS != nil,
		}
	}

	var entry *logrus.Entry
	if u.config.ParentFieldKey != "" {
		entry = u.log.WithField(u.config.ParentFieldKey, fields)
	} else {
		entry = u.log.WithFields(logrus.Fields(fields))
	}
	entry.Time = startTime

	if err != nil {
		entry.WithError(err).Error()
	} else if beresp.StatusCode >= http.StatusInternalServerError {
		entry.Warn()
	} else {
		entry.Info()
	}

	return beresp, err
}

type traceTimings struct {
	mu     sync.Mutex
	fields Fields
}

func (t *traceTimings) set(key string, value interface{}) {
	t.mu.Lock()
	t.fields[key] = value
	t.mu.Unlock()
}

func (t *traceTimings) Fields() Fields {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make(Fields, len(t.fields))
	for k, v := range t.fields {
		result[k] = v
	}
	return result
}

func (u *UpstreamLog) withTraceContext(req *http.Request) (*http.Request, *traceTimings) {
	timings := &traceTimings{fields: Fields{}}
	var timeGotConn, timeConnect, timeDNS, timeTLS time.Time
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			timeGotConn = time.Now()
			timings.set("reused", info.Reused)
		},
		GotFirstResponseByte: func() {
			timings.set("ttfb", RoundMS(time.Since(timeGotConn)))
		},
		ConnectStart: func(_, _ string) {
			timeConnect = time.Now()
		},
		DNSStart: func(_ httptrace.DNSStartInfo) {
			timeDNS = time.Now()
		},
		TLSHandshakeStart: func() {
			timeTLS = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				timings.set("connect", RoundMS(time.Since(timeConnect)))
			}
		},
		DNSDone: func(_ httptrace.DNSDoneInfo) {
			timings.set("dns", RoundMS(time.Since(timeDNS)))
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				timings.set("tls", RoundMS(time.Since(timeTLS)))
			}
		},
	}
	return req.WithContext(httptrace.WithClientTrace(req.Context(), trace)), timings
}
