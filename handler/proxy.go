package handler

import (
	"bytes"
	"context"
	goerrors "errors"
	"io"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/coupergateway/authproxy/config/request"
	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
	"github.com/coupergateway/authproxy/utils"
)

// RoundTripName marks forwarded requests for the upstream log and telemetry.
const RoundTripName = "proxy"

// hopHeaders are connection specific and never forwarded, see RFC 9110 7.6.1.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

var _ http.Handler = &Proxy{}

// Proxy forwards requests below the route prefix to the configured
// endpoint. Every request passes the states received, composed,
// authorized, forwarded and mirrored, or ends with an error response.
type Proxy struct {
	authorizer Authorizer
	bodyLimit  int64
	client     *http.Client
	endpoint   string
	log        *logrus.Entry
	prefix     string
}

func NewProxy(opts *ProxyOptions, log *logrus.Entry) *Proxy {
	return &Proxy{
		authorizer: opts.Authorizer,
		bodyLimit:  opts.RequestBodyLimit,
		client:     opts.Client,
		endpoint:   opts.Endpoint,
		log:        log,
		prefix:     opts.RoutePrefix,
	}
}

func (p *Proxy) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	log := p.log.WithContext(req.Context())

	outreq, err := p.compose(req)
	if err != nil {
		if goerrors.Is(err, errors.RouteNotFound) {
			log.WithError(err).Error("invalid path")
		} else {
			log.WithError(err).Error("compose request")
		}
		WriteError(rw, err)
		return
	}

	err = p.authorizer.Authorize(outreq)
	p.recordAuthorization(req.Context(), err)
	if err != nil {
		log.WithError(err).Error("authorize request")
		WriteError(rw, err)
		return
	}

	beresp, err := p.client.Do(outreq)
	if err != nil {
		uerr := errors.Upstream.Label(RoundTripName).With(err)
		log.WithError(uerr).Error("forward request")
		WriteError(rw, uerr)
		return
	}
	defer beresp.Body.Close()

	rw.WriteHeader(beresp.StatusCode)
	if _, err = io.Copy(rw, beresp.Body); err != nil {
		// The status is written already, the client sees a truncated body.
		log.WithError(errors.Upstream.Label(RoundTripName).Message("mirror response body").With(err)).Error()
	}
}

// compose builds the outgoing request. Method, query, body and all end to
// end headers are taken over unchanged.
func (p *Proxy) compose(req *http.Request) (*http.Request, error) {
	segments, err := splitEscapedPath(req.URL.EscapedPath())
	if err != nil {
		return nil, errors.ClientRequest.Message("invalid path").With(err)
	}

	if len(segments) == 0 || segments[0] != p.prefix {
		return nil, errors.RouteNotFound.Messagef("%s %s", req.Method, req.URL.Path)
	}

	target, err := utils.JoinURL(p.endpoint, segments[1:]...)
	if err != nil {
		return nil, errors.Server.Message("compose url").With(err)
	}

	body, err := p.readBody(req)
	if err != nil {
		return nil, err
	}

	ctx := context.WithValue(req.Context(), request.RoundTripName, RoundTripName)
	outreq, err := http.NewRequestWithContext(ctx, req.Method, target, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Server.Message("compose request").With(err)
	}

	outreq.URL.RawQuery = req.URL.RawQuery
	outreq.Header = req.Header.Clone()
	if outreq.Header == nil {
		outreq.Header = make(http.Header)
	}
	removeHopHeaders(outreq.Header)

	// Prevent the default Go User-Agent if the client sent none.
	if _, ok := outreq.Header["User-Agent"]; !ok {
		outreq.Header.Set("User-Agent", "")
	}

	return outreq, nil
}

func (p *Proxy) readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.ContentLength > p.bodyLimit {
		return nil, errors.RequestBodyLimit.Messagef("content length %d exceeds %d bytes", req.ContentLength, p.bodyLimit)
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, p.bodyLimit+1))
	if err != nil {
		return nil, errors.ClientRequest.Message("read body").With(err)
	}
	if int64(len(body)) > p.bodyLimit {
		return nil, errors.RequestBodyLimit.Messagef("body exceeds %d bytes", p.bodyLimit)
	}
	return body, nil
}

func (p *Proxy) recordAuthorization(ctx context.Context, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}

	meter := provider.Meter(instrumentation.AuthorizerInstrumentationName)
	counter, _ := meter.Int64Counter(instrumentation.Authorization,
		metric.WithDescription("Number of authorized outgoing requests"))
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mechanism", p.authorizer.Kind().String()),
		attribute.String("result", result),
	))
}

func splitEscapedPath(escaped string) ([]string, error) {
	segments := utils.SplitPath(escaped)
	for i, s := range segments {
		unescaped, err := url.PathUnescape(s)
		if err != nil {
			return nil, err
		}
		segments[i] = unescaped
	}
	return segments, nil
}

func removeHopHeaders(header http.Header) {
	for _, field := range header.Values("Connection") {
		for _, name := range strings.Split(field, ",") {
			if name = textproto.TrimString(name); name != "" {
				header.Del(name)
			}
		}
	}
	for _, h := range hopHeaders {
		header.Del(h)
	}
}
