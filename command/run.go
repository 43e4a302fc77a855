package command

import (
	"context"
	"crypto/tls"
	"flag"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/coupergateway/authproxy/authorizer"
	"github.com/coupergateway/authproxy/config"
	"github.com/coupergateway/authproxy/config/env"
	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/handler"
	"github.com/coupergateway/authproxy/handler/transport"
	"github.com/coupergateway/authproxy/logging"
	"github.com/coupergateway/authproxy/server"
	"github.com/coupergateway/authproxy/telemetry"
)

var _ Cmd = &Run{}

// checkLimit logs the file descriptor limit where the platform has one.
var checkLimit = func(*logrus.Entry) {}

// Run starts the proxy server and listens for requests on the configured
// address until its context is canceled.
type Run struct {
	context context.Context
	flagSet *flag.FlagSet
	conf    *config.AuthProxy

	addrMu sync.Mutex
	addr   string
}

func NewRun(ctx context.Context) *Run {
	conf := config.New()
	s, o, t := conf.Settings, conf.OAuth2, conf.TLS

	set := flag.NewFlagSet("run", flag.ContinueOnError)
	set.StringVar(&s.Address, "a", s.Address, "-a 0.0.0.0")
	set.IntVar(&s.Port, "p", s.Port, "-p 3000")
	set.StringVar(&s.Endpoint, "e", s.Endpoint, "-e https://upstream.example.com/metrics")
	set.StringVar(&s.RoutePrefix, "route-prefix", s.RoutePrefix, "-route-prefix metrics")
	set.StringVar(&s.HealthPath, "health-path", s.HealthPath, "-health-path /health")
	set.StringVar(&s.RequestBodyLimit, "request-body-limit", s.RequestBodyLimit, "-request-body-limit 64MiB")
	set.StringVar(&s.UpstreamTimeout, "upstream-timeout", s.UpstreamTimeout, "-upstream-timeout 30s")
	set.StringVar(&s.TokenTimeout, "token-timeout", s.TokenTimeout, "-token-timeout 30s")
	set.StringVar(&s.UpstreamCAFile, "upstream-ca-file", s.UpstreamCAFile, "-upstream-ca-file ./ca.pem")
	set.BoolVar(&s.UpstreamSkipVerify, "upstream-skip-verify", s.UpstreamSkipVerify, "-upstream-skip-verify")
	set.BoolVar(&s.NoProxyFromEnv, "no-proxy-from-env", s.NoProxyFromEnv, "-no-proxy-from-env")
	set.StringVar(&s.UpstreamProxy, "upstream-proxy", s.UpstreamProxy, "-upstream-proxy http://proxy:3128")
	set.StringVar(&s.RequestIDFormat, "request-id-format", s.RequestIDFormat, "-request-id-format uuid4")
	set.StringVar(&s.RequestIDAcceptFromHeader, "request-id-accept-from-header", s.RequestIDAcceptFromHeader, "-request-id-accept-from-header X-UID")
	set.StringVar(&s.RequestIDClientHeader, "request-id-client-header", s.RequestIDClientHeader, "-request-id-client-header X-Request-ID")
	set.StringVar(&s.RequestIDBackendHeader, "request-id-backend-header", s.RequestIDBackendHeader, "-request-id-backend-header X-Request-ID")
	set.BoolVar(&s.Metrics, "metrics", s.Metrics, "-metrics")
	set.IntVar(&s.MetricsPort, "metrics-port", s.MetricsPort, "-metrics-port 9090")
	set.StringVar(&s.MetricsExporter, "metrics-exporter", s.MetricsExporter, "-metrics-exporter [prometheus|otlp]")
	set.StringVar(&s.MetricsEndpoint, "metrics-endpoint", s.MetricsEndpoint, "-metrics-endpoint [host:port]")
	set.BoolVar(&s.Traces, "traces", s.Traces, "-traces")
	set.StringVar(&s.TracesEndpoint, "traces-endpoint", s.TracesEndpoint, "-traces-endpoint [host:port]")
	set.StringVar(&s.ServiceName, "service-name", s.ServiceName, "-service-name authproxy")

	set.StringVar(&o.ClientID, "client-id", o.ClientID, "-client-id my-client")
	set.StringVar(&o.ClientSecret, "client-secret", o.ClientSecret, "-client-secret my-secret")
	set.StringVar(&o.AuthURL, "auth-url", o.AuthURL, "-auth-url https://idp.example.com/authorize")
	set.StringVar(&o.TokenURL, "token-url", o.TokenURL, "-token-url https://idp.example.com/token")
	set.StringVar(&o.Audience, "audience", o.Audience, "-audience https://upstream.example.com")
	set.Var(&sliceValue{target: &o.Scopes}, "scopes", "-scopes read,write")
	set.StringVar(&o.HeaderName, "header-name", o.HeaderName, "-header-name Authorization")
	set.StringVar(&o.HeaderValue, "header-value", o.HeaderValue, `-header-value "Bearer {}"`)
	set.StringVar(&o.AuthStyle, "auth-style", o.AuthStyle, "-auth-style [header|params|auto]")

	set.StringVar(&t.Cert, "cert", t.Cert, "-cert <PEM>")
	set.StringVar(&t.CertFile, "cert-file", t.CertFile, "-cert-file ./client.crt")
	set.StringVar(&t.Key, "key", t.Key, "-key <PEM>")
	set.StringVar(&t.KeyFile, "key-file", t.KeyFile, "-key-file ./client.key")
	set.StringVar(&t.Mode, "tls-mode", t.Mode, "-tls-mode [transport|forward-headers]")

	return &Run{
		context: ctx,
		flagSet: set,
		conf:    conf,
	}
}

// Configure merges the command line flags and the environment into the
// given configuration and validates the result. The environment wins over
// flags, flags win over the configuration file.
func (r *Run) Configure(args Args, conf *config.AuthProxy) error {
	*r.conf.Settings = *conf.Settings
	*r.conf.OAuth2 = *conf.OAuth2
	*r.conf.TLS = *conf.TLS

	if err := r.flagSet.Parse(args.Filter(r.flagSet)); err != nil {
		return errors.Configuration.Label("flags").With(err)
	}

	for _, c := range []interface{}{r.conf.Settings, r.conf.OAuth2, r.conf.TLS} {
		if err := env.Decode(c); err != nil {
			return err
		}
	}

	*conf.Settings = *r.conf.Settings
	*conf.OAuth2 = *r.conf.OAuth2
	*conf.TLS = *r.conf.TLS

	return conf.Validate()
}

func (r *Run) Execute(args Args, conf *config.AuthProxy, logEntry *logrus.Entry) error {
	if err := r.Configure(args, conf); err != nil {
		return err
	}

	checkLimit(logEntry)
	undoMaxProcs, err := maxprocs.Set(maxprocs.Logger(logEntry.Debugf))
	if err != nil {
		logEntry.WithError(err).Warn("maxprocs: keeping the default GOMAXPROCS")
	}
	defer undoMaxProcs()

	settings := conf.Settings
	logConf := *logging.DefaultConfig
	logConf.Format = settings.LogFormat
	logConf.Level = settings.LogLevel
	logConf.Pretty = settings.LogPretty

	upstreamTimeout, _, err := settings.Timeouts()
	if err != nil {
		return err
	}

	// The token endpoint always gets verified, skip-verify targets the upstream only.
	tokenClient, err := newClient(settings, nil, 0, false, logEntry, &logConf)
	if err != nil {
		return err
	}

	mechanism, err := authorizer.New(conf, tokenClient, logEntry, nil)
	if err != nil {
		return err
	}
	logMechanism(logEntry, mechanism)

	upstreamClient, err := newClient(settings, mechanism.ClientCertificate(), upstreamTimeout, settings.UpstreamSkipVerify, logEntry, &logConf)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(r.context)

	tel, err := telemetry.InitExporter(ctx, telemetry.NewOptions(settings), logEntry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
			logEntry.WithError(shutdownErr).Warn("telemetry shutdown")
		}
	}()

	if settings.Metrics && mechanism.Kind() == config.MechanismOAuth2 {
		if err = telemetry.NewTokenObserver(mechanism, nil); err != nil {
			return errors.Configuration.Label("telemetry").With(err)
		}
	}

	proxyOpts, err := handler.NewProxyOptions(settings, mechanism, upstreamClient)
	if err != nil {
		return err
	}

	mux := server.NewMux(&server.MuxOptions{
		HealthPath: settings.HealthPath,
		Health:     handler.NewHealthCheck(logEntry),
		Proxy:      handler.NewProxy(proxyOpts, logEntry),
	})

	srv := server.New(ctx, logEntry, settings, &logConf, mux)
	if err = srv.Listen(); err != nil {
		return err
	}
	r.setAddr(srv.Addr())

	g.Go(srv.Serve)

	if gatherer := tel.Gatherer(); gatherer != nil {
		metricsServer := telemetry.NewMetricsServer(logEntry, gatherer, settings.MetricsPort)
		g.Go(metricsServer.ListenAndServe)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultHTTPConfig.ShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Addr returns the address of the proxy listener once it is open.
func (r *Run) Addr() string {
	r.addrMu.Lock()
	defer r.addrMu.Unlock()
	return r.addr
}

func (r *Run) setAddr(addr string) {
	r.addrMu.Lock()
	defer r.addrMu.Unlock()
	r.addr = addr
}

func (r *Run) Usage() {
	r.flagSet.Usage()
}

func newClient(settings *config.Settings, clientCert *tls.Certificate, timeout time.Duration, skipVerify bool,
	logEntry *logrus.Entry, logConf *logging.Config) (*http.Client, error) {
	transportConf, err := transport.NewConfig(settings, clientCert)
	if err != nil {
		return nil, err
	}
	transportConf.DisableCertValidation = skipVerify

	rt, err := transport.NewTransport(transportConf)
	if err != nil {
		return nil, err
	}

	upstreamLog := logging.NewUpstreamLog(logEntry, telemetry.NewInstrumentedRoundTripper(rt), logConf)
	return transport.NewClient(upstreamLog, timeout), nil
}

func logMechanism(logEntry *logrus.Entry, mechanism *authorizer.Mechanism) {
	switch mechanism.Kind() {
	case config.MechanismOAuth2:
		logEntry.Info("OAuth2 client credentials authentication configured.")
	case config.MechanismTLS:
		ta := mechanism.TLS()
		logEntry.WithField("mode", ta.Mode().String()).Info("TLS authentication configured.")
		if ta.Mode() != config.TLSModeForwardHeaders {
			return
		}
		if err := ta.HeaderEncodingError(); err != nil {
			logEntry.WithError(err).Warn("tls: forwarded client certificate headers will be rejected")
		}
	default:
		logEntry.Info("No authentication configured.")
	}
}
