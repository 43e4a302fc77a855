package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/coupergateway/authproxy/telemetry/instrumentation"
	"github.com/coupergateway/authproxy/telemetry/provider"
)

// TokenExpiry is implemented by mechanisms holding an expiring token.
type TokenExpiry interface {
	TokenExpiresAt() (time.Time, bool)
}

// NewTokenObserver reports the remaining lifetime of the cached token on
// every collection. Nothing is reported while no token is cached.
func NewTokenObserver(source TokenExpiry, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}

	meter := provider.Meter(instrumentation.AuthorizerInstrumentationName)
	gauge, err := meter.Float64ObservableGauge(instrumentation.TokenExpiry,
		metric.WithDescription("Remaining lifetime of the cached access token"),
		metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		expiresAt, ok := source.TokenExpiresAt()
		if !ok {
			return nil
		}
		remaining := expiresAt.Sub(now()).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		observer.ObserveFloat64(gauge, remaining)
		return nil
	}, gauge)
	return err
}
