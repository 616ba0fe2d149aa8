package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// restClient is the transport shared by every provider: one GET, no retries,
// a bounded timeout, and classification into StatusError / ErrEmptyBody.
type restClient struct {
	provider string
	client   *resty.Client
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  *observability.Metrics
}

func newRestClient(provider, baseURL string, timeout time.Duration, userAgent string, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *restClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", provider))

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())

	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return &restClient{
		provider: provider,
		client:   client,
		logger:   logger,
		tele:     tele,
		metrics:  metrics,
	}
}

func (c *restClient) get(ctx context.Context, operation, endpoint string, params map[string]string) ([]byte, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, c.provider+"."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", c.provider),
		attribute.String("operation", operation),
	)

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	elapsed := time.Since(start)

	if err != nil {
		cause := transportCause(err)
		c.metrics.ObserveProvider(c.provider, operation, observability.OutcomeNetwork, elapsed)
		span.SetAttributes(attribute.Bool("success", false))
		c.tele.RecordError(ctx, cause, nil)
		c.logger.Debug("Provider request failed",
			zap.String("operation", operation),
			zap.Duration("latency", elapsed),
			zap.Error(cause))
		return nil, fmt.Errorf("%s %s request: %w", c.provider, operation, cause)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.StatusCode() != http.StatusOK {
		c.metrics.ObserveProvider(c.provider, operation, observability.OutcomeStatus, elapsed)
		span.SetAttributes(attribute.Bool("success", false))
		c.logger.Debug("Provider returned non-success status",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", elapsed))
		return nil, &StatusError{Provider: c.provider, Operation: operation, StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		c.metrics.ObserveProvider(c.provider, operation, observability.OutcomeEmpty, elapsed)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, fmt.Errorf("%s %s: %w", c.provider, operation, ErrEmptyBody)
	}

	c.metrics.ObserveProvider(c.provider, operation, observability.OutcomeSuccess, elapsed)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("http.response_size", len(body)),
	)
	c.logger.Debug("Provider request completed",
		zap.String("operation", operation),
		zap.Duration("latency", elapsed),
		zap.Int("body_size", len(body)))

	return body, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// transportCause drops the *url.Error wrapper, whose text carries the full
// request URL including the appid query parameter.
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// IsStatusError reports whether err carries a provider status code.
func IsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
