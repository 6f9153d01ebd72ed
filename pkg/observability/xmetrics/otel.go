package xmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xbackoff/xmetrics"
	unknownOperation           = "unknown"

	metricAttemptsTotal = "xbackoff.attempts.total"
	metricTimeoutsTotal = "xbackoff.timeouts.total"
	metricDelayDuration = "xbackoff.delay.duration"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Observer 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer。
// span 事件始终附加到调用方 context 中的活跃 span（若有），
// 因此无需单独的 TracerProvider。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	attempts, err := meter.Int64Counter(
		metricAttemptsTotal,
		metric.WithDescription("total retry attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create attempts counter failed: %w", err)
	}

	timeouts, err := meter.Int64Counter(
		metricTimeoutsTotal,
		metric.WithDescription("retry sequences that exhausted their budget"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create timeouts counter failed: %w", err)
	}

	delay, err := meter.Float64Histogram(
		metricDelayDuration,
		metric.WithDescription("backoff delay before an attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create delay histogram failed: %w", err)
	}

	return &otelObserver{
		attempts: attempts,
		timeouts: timeouts,
		delay:    delay,
	}, nil
}

type otelObserver struct {
	attempts metric.Int64Counter
	timeouts metric.Int64Counter
	delay    metric.Float64Histogram
}

var _ Observer = (*otelObserver)(nil)

// ObserveAttempt 记录一次尝试。
func (o *otelObserver) ObserveAttempt(ctx context.Context, operation string, outcome Outcome, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if operation == "" {
		operation = unknownOperation
	}

	// 使用不可取消的 context 记录指标：失败和超时恰恰发生在
	// 请求 context 已取消的场景，这时的观测最不能丢。
	metricsCtx := context.WithoutCancel(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("outcome", string(outcome)),
	}
	o.attempts.Add(metricsCtx, 1, metric.WithAttributes(attrs...))
	if outcome == OutcomeTimeout {
		o.timeouts.Add(metricsCtx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		eventAttrs := attrs
		if err != nil {
			eventAttrs = append(eventAttrs, attribute.String("error", err.Error()))
		}
		span.AddEvent("xbackoff.attempt", trace.WithAttributes(eventAttrs...))
	}
}

// ObserveDelay 记录一次退避等待的时长。
func (o *otelObserver) ObserveDelay(ctx context.Context, operation string, delay time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	if operation == "" {
		operation = unknownOperation
	}
	o.delay.Record(context.WithoutCancel(ctx), delay.Seconds(),
		metric.WithAttributes(attribute.String("operation", operation)))
}
