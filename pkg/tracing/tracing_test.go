package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_DisabledInstallsPropagator(t *testing.T) {
	cfg := DefaultConfig("storefront")

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected traceparent in propagator fields, got %v", fields)
	}
}

func TestInitTracer_Enabled(t *testing.T) {
	cfg := Config{
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "127.0.0.1:0",
		SampleRate:     1.0,
		Enabled:        true,
	}

	shutdown, err := InitTracer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitTracer(enabled) returned error: %v", err)
	}

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
	}

	if err := shutdown(context.Background()); err != nil {
		t.Logf("shutdown returned (expected due to unreachable endpoint): %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased"},
	}
	for _, tt := range tests {
		desc := Sampler(tt.rate).Description()
		if !strings.HasPrefix(desc, "ParentBased{root:"+tt.want) {
			t.Errorf("Sampler(%v) = %q, want ParentBased with %s", tt.rate, desc, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("storefront")
	if cfg.ServiceName != "storefront" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.Enabled {
		t.Error("tracing should be disabled by default")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
}

func TestTracer(t *testing.T) {
	if Tracer("storefront") == nil {
		t.Fatal("Tracer returned nil")
	}
}
