package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "test", SampleRatio: 1})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "op")
	if !span.SpanContext().IsValid() {
		t.Fatal("expected a recording span from the sdk provider")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestExporterOptionsByEndpointForm(t *testing.T) {
	if n := len(exporterOptions("collector:4318", true)); n != 2 {
		t.Fatalf("expected endpoint + insecure options, got %d", n)
	}
	if n := len(exporterOptions("https://collector.example.com/v1/traces", false)); n != 1 {
		t.Fatalf("expected endpoint url option only, got %d", n)
	}
}
