package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_RegistersGlobalProviders(t *testing.T) {
	origMP := otel.GetMeterProvider()
	origTP := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
	})

	tel, err := Setup(TelemetryConfig{ServiceName: "orato-test"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if otel.GetMeterProvider() == origMP {
		t.Error("Setup did not replace the global meter provider")
	}
	if otel.GetTracerProvider() == origTP {
		t.Error("Setup did not replace the global tracer provider")
	}

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
