package telemetry

import (
	"context"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	for _, cfg := range []Config{{}, {Endpoint: "http://localhost:4318", Disabled: true}} {
		shutdown, err := Setup(context.Background(), "spacetraveling", "test", cfg)
		if err != nil {
			t.Fatalf("Setup(%+v): %v", cfg, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), "spacetraveling", "test", Config{Endpoint: "http://127.0.0.1:4318"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so shutdown has nothing to flush.
	_ = shutdown(ctx)
}
