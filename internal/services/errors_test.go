package services_test

import (
	"errors"
	"strings"
	"testing"

	"ingester/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalService, "moderation", "detect labels", "service unreachable", cause)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
	if !strings.Contains(err.Error(), "moderation: detect labels: service unreachable") {
		t.Fatalf("detail missing from message: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "notify", "publish", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("nil marker should default to transient: %v", err)
	}
}

func TestAbandons(t *testing.T) {
	tests := []struct {
		marker error
		want   bool
	}{
		{services.ErrValidation, true},
		{services.ErrConfiguration, true},
		{services.ErrNotFound, true},
		{services.ErrExternalService, false},
		{services.ErrTimeout, false},
		{services.ErrTransient, false},
	}
	for _, tc := range tests {
		err := services.Wrap(tc.marker, "stage", "op", "msg", nil)
		if got := services.Abandons(err); got != tc.want {
			t.Fatalf("Abandons(%v) = %v, want %v", tc.marker, got, tc.want)
		}
	}
}
