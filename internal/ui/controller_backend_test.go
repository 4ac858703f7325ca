package ui

import (
	"context"
	"testing"
	"time"

	"pixotope-settings-go/internal/backend"
	"pixotope-settings-go/internal/events"
	"pixotope-settings-go/internal/gateway"
	"pixotope-settings-go/internal/gateway/gatewaytest"
	"pixotope-settings-go/internal/types"
)

type staticSpaces []types.ColorSpaceEntry

func (s staticSpaces) Load() ([]types.ColorSpaceEntry, error) { return s, nil }

// A poll that lands while the panel is being mounted must still reach it.
func TestPollDuringMountReachesView(t *testing.T) {
	srv := gatewaytest.NewServer()
	defer srv.Close()
	srv.SetValue(gateway.PropertyColorSpace, "709")
	srv.SetValue(gateway.PropertyInputOutput, "NDI")
	srv.SetCameras(map[string]string{"a": "Cam A"})

	spaces := staticSpaces{{Family: "ACES", Name: "ACEScg"}, {Family: "sRGB", Name: "709"}}
	svc := backend.NewService(gateway.NewClient(srv.Endpoint(), time.Second), spaces, events.NewBus())

	polled := make(chan error, 1)
	r := &fakeRenderer{}
	r.onMount = func() {
		srv.SetValue(gateway.PropertyColorSpace, "ACEScg")
		go func() {
			_, err := svc.Poll(context.Background())
			polled <- err
		}()
	}

	ctrl := NewController(svc, svc, r)
	if err := ctrl.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := <-polled; err != nil {
		t.Fatalf("Poll: %v", err)
	}

	// Later polls see no change; the view must already be current.
	if _, err := svc.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	ctrl.Close()

	if got := r.colorProfile.Selected(); got != "ACEScg" {
		t.Errorf("color profile = %q, want ACEScg", got)
	}
	if len(srv.Sets()) != 0 {
		t.Errorf("reconcile echoed to gateway: %+v", srv.Sets())
	}
}
