// Package backend owns the panel's state: it enumerates color spaces,
// input/outputs and cameras, persists selections through the Pixotope
// gateway, and pushes state-update events when the gateway's view changes.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"pixotope-settings-go/internal/events"
	"pixotope-settings-go/internal/types"
)

// Gateway is the subset of the Pixotope gateway the backend uses.
type Gateway interface {
	ColorSpace(ctx context.Context) (string, error)
	InputOutput(ctx context.Context) (string, error)
	Cameras(ctx context.Context) ([]string, error)
	SetColorSpace(ctx context.Context, name string) error
	SetInputOutput(ctx context.Context, id string) error
}

// ColorSpaceSource enumerates selectable color spaces.
type ColorSpaceSource interface {
	Load() ([]types.ColorSpaceEntry, error)
}

// DefaultInputOutputs is the fixed input/output table offered by Pixotope.
var DefaultInputOutputs = types.InputOutputs{
	{ID: "AJA", Label: "AJA"},
	{ID: "BMD", Label: "BMD"},
	{ID: "NDI", Label: "NDI"},
	{ID: "SRT", Label: "SRT"},
	{ID: "Webcam", Label: "Webcam"},
	{ID: "File", Label: "File (Experimental)"},
}

// Errors
var (
	ErrUnknownColorSpace  = errors.New("color space not found")
	ErrUnknownInputOutput = errors.New("input output not found")
)

// snapshot is the part of the state that can change under the panel.
type snapshot struct {
	colorSpace  string
	inputOutput string
	cameras     []string
}

// Service answers the panel's requests.
type Service struct {
	gateway      Gateway
	colorSpaces  ColorSpaceSource
	inputOutputs types.InputOutputs
	bus          *events.Bus

	mu       sync.Mutex
	names    map[string]bool
	baseline *snapshot
}

// NewService wires a service. bus receives state-update events.
func NewService(gw Gateway, colorSpaces ColorSpaceSource, bus *events.Bus) *Service {
	return &Service{
		gateway:      gw,
		colorSpaces:  colorSpaces,
		inputOutputs: DefaultInputOutputs,
		bus:          bus,
		names:        make(map[string]bool),
	}
}

// GetInitState enumerates everything the panel renders and records it as
// the baseline later polls are diffed against.
func (s *Service) GetInitState(ctx context.Context) (types.InitState, error) {
	spaces, err := s.colorSpaces.Load()
	if err != nil {
		return types.InitState{}, fmt.Errorf("load color spaces: %w", err)
	}

	cur, err := s.current(ctx)
	if err != nil {
		return types.InitState{}, err
	}

	names := make(map[string]bool, len(spaces))
	for _, sp := range spaces {
		names[sp.Name] = true
	}

	s.mu.Lock()
	s.names = names
	s.baseline = &cur
	s.mu.Unlock()

	log.Printf("[Backend] Init state: %d color spaces, color_space=%q, input_output=%q, %d cameras",
		len(spaces), cur.colorSpace, cur.inputOutput, len(cur.cameras))

	return types.InitState{
		ColorSpaces:  spaces,
		ColorSpace:   cur.colorSpace,
		InputOutputs: slices.Clone(s.inputOutputs),
		InputOutput:  cur.inputOutput,
		Cameras:      slices.Clone(cur.cameras),
	}, nil
}

// SetColorSpace persists name as the active color space. The name must be
// one returned by the last GetInitState.
func (s *Service) SetColorSpace(ctx context.Context, name string) error {
	s.mu.Lock()
	known := s.names[name]
	s.mu.Unlock()

	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownColorSpace, name)
	}
	return s.gateway.SetColorSpace(ctx, name)
}

// SetInputOutput persists id as the active input/output.
func (s *Service) SetInputOutput(ctx context.Context, id string) error {
	if !s.inputOutputs.Contains(id) {
		return fmt.Errorf("%w: %q", ErrUnknownInputOutput, id)
	}
	return s.gateway.SetInputOutput(ctx, id)
}

// SubscribeStateUpdates registers handler for state-update events and
// returns a function that removes it.
func (s *Service) SubscribeStateUpdates(handler func(types.StateUpdate)) (unsubscribe func()) {
	return s.bus.On(events.StateUpdate, func(e events.Event) {
		if u, ok := e.Data.(types.StateUpdate); ok {
			handler(u)
		}
	})
}

// Poll reads the gateway once, diffs it against the baseline and emits a
// state-update when something changed. Before GetInitState there is no
// baseline and Poll does nothing. While nobody subscribes to state-update the
// baseline stays put, so the first subscriber still receives the change.
func (s *Service) Poll(ctx context.Context) (types.StateUpdate, error) {
	s.mu.Lock()
	ready := s.baseline != nil
	s.mu.Unlock()
	if !ready {
		return types.StateUpdate{}, nil
	}

	cur, err := s.current(ctx)
	if err != nil {
		return types.StateUpdate{}, err
	}

	listening := s.bus.Count(events.StateUpdate) > 0

	s.mu.Lock()
	update := merge(*s.baseline, cur)
	if listening {
		s.baseline = &cur
	}
	s.mu.Unlock()

	if listening && !update.IsEmpty() {
		s.bus.Emit(events.StateUpdate, update)
	}
	return update, nil
}

func (s *Service) current(ctx context.Context) (snapshot, error) {
	cs, err := s.gateway.ColorSpace(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("read color space: %w", err)
	}
	io, err := s.gateway.InputOutput(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("read input output: %w", err)
	}
	cams, err := s.gateway.Cameras(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("read cameras: %w", err)
	}
	if cams == nil {
		cams = []string{}
	}
	return snapshot{colorSpace: cs, inputOutput: io, cameras: cams}, nil
}

// merge returns the fields of next that differ from prev.
func merge(prev, next snapshot) types.StateUpdate {
	var u types.StateUpdate
	if next.colorSpace != prev.colorSpace {
		u.CurrentColorSpace = types.String(next.colorSpace)
	}
	if next.inputOutput != prev.inputOutput {
		u.CurrentInputOutput = types.String(next.inputOutput)
	}
	if !slices.Equal(next.cameras, prev.cameras) {
		u.Cameras = slices.Clone(next.cameras)
	}
	return u
}
