package ui

import (
	"context"
	"fmt"
	"log"
	"sync"

	"pixotope-settings-go/internal/types"
)

// Client is the request/response side of the backend.
type Client interface {
	GetInitState(ctx context.Context) (types.InitState, error)
	SetColorSpace(ctx context.Context, name string) error
	SetInputOutput(ctx context.Context, id string) error
}

// EventSource is the push side of the backend.
type EventSource interface {
	SubscribeStateUpdates(handler func(types.StateUpdate)) (unsubscribe func())
}

// Option is one entry of a selector.
type Option struct {
	Value string
	Label string
}

// Selector is a single-choice dropdown.
//
// SetSelected with a value that is not among the options leaves the selector
// blank. Programmatic changes never reach the OnChanged handler; it fires
// for user selections only.
type Selector interface {
	SetOptions(options []Option)
	Selected() string
	SetSelected(value string)
	OnChanged(handler func(value string))
}

// List is an ordered, read-only list of labels.
type List interface {
	SetItems(items []string)
}

// Renderer owns the three mount points of the panel.
type Renderer interface {
	ColorProfile() Selector
	InputOutput() Selector
	Cameras() List
	// Mount makes the built fragments visible.
	Mount()
}

// Errors
var (
	ErrAlreadyInitialized = fmt.Errorf("ui: controller already initialized")
)

// Controller mirrors backend state into a Renderer and forwards user
// selections back. Handlers run one at a time.
type Controller struct {
	client Client
	events EventSource
	view   Renderer

	mu          sync.Mutex
	starting    bool
	initialized bool
	unsubscribe func()
	queued      []types.StateUpdate

	pending sync.WaitGroup
}

// NewController creates a controller. Nothing is fetched or rendered until
// Initialize.
func NewController(client Client, events EventSource, view Renderer) *Controller {
	return &Controller{
		client: client,
		events: events,
		view:   view,
	}
}

// Initialize fetches the initial state, builds and mounts the three
// fragments, then applies state updates. The subscription is taken before
// the fetch; updates that arrive before Mount are queued and applied right
// after it. A failed fetch unsubscribes and leaves the view untouched.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized || c.starting {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.starting = true
	c.queued = nil
	c.mu.Unlock()

	unsubscribe := c.events.SubscribeStateUpdates(c.Reconcile)

	state, err := c.client.GetInitState(ctx)
	if err != nil {
		unsubscribe()
		c.mu.Lock()
		c.starting = false
		c.queued = nil
		c.mu.Unlock()
		log.Printf("[UI] ERROR: get_init_state failed: %v", err)
		return fmt.Errorf("get init state: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.buildColorProfile(state)
	c.buildInputOutput(state)
	c.buildCameras(state)
	c.view.Mount()

	c.unsubscribe = unsubscribe
	c.starting = false
	c.initialized = true

	queued := c.queued
	c.queued = nil
	for _, u := range queued {
		c.apply(u)
	}

	log.Printf("[UI] Initialized: %d color spaces, %d input/outputs, %d cameras (%d queued updates)",
		len(state.ColorSpaces), len(state.InputOutputs), len(state.Cameras), len(queued))
	return nil
}

func (c *Controller) buildColorProfile(state types.InitState) {
	options := make([]Option, len(state.ColorSpaces))
	for i, sp := range state.ColorSpaces {
		options[i] = Option{Value: sp.Name, Label: sp.Label()}
	}

	sel := c.view.ColorProfile()
	sel.SetOptions(options)
	selectInitial(sel, options, state.ColorSpace)
	sel.OnChanged(func(value string) {
		c.dispatch("set_color_space", func(ctx context.Context) error {
			return c.client.SetColorSpace(ctx, value)
		})
	})
}

func (c *Controller) buildInputOutput(state types.InitState) {
	options := make([]Option, len(state.InputOutputs))
	for i, io := range state.InputOutputs {
		options[i] = Option{Value: io.ID, Label: io.Label}
	}

	sel := c.view.InputOutput()
	sel.SetOptions(options)
	selectInitial(sel, options, state.InputOutput)
	sel.OnChanged(func(value string) {
		c.dispatch("set_input_output", func(ctx context.Context) error {
			return c.client.SetInputOutput(ctx, value)
		})
	})
}

func (c *Controller) buildCameras(state types.InitState) {
	items := make([]string, len(state.Cameras))
	copy(items, state.Cameras)
	c.view.Cameras().SetItems(items)
}

// selectInitial selects want when it is one of options, otherwise the first
// option.
func selectInitial(sel Selector, options []Option, want string) {
	if want != "" {
		for _, o := range options {
			if o.Value == want {
				sel.SetSelected(want)
				return
			}
		}
	}
	if len(options) > 0 {
		sel.SetSelected(options[0].Value)
	}
}

// dispatch sends a user selection to the backend without waiting for it.
// Failures are logged and otherwise ignored: the selector already shows the
// chosen value and the next state-update corrects it if the backend refused.
func (c *Controller) dispatch(op string, call func(ctx context.Context) error) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := call(context.Background()); err != nil {
			log.Printf("[UI] WARNING: %s failed: %v", op, err)
		}
	}()
}

// Reconcile applies a state update. Each field is handled on its own and
// absent fields are left alone. Selectors are only written when the pushed
// value differs from the displayed one, and cameras are replaced wholesale.
// Updates received while Initialize is still building are queued.
func (c *Controller) Reconcile(u types.StateUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		if c.starting {
			c.queued = append(c.queued, u.Clone())
		}
		return
	}
	c.apply(u)
}

func (c *Controller) apply(u types.StateUpdate) {
	if u.CurrentColorSpace != nil {
		syncSelector(c.view.ColorProfile(), *u.CurrentColorSpace)
	}
	if u.CurrentInputOutput != nil {
		syncSelector(c.view.InputOutput(), *u.CurrentInputOutput)
	}
	if u.Cameras != nil {
		items := make([]string, len(u.Cameras))
		copy(items, u.Cameras)
		c.view.Cameras().SetItems(items)
	}
}

func syncSelector(sel Selector, value string) {
	if sel.Selected() != value {
		sel.SetSelected(value)
	}
}

// Close stops listening for updates and waits for in-flight selections to
// reach the backend.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.pending.Wait()
}
