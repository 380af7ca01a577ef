// Package registry binds actions to deck inputs and runs the render loop.
package registry

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"github.com/bamarc/SpotifyForStreamController/internal/action"
	"github.com/bamarc/SpotifyForStreamController/internal/device"
)

// renderInterval paces the periodic key/strip redraw.
const renderInterval = 500 * time.Millisecond

// Registry owns the mapping from physical inputs to actions and drives the
// event and render loops.
type Registry struct {
	device device.Device

	keyActions  map[device.KeyID]action.Action
	dialActions map[device.DialID]action.DialBinding
	strip       action.StripRenderer

	// Actions that failed to initialize are skipped for events and renders.
	failed map[string]bool

	keyRect   image.Rectangle
	stripRect image.Rectangle

	// invalidate kicks an immediate redraw outside the ticker cadence.
	invalidate chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.RWMutex
}

// New creates a Registry for the given device.
func New(dev device.Device) *Registry {
	return &Registry{
		device:      dev,
		keyActions:  make(map[device.KeyID]action.Action),
		dialActions: make(map[device.DialID]action.DialBinding),
		failed:      make(map[string]bool),
		invalidate:  make(chan struct{}, 1),
	}
}

// BindKey assigns an action to a physical key. Must be called before Start.
func (r *Registry) BindKey(key device.KeyID, a action.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keyActions[key] = a
}

// BindDial assigns a dial binding to a rotary dial. Must be called before
// Start. The binding's key-action lifecycle is managed only if the action is
// also bound to a key; standalone dial actions must implement Action.
func (r *Registry) BindDial(dial device.DialID, b action.DialBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialActions[dial] = b
}

// BindStrip assigns the touch strip to a strip-rendering action. Must be
// called before Start.
func (r *Registry) BindStrip(s action.StripRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strip = s
}

// Invalidate requests an immediate redraw. Safe to call from any goroutine.
func (r *Registry) Invalidate() {
	select {
	case r.invalidate <- struct{}{}:
	default:
	}
}

// Start initializes all bound actions, registers device handlers, and runs
// the event and render loops until ctx is cancelled or the device drops.
func (r *Registry) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	keyRect, err := r.device.GetKeyImageRectangle()
	if err != nil {
		return err
	}
	r.keyRect = keyRect

	if r.device.GetTouchStripSupported() {
		if rect, err := r.device.GetTouchStripImageRectangle(); err == nil {
			r.stripRect = rect
		}
	}

	// Initialize actions, skipping those that fail
	for _, a := range r.actions() {
		if err := a.Init(r.ctx); err != nil {
			log.Printf("Action %s failed to initialize: %v (skipping)", a.ID(), err)
			r.failed[a.ID()] = true
		}
	}

	r.setupEventHandlers()

	listenErr := make(chan error, 1)
	go func() {
		if err := r.device.Listen(nil); err != nil {
			listenErr <- err
		}
		close(listenErr)
	}()

	r.wg.Add(1)
	go r.renderLoop()

	select {
	case <-r.ctx.Done():
		return nil
	case err := <-listenErr:
		return err
	}
}

// Stop shuts down all bound actions and the render loop.
func (r *Registry) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	for _, a := range r.actions() {
		a.Stop()
	}
	r.wg.Wait()
	return nil
}

// actions returns every distinct bound action, in stable iteration-safe form.
func (r *Registry) actions() []action.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []action.Action
	add := func(a action.Action) {
		if a == nil || seen[a.ID()] {
			return
		}
		seen[a.ID()] = true
		out = append(out, a)
	}

	for _, a := range r.keyActions {
		add(a)
	}
	for _, b := range r.dialActions {
		if a, ok := b.(action.Action); ok {
			add(a)
		}
	}
	if r.strip != nil {
		add(r.strip)
	}
	return out
}

// ok reports whether an action initialized successfully.
func (r *Registry) ok(a action.Action) bool {
	return a != nil && !r.failed[a.ID()]
}

// setupEventHandlers registers device event handlers routing to actions.
func (r *Registry) setupEventHandlers() {
	for keyID, a := range r.keyActions {
		act := a
		r.device.AddKeyHandler(keyID, func(d device.Device, k device.Key) error {
			if !r.ok(act) {
				return nil
			}
			if err := act.OnKeyDown(); err != nil {
				return err
			}
			held := k.WaitForRelease()
			err := act.OnKeyUp(held)
			r.Invalidate()
			return err
		})
	}

	for dialID, b := range r.dialActions {
		binding := b
		bound, isAction := b.(action.Action)
		r.device.AddDialRotateHandler(dialID, func(d device.Device, di device.Dial, delta int8) error {
			if isAction && !r.ok(bound) {
				return nil
			}
			err := binding.OnDialRotate(delta)
			r.Invalidate()
			return err
		})
		r.device.AddDialSwitchHandler(dialID, func(d device.Device, di device.Dial) error {
			if isAction && !r.ok(bound) {
				return nil
			}
			err := binding.OnDialPress()
			di.WaitForRelease()
			r.Invalidate()
			return err
		})
	}

	if r.strip != nil && r.device.GetTouchStripSupported() {
		r.device.AddTouchStripTouchHandler(func(d device.Device, touchType device.TouchStripTouchType, p image.Point) error {
			if !r.ok(r.strip) {
				return nil
			}
			err := r.strip.OnStripTap(p)
			r.Invalidate()
			return err
		})
	}
}

// renderLoop runs the periodic render cycle.
func (r *Registry) renderLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(renderInterval)
	defer ticker.Stop()

	r.renderKeys()
	r.renderStrip()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.renderKeys()
			r.renderStrip()
		case <-r.invalidate:
			r.renderKeys()
			r.renderStrip()
		}
	}
}

// renderKeys collects key images from bound actions and applies them.
func (r *Registry) renderKeys() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for keyID, a := range r.keyActions {
		if !r.ok(a) {
			continue
		}
		if img := a.Render(r.keyRect); img != nil {
			if err := r.device.SetKeyImage(keyID, img); err != nil {
				log.Printf("Setting key %d image: %v", keyID, err)
			}
		}
	}
}

// renderStrip draws the strip action's output.
func (r *Registry) renderStrip() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.strip == nil || r.stripRect.Empty() || !r.ok(r.strip) {
		return
	}
	if img := r.strip.RenderStrip(r.stripRect); img != nil {
		if err := r.device.SetTouchStripImage(img); err != nil {
			log.Printf("Setting touch strip image: %v", err)
		}
	}
}

// Device returns the underlying device. Actions can use this to query
// capabilities like key size.
func (r *Registry) Device() device.Device {
	return r.device
}
