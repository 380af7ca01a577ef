package action

import (
	"context"
	"image"
	"time"
)

// Base provides default no-op implementations of the Action interface.
// Embed this in action implementations to only override the methods needed.
type Base struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBase creates a Base with the given ID.
func NewBase(id string) Base {
	return Base{id: id}
}

// ID returns the action's identifier.
func (b *Base) ID() string {
	return b.id
}

// Init stores the context for the action. Override this to perform
// action-specific initialization, but call the base implementation to
// ensure the context is properly stored.
func (b *Base) Init(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)
	return nil
}

// Stop cancels the action's context. Override this to perform
// action-specific cleanup, but call the base implementation to ensure
// the context is cancelled.
func (b *Base) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}
	return nil
}

// Render returns nil by default (no key update).
func (b *Base) Render(bounds image.Rectangle) image.Image {
	return nil
}

// OnKeyDown is a no-op by default.
func (b *Base) OnKeyDown() error {
	return nil
}

// OnKeyUp is a no-op by default.
func (b *Base) OnKeyUp(held time.Duration) error {
	return nil
}

// Context returns the action's context.
func (b *Base) Context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}
