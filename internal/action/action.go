// Package action defines the contract for deck actions. An action owns a
// single physical key: it renders the key's icon and reacts to presses.
package action

import (
	"context"
	"image"
	"time"
)

// Action is implemented by every key-bound behavior.
type Action interface {
	// ID returns a unique identifier for this action instance.
	ID() string

	// Init prepares the action. The context is used for cancellation and
	// lifecycle management.
	Init(ctx context.Context) error

	// Stop gracefully shuts down the action, releasing any resources.
	Stop() error

	// Render returns the image for the action's key, sized to bounds.
	// A nil return means the key should not be updated this cycle.
	Render(bounds image.Rectangle) image.Image

	// OnKeyDown is invoked when the key is pressed.
	OnKeyDown() error

	// OnKeyUp is invoked when the key is released, with the hold duration.
	OnKeyUp(held time.Duration) error
}

// DialBinding is implemented by actions that also take a rotary dial.
type DialBinding interface {
	// OnDialRotate is invoked on rotation; positive delta is clockwise.
	OnDialRotate(delta int8) error

	// OnDialPress is invoked when the dial is pressed.
	OnDialPress() error
}

// DialAction combines key-action lifecycle with dial input.
type DialAction interface {
	Action
	DialBinding
}

// StripRenderer is implemented by the action that owns the touch strip.
type StripRenderer interface {
	Action

	// RenderStrip returns the touch strip image, sized to bounds.
	// A nil return means the strip should not be updated this cycle.
	RenderStrip(bounds image.Rectangle) image.Image

	// OnStripTap is invoked when the strip is tapped at p.
	OnStripTap(p image.Point) error
}
