// Package emulator provides a windowed Stream Deck Plus stand-in so the
// daemon can be developed without hardware attached.
package emulator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/bamarc/SpotifyForStreamController/internal/device"
)

// Native resolutions match the real Stream Deck Plus.
const (
	keySize     = 72
	keyCount    = 8
	keysPerRow  = 4
	dialCount   = 4
	stripWidth  = 800
	stripHeight = 100
)

// Window layout: keys at 2x over the strip-width window, strip at native
// size, dials as circles below.
const (
	keyDisplay = 2 * keySize
	margin     = 20
	dialSize   = 110

	keyGap    = (stripWidth - keysPerRow*keyDisplay) / (keysPerRow + 1)
	keyAreaH  = 2*keyDisplay + keyGap
	dialGap   = (stripWidth - dialCount*dialSize) / (dialCount + 1)
	stripTop  = margin + keyAreaH + 40
	dialTop   = stripTop + stripHeight + 40
	windowW   = 2*margin + stripWidth
	windowH   = dialTop + dialSize + 40
	longPress = 500 * time.Millisecond
)

// Emulator implements device.Device on top of an Ebitengine window. Keys
// respond to mouse clicks, dials to the scroll wheel, and the touch strip
// to clicks (held clicks count as long touches).
type Emulator struct {
	mu sync.RWMutex

	open       bool
	brightness byte
	keys       [keyCount]*image.RGBA
	strip      *image.RGBA

	keyHandlers   [keyCount][]device.KeyHandler
	rotateHandler [dialCount][]device.DialRotateHandler
	switchHandler [dialCount][]device.DialSwitchHandler
	touchHandlers []device.TouchStripTouchHandler

	errCh      chan error
	stopCh     chan struct{}
	listenDone chan struct{}

	pressPoint image.Point
	pressTime  time.Time
	pressing   bool
}

// New creates an emulator with blank displays.
func New() *Emulator {
	e := &Emulator{
		brightness: 80,
		stopCh:     make(chan struct{}),
		strip:      image.NewRGBA(image.Rect(0, 0, stripWidth, stripHeight)),
	}
	for i := range e.keys {
		e.keys[i] = image.NewRGBA(image.Rect(0, 0, keySize, keySize))
	}
	return e
}

func (e *Emulator) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open {
		return fmt.Errorf("emulator: already open")
	}
	e.open = true
	e.stopCh = make(chan struct{})
	return nil
}

func (e *Emulator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return fmt.Errorf("emulator: not open")
	}
	e.open = false
	close(e.stopCh)
	return nil
}

func (e *Emulator) IsOpen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.open
}

func (e *Emulator) GetModelName() string        { return "Stream Deck Plus (Emulator)" }
func (e *Emulator) GetKeyCount() byte           { return keyCount }
func (e *Emulator) GetDialCount() byte          { return dialCount }
func (e *Emulator) GetTouchStripSupported() bool { return true }

func (e *Emulator) GetKeyImageRectangle() (image.Rectangle, error) {
	return image.Rect(0, 0, keySize, keySize), nil
}

func (e *Emulator) GetTouchStripImageRectangle() (image.Rectangle, error) {
	return image.Rect(0, 0, stripWidth, stripHeight), nil
}

func (e *Emulator) SetBrightness(perc byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brightness = perc
	return nil
}

func (e *Emulator) SetKeyImage(key device.KeyID, img image.Image) error {
	idx := int(key) - 1
	if idx < 0 || idx >= keyCount {
		return fmt.Errorf("emulator: invalid key ID %d", key)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, keySize, keySize))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	e.mu.Lock()
	e.keys[idx] = rgba
	e.mu.Unlock()
	return nil
}

func (e *Emulator) SetTouchStripImage(img image.Image) error {
	rgba := image.NewRGBA(image.Rect(0, 0, stripWidth, stripHeight))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	e.mu.Lock()
	e.strip = rgba
	e.mu.Unlock()
	return nil
}

func (e *Emulator) ClearKey(key device.KeyID) error {
	idx := int(key) - 1
	if idx < 0 || idx >= keyCount {
		return fmt.Errorf("emulator: invalid key ID %d", key)
	}
	e.mu.Lock()
	e.keys[idx] = image.NewRGBA(image.Rect(0, 0, keySize, keySize))
	e.mu.Unlock()
	return nil
}

func (e *Emulator) ForEachKey(cb func(device.KeyID) error) error {
	for k := device.KEY_1; k <= device.KEY_8; k++ {
		if err := cb(k); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) AddKeyHandler(key device.KeyID, fn device.KeyHandler) error {
	idx := int(key) - 1
	if idx < 0 || idx >= keyCount {
		return fmt.Errorf("emulator: invalid key ID %d", key)
	}
	e.mu.Lock()
	e.keyHandlers[idx] = append(e.keyHandlers[idx], fn)
	e.mu.Unlock()
	return nil
}

func (e *Emulator) AddDialRotateHandler(dial device.DialID, fn device.DialRotateHandler) error {
	idx := int(dial) - 1
	if idx < 0 || idx >= dialCount {
		return fmt.Errorf("emulator: invalid dial ID %d", dial)
	}
	e.mu.Lock()
	e.rotateHandler[idx] = append(e.rotateHandler[idx], fn)
	e.mu.Unlock()
	return nil
}

func (e *Emulator) AddDialSwitchHandler(dial device.DialID, fn device.DialSwitchHandler) error {
	idx := int(dial) - 1
	if idx < 0 || idx >= dialCount {
		return fmt.Errorf("emulator: invalid dial ID %d", dial)
	}
	e.mu.Lock()
	e.switchHandler[idx] = append(e.switchHandler[idx], fn)
	e.mu.Unlock()
	return nil
}

func (e *Emulator) AddTouchStripTouchHandler(fn device.TouchStripTouchHandler) error {
	e.mu.Lock()
	e.touchHandlers = append(e.touchHandlers, fn)
	e.mu.Unlock()
	return nil
}

// Listen blocks until the window is closed. The actual event loop runs in
// RunGUI, which must be called from the main goroutine.
func (e *Emulator) Listen(errCh chan error) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return fmt.Errorf("emulator: not open")
	}
	e.errCh = errCh
	if e.listenDone == nil {
		e.listenDone = make(chan struct{})
	}
	done := e.listenDone
	e.mu.Unlock()

	<-done
	return nil
}

// RunGUI runs the Ebitengine window loop. Must be called from the main
// goroutine; blocks until the window closes.
func (e *Emulator) RunGUI() error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return fmt.Errorf("emulator: not open")
	}
	if e.listenDone == nil {
		e.listenDone = make(chan struct{})
	}
	e.mu.Unlock()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("Spotify Deck Emulator")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	err := ebiten.RunGame(&gameLoop{emu: e})
	close(e.listenDone)
	return err
}

// report forwards a handler error to the listener channel if one is set.
func (e *Emulator) report(err error) {
	if err == nil || e.errCh == nil {
		return
	}
	select {
	case e.errCh <- err:
	default:
	}
}

// keyOrigin returns the top-left window coordinate of key index i.
func keyOrigin(i int) (int, int) {
	row, col := i/keysPerRow, i%keysPerRow
	x := margin + keyGap + col*(keyDisplay+keyGap)
	y := margin + row*(keyDisplay+keyGap)
	return x, y
}

// dialCenter returns the window-space center of dial index i.
func dialCenter(i int) (int, int) {
	x := margin + dialGap + i*(dialSize+dialGap) + dialSize/2
	y := dialTop + dialSize/2
	return x, y
}

// gameLoop implements ebiten.Game.
type gameLoop struct {
	emu *Emulator
}

func (g *gameLoop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowW, windowH
}

func (g *gameLoop) Update() error {
	select {
	case <-g.emu.stopCh:
		return ebiten.Termination
	default:
	}
	g.handleInput()
	return nil
}

func (g *gameLoop) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})

	g.emu.mu.RLock()
	defer g.emu.mu.RUnlock()

	scale := float32(g.emu.brightness) / 100

	for i := 0; i < keyCount; i++ {
		x, y := keyOrigin(i)
		fillRect(screen, x-2, y-2, keyDisplay+4, keyDisplay+4, color.RGBA{60, 60, 60, 255})

		img := ebiten.NewImageFromImage(g.emu.keys[i])
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(keyDisplay)/float64(keySize), float64(keyDisplay)/float64(keySize))
		op.GeoM.Translate(float64(x), float64(y))
		op.ColorScale.Scale(scale, scale, scale, 1)
		screen.DrawImage(img, op)
	}

	fillRect(screen, margin-2, stripTop-2, stripWidth+4, stripHeight+4, color.RGBA{60, 60, 60, 255})
	stripImg := ebiten.NewImageFromImage(g.emu.strip)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(margin, stripTop)
	op.ColorScale.Scale(scale, scale, scale, 1)
	screen.DrawImage(stripImg, op)

	for i := 0; i < dialCount; i++ {
		cx, cy := dialCenter(i)
		fillCircle(screen, cx, cy, dialSize/2, color.RGBA{80, 80, 80, 255})
		fillCircle(screen, cx, cy, dialSize/2-10, color.RGBA{50, 50, 50, 255})
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("D%d", i+1), cx-8, cy-4)
	}

	ebitenutil.DebugPrintAt(screen, "Click keys | Scroll over dials to rotate, click to press | Click the strip", 10, windowH-18)
}

func (g *gameLoop) handleInput() {
	mx, my := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		for i := 0; i < keyCount; i++ {
			x, y := keyOrigin(i)
			if mx >= x && mx < x+keyDisplay && my >= y && my < y+keyDisplay {
				g.fireKey(device.KeyID(i + 1))
				return
			}
		}

		for i := 0; i < dialCount; i++ {
			if g.overDial(i, mx, my) {
				g.fireDialPress(device.DialID(i + 1))
				return
			}
		}

		if mx >= margin && mx < margin+stripWidth && my >= stripTop && my < stripTop+stripHeight {
			g.emu.pressing = true
			g.emu.pressPoint = image.Point{X: mx - margin, Y: my - stripTop}
			g.emu.pressTime = time.Now()
		}
	}

	if g.emu.pressing && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.emu.pressing = false
		touchType := device.TOUCH_STRIP_TOUCH_TYPE_SHORT
		if time.Since(g.emu.pressTime) > longPress {
			touchType = device.TOUCH_STRIP_TOUCH_TYPE_LONG
		}
		g.fireStripTouch(touchType, g.emu.pressPoint)
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		for i := 0; i < dialCount; i++ {
			if g.overDial(i, mx, my) {
				delta := wheelY
				if delta > 5 {
					delta = 5
				} else if delta < -5 {
					delta = -5
				}
				g.fireDialRotate(device.DialID(i+1), int8(delta))
				break
			}
		}
	}
}

func (g *gameLoop) overDial(i, mx, my int) bool {
	cx, cy := dialCenter(i)
	dx, dy := mx-cx, my-cy
	r := dialSize / 2
	return dx*dx+dy*dy <= r*r
}

func (g *gameLoop) fireKey(id device.KeyID) {
	g.emu.mu.RLock()
	handlers := g.emu.keyHandlers[int(id)-1]
	g.emu.mu.RUnlock()

	for _, fn := range handlers {
		k := &emuKey{id: id, release: make(chan struct{})}
		go func(fn device.KeyHandler, k *emuKey) {
			g.emu.report(fn(g.emu, k))
		}(fn, k)

		// A click counts as a short press
		go func(k *emuKey) {
			time.Sleep(50 * time.Millisecond)
			k.releaseOnce.Do(func() { close(k.release) })
		}(k)
	}
}

func (g *gameLoop) fireDialPress(id device.DialID) {
	g.emu.mu.RLock()
	handlers := g.emu.switchHandler[int(id)-1]
	g.emu.mu.RUnlock()

	for _, fn := range handlers {
		d := &emuDial{id: id, release: make(chan struct{})}
		go func(fn device.DialSwitchHandler, d *emuDial) {
			g.emu.report(fn(g.emu, d))
		}(fn, d)

		go func(d *emuDial) {
			time.Sleep(50 * time.Millisecond)
			d.releaseOnce.Do(func() { close(d.release) })
		}(d)
	}
}

func (g *gameLoop) fireDialRotate(id device.DialID, delta int8) {
	g.emu.mu.RLock()
	handlers := g.emu.rotateHandler[int(id)-1]
	g.emu.mu.RUnlock()

	for _, fn := range handlers {
		d := &emuDial{id: id, release: make(chan struct{})}
		go func(fn device.DialRotateHandler, d *emuDial) {
			g.emu.report(fn(g.emu, d, delta))
		}(fn, d)
	}
}

func (g *gameLoop) fireStripTouch(touchType device.TouchStripTouchType, p image.Point) {
	g.emu.mu.RLock()
	handlers := g.emu.touchHandlers
	g.emu.mu.RUnlock()

	for _, fn := range handlers {
		go func(fn device.TouchStripTouchHandler) {
			g.emu.report(fn(g.emu, touchType, p))
		}(fn)
	}
}

// emuKey implements device.Key.
type emuKey struct {
	id          device.KeyID
	release     chan struct{}
	releaseOnce sync.Once
}

func (k *emuKey) GetID() device.KeyID { return k.id }

func (k *emuKey) WaitForRelease() time.Duration {
	start := time.Now()
	<-k.release
	return time.Since(start)
}

// emuDial implements device.Dial.
type emuDial struct {
	id          device.DialID
	release     chan struct{}
	releaseOnce sync.Once
}

func (d *emuDial) GetID() device.DialID { return d.id }

func (d *emuDial) WaitForRelease() time.Duration {
	start := time.Now()
	<-d.release
	return time.Since(start)
}

func fillRect(screen *ebiten.Image, x, y, w, h int, c color.Color) {
	rect := ebiten.NewImage(w, h)
	rect.Fill(c)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(rect, op)
}

func fillCircle(screen *ebiten.Image, cx, cy, radius int, c color.Color) {
	diameter := 2 * radius
	circle := ebiten.NewImage(diameter, diameter)

	r, g, b, a := c.RGBA()
	col := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	for y := 0; y < diameter; y++ {
		for x := 0; x < diameter; x++ {
			dx, dy := x-radius, y-radius
			if dx*dx+dy*dy <= radius*radius {
				circle.Set(x, y, col)
			}
		}
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(cx-radius), float64(cy-radius))
	screen.DrawImage(circle, op)
}
