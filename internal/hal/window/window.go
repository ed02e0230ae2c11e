// Package window runs the VM in an SDL2 window.
package window

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/kapitanov/chip8vm/internal/hal"
	"github.com/kapitanov/chip8vm/internal/vm"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	Width  = 1024
	Height = 512

	title      = "CHIP-8"
	soundTitle = "CHIP-8 ♪"

	bgColor = uint32(0x000000)
	fgColor = uint32(0xbea700)
)

type Window struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	pacer *hal.Pacer
}

func New(cfg hal.Config) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, Width, Height, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window", "width", Width, "height", Height)

	w := &Window{
		window:          window,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: vm.ScreenWidth * int(unsafe.Sizeof(uint32(0))),
		pacer:           hal.NewPacer(cfg),
	}

	w.renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		w.Shutdown()
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}

	if err := w.renderer.SetLogicalSize(Width, Height); err != nil {
		w.Shutdown()
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	w.texture, err = w.renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		w.Shutdown()
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	return w, nil
}

func (w *Window) Shutdown() {
	if w.texture != nil {
		if err := w.texture.Destroy(); err != nil {
			slog.Error("failed to destroy sdl texture", "err", err)
		}
	}

	if w.renderer != nil {
		if err := w.renderer.Destroy(); err != nil {
			slog.Error("failed to destroy sdl renderer", "err", err)
		}
	}

	if err := w.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

func (w *Window) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e := e.(type) {
		case *sdl.QuitEvent:
			slog.Debug("hal: exit requested")
			return hal.ErrQuit

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}

			if e.Type == sdl.KEYDOWN {
				switch e.Keysym.Scancode {
				case sdl.SCANCODE_ESCAPE:
					slog.Debug("hal: exit requested")
					return hal.ErrQuit
				case sdl.SCANCODE_BACKSPACE:
					slog.Debug("hal: reboot requested")
					return hal.ErrReboot
				}
			}

			key, ok := keyMap(e.Keysym.Scancode)
			if !ok {
				continue
			}

			if e.Type == sdl.KEYDOWN {
				keyDown(key)
			} else {
				keyUp(key)
			}
		}
	}

	return nil
}

// scancodeLayout places the keypad on physical key positions, so the
// 4x4 block keeps its shape on any keyboard layout. See hal.KeyForRune
// for the QWERTY picture.
var scancodeLayout = map[sdl.Scancode]vm.Key{
	sdl.SCANCODE_1: vm.Key1, sdl.SCANCODE_2: vm.Key2, sdl.SCANCODE_3: vm.Key3, sdl.SCANCODE_4: vm.KeyC,
	sdl.SCANCODE_Q: vm.Key4, sdl.SCANCODE_W: vm.Key5, sdl.SCANCODE_E: vm.Key6, sdl.SCANCODE_R: vm.KeyD,
	sdl.SCANCODE_A: vm.Key7, sdl.SCANCODE_S: vm.Key8, sdl.SCANCODE_D: vm.Key9, sdl.SCANCODE_F: vm.KeyE,
	sdl.SCANCODE_Z: vm.KeyA, sdl.SCANCODE_X: vm.Key0, sdl.SCANCODE_C: vm.KeyB, sdl.SCANCODE_V: vm.KeyF,
}

func keyMap(code sdl.Scancode) (vm.Key, bool) {
	key, ok := scancodeLayout[code]
	return key, ok
}

func (w *Window) Draw(display *vm.Display) error {
	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			color := bgColor
			if display.PixelAt(x, y) {
				color = fgColor
			}

			w.backBuffer[x+y*vm.ScreenWidth] = color
		}
	}

	backBufferPtr := unsafe.Pointer(&w.backBuffer[0])
	if err := w.texture.Update(nil, backBufferPtr, w.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	w.renderer.Present()
	return nil
}

// Sound shows a note in the title bar while the sound timer runs.
func (w *Window) Sound(playing bool) error {
	if playing {
		w.window.SetTitle(soundTitle)
	} else {
		w.window.SetTitle(title)
	}
	return nil
}

func (w *Window) WaitForNextFrame() error {
	w.pacer.Wait()
	return nil
}
