package hal

import (
	"bytes"
	"time"

	"github.com/kapitanov/chip8vm/internal/vm"
)

// Terminals report characters, not key transitions. A key stays down for
// keyHold after its character arrives; auto-repeat keeps extending it.
const keyHold = time.Second / 5

// Terminal redraws are capped; the VM marks the display dirty far more often
// than a terminal can usefully repaint.
const minRedrawInterval = time.Second / 60

const (
	ctrlC     = 0x03
	backspace = 0x08
	del       = 0x7f
)

type keyState struct {
	releaseAt [vm.KeyCount]time.Time
}

// feed interprets characters read from the terminal.
func (s *keyState) feed(input []byte, now time.Time, keyDown func(vm.Key)) error {
	for _, b := range input {
		switch b {
		case ctrlC:
			return ErrQuit
		case backspace, del:
			return ErrReboot
		}

		key, ok := KeyForRune(rune(b))
		if !ok {
			continue
		}

		if s.releaseAt[key].IsZero() {
			keyDown(key)
		}
		s.releaseAt[key] = now.Add(keyHold)
	}

	return nil
}

// expire releases every key whose hold ran out by now.
func (s *keyState) expire(now time.Time, keyUp func(vm.Key)) {
	for i, at := range s.releaseAt {
		if at.IsZero() || now.Before(at) {
			continue
		}

		s.releaseAt[i] = time.Time{}
		keyUp(vm.Key(i))
	}
}

// renderFrame draws the display with half-block characters, two pixel rows
// per line of text, starting from the top-left corner of the terminal.
func renderFrame(buf *bytes.Buffer, d *vm.Display) {
	buf.WriteString("\x1b[H")

	for y := 0; y < d.Height(); y += 2 {
		for x := 0; x < d.Width(); x++ {
			top, bottom := d.PixelAt(x, y), d.PixelAt(x, y+1)

			switch {
			case top && bottom:
				buf.WriteRune('█')
			case top:
				buf.WriteRune('▀')
			case bottom:
				buf.WriteRune('▄')
			default:
				buf.WriteByte(' ')
			}
		}

		buf.WriteString("\r\n")
	}
}
