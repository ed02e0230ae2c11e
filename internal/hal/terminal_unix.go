//go:build linux || darwin || freebsd || netbsd || openbsd

package hal

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kapitanov/chip8vm/internal/vm"
	"golang.org/x/sys/unix"
)

// Terminal runs the VM inside the controlling terminal: stdin in raw,
// non-blocking mode for keys and ANSI output for the display.
type Terminal struct {
	fd      int
	out     *os.File
	restore unix.Termios

	pacer *Pacer
	keys  keyState
	input [64]byte

	frame     bytes.Buffer
	pending   *vm.Display
	lastDrawn time.Time
}

func NewTerminal(cfg Config) (*Terminal, error) {
	fd := int(os.Stdin.Fd())

	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal attributes: %w", err)
	}

	raw := *termios
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8

	// Reads return immediately, with or without input.
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("failed to enter raw terminal mode: %w", err)
	}
	slog.Debug("hal: enter raw terminal mode")

	t := &Terminal{
		fd:      fd,
		out:     os.Stdout,
		restore: *termios,
		pacer:   NewPacer(cfg),
	}

	// Hide the cursor and clear the screen.
	if _, err := t.out.WriteString("\x1b[?25l\x1b[2J"); err != nil {
		t.Shutdown()
		return nil, fmt.Errorf("failed to prepare terminal: %w", err)
	}

	return t, nil
}

func (t *Terminal) Shutdown() {
	if _, err := t.out.WriteString("\x1b[?25h\x1b[0m\r\n"); err != nil {
		slog.Error("failed to reset terminal output", "err", err)
	}

	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.restore); err != nil {
		slog.Error("failed to restore terminal attributes", "err", err)
	}
}

func (t *Terminal) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	now := time.Now()

	for {
		n, err := unix.Read(t.fd, t.input[:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				break
			}
			return fmt.Errorf("failed to read terminal input: %w", err)
		}

		if n == 0 {
			break
		}

		if err := t.keys.feed(t.input[:n], now, keyDown); err != nil {
			return err
		}

		if n < len(t.input) {
			break
		}
	}

	t.keys.expire(now, keyUp)
	return nil
}

func (t *Terminal) Draw(display *vm.Display) error {
	t.pending = display
	return t.flush(time.Now())
}

func (t *Terminal) flush(now time.Time) error {
	if t.pending == nil || now.Sub(t.lastDrawn) < minRedrawInterval {
		return nil
	}

	t.frame.Reset()
	renderFrame(&t.frame, t.pending)
	if _, err := t.out.Write(t.frame.Bytes()); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	t.pending = nil
	t.lastDrawn = now
	return nil
}

// Sound rings the terminal bell when a tone starts.
func (t *Terminal) Sound(playing bool) error {
	if !playing {
		return nil
	}

	if _, err := t.out.WriteString("\a"); err != nil {
		return fmt.Errorf("failed to ring bell: %w", err)
	}
	return nil
}

func (t *Terminal) WaitForNextFrame() error {
	t.pacer.Wait()
	return t.flush(time.Now())
}
