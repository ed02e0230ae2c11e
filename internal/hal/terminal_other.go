//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package hal

import (
	"errors"

	"github.com/kapitanov/chip8vm/internal/vm"
)

var errNoTerminal = errors.New("terminal backend is not supported on this platform")

type Terminal struct{}

func NewTerminal(_ Config) (*Terminal, error) {
	return nil, errNoTerminal
}

func (t *Terminal) Shutdown() {}

func (t *Terminal) ReadInput(_ func(vm.Key), _ func(vm.Key)) error { return errNoTerminal }

func (t *Terminal) Draw(_ *vm.Display) error { return errNoTerminal }

func (t *Terminal) Sound(_ bool) error { return errNoTerminal }

func (t *Terminal) WaitForNextFrame() error { return errNoTerminal }
