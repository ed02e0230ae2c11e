package vm

import (
	"errors"
	"log/slog"
)

var (
	errInfiniteLoop = errors.New("infinite loop")
)

// HAL is the host the VM runs on: it renders the display, reports key
// transitions, signals sound and paces cycles.
type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(display *Display) error
	Sound(playing bool) error
	WaitForNextFrame() error
}

// Run drives the loaded program on hal until hal or the program returns
// an error. A program that jumps to itself has finished; Run then keeps
// servicing input so the host can still reboot or quit. Sound is always
// off when Run returns.
func (vm *VM) Run(hal HAL) error {
	r := runner{vm: vm, hal: hal}

	err := r.run()
	if soundErr := r.setSound(false); soundErr != nil {
		return errors.Join(err, soundErr)
	}
	return err
}

func (r *runner) run() error {
	for {
		err := r.runStep()
		if err != nil {
			if errors.Is(err, errInfiniteLoop) {
				slog.Info("program looped")
				return r.waitForReboot()
			}

			return err
		}
	}
}

type runner struct {
	vm       *VM
	hal      HAL
	sounding bool
}

func (r *runner) runStep() error {
	vm := r.vm

	pc := vm.pc
	in := Decode(vm.fetchOpcode())

	if err := vm.Step(); err != nil {
		return err
	}

	if vm.drawFlag {
		if err := r.hal.Draw(&vm.display); err != nil {
			return err
		}
		vm.drawFlag = false
	}

	if err := r.setSound(vm.soundTimer > 0); err != nil {
		return err
	}

	if err := r.hal.ReadInput(vm.keypad.Press, vm.keypad.Release); err != nil {
		return err
	}

	if err := r.hal.WaitForNextFrame(); err != nil {
		return err
	}

	if in.Op == OpJmp && in.NNN == pc {
		return errInfiniteLoop
	}

	return nil
}

func (r *runner) setSound(playing bool) error {
	if playing == r.sounding {
		return nil
	}

	r.sounding = playing
	return r.hal.Sound(playing)
}

func (r *runner) waitForReboot() error {
	if err := r.setSound(false); err != nil {
		return err
	}

	for {
		if err := r.hal.WaitForNextFrame(); err != nil {
			return err
		}

		if err := r.hal.ReadInput(func(_ Key) {}, func(_ Key) {}); err != nil {
			return err
		}
	}
}
