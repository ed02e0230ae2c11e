// Package vm implements the CHIP-8 virtual machine: memory, registers, stack,
// timers, the framebuffer and the keypad, together with the
// fetch-decode-execute cycle that drives them.
package vm

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	FontStart       = uint16(0x050)
	InstructionSize = 2

	// MaxProgramSize is the number of bytes between ProgramStart and the end of memory.
	MaxProgramSize = MemorySize - int(ProgramStart)

	addressMask  = MemorySize - 1
	flagRegister = 0x0F
)

var (
	ErrProgramTooLarge    = errors.New("program too large")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
)

type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack [StackSize]uint16 // Stack
	sp    uint16            // Stack pointer, next free slot

	pc    uint16 // Program counter
	index uint16 // Index register

	delayTimer uint8 // Delay timer
	soundTimer uint8 // Sound timer

	display  Display
	keypad   Keypad
	drawFlag bool // Indicates the display changed since the host last rendered it

	rng *rand.Rand
}

// Option configures a VM at construction time.
type Option func(vm *VM)

// WithRandSource makes the random-byte instruction draw from src.
// Tests use it with a fixed seed to get reproducible programs.
func WithRandSource(src rand.Source) Option {
	return func(vm *VM) {
		vm.rng = rand.New(src)
	}
}

// New returns a VM in its power-on state with no program loaded.
func New(opts ...Option) *VM {
	vm := &VM{}
	for _, opt := range opts {
		opt(vm)
	}

	if vm.rng == nil {
		vm.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	vm.Reset()
	return vm
}

// Reset restores the power-on state: memory, registers, stack, timers,
// display and keypad are cleared, the font table is written at FontStart
// and the program counter points at ProgramStart.
func (vm *VM) Reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.sp = 0

	vm.stack = [StackSize]uint16{}
	vm.registers = [RegisterCount]uint8{}
	vm.memory = [MemorySize]uint8{}

	vm.display.clear()
	vm.keypad.reset()
	vm.drawFlag = true

	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", FontStart), "n", len(font))
	copy(vm.memory[FontStart:], font[:])

	vm.delayTimer = 0
	vm.soundTimer = 0
}

// Load resets the VM and copies program into memory at ProgramStart.
// Programs larger than MaxProgramSize are rejected with ErrProgramTooLarge,
// in which case the VM stays in its freshly reset state.
func (vm *VM) Load(program []byte) error {
	vm.Reset()

	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(vm.memory[ProgramStart:], program)
	return nil
}

// Step runs a single fetch-decode-execute cycle and then ticks both timers.
//
// If the instruction faults, the program counter is left at the faulting
// instruction, nothing else is modified and the timers do not tick.
func (vm *VM) Step() error {
	addr := vm.pc
	opcode := vm.fetchOpcode()
	vm.pc = (vm.pc + InstructionSize) & addressMask

	if err := vm.executeOpcode(opcode); err != nil {
		vm.pc = addr
		return fmt.Errorf("at 0x%04x: %w", addr, err)
	}

	if vm.delayTimer > 0 {
		vm.delayTimer--
	}

	if vm.soundTimer > 0 {
		vm.soundTimer--
	}

	return nil
}

// skip advances pc past the next instruction.
func (vm *VM) skip() {
	vm.pc = (vm.pc + InstructionSize) & addressMask
}

func (vm *VM) fetchOpcode() uint16 {
	hi := vm.read(vm.pc)
	lo := vm.read(vm.pc + 1)

	return uint16(hi)<<8 | uint16(lo) // Op code is two bytes, big-endian
}

// read and write wrap addresses into the 4k address space.
func (vm *VM) read(addr uint16) uint8 {
	return vm.memory[addr&addressMask]
}

func (vm *VM) write(addr uint16, v uint8) {
	vm.memory[addr&addressMask] = v
}

// Display returns the framebuffer.
func (vm *VM) Display() *Display { return &vm.display }

// Keypad returns the keypad the host writes key state into.
func (vm *VM) Keypad() *Keypad { return &vm.keypad }

// SoundTimer is nonzero while the host should be emitting a tone.
func (vm *VM) SoundTimer() uint8 { return vm.soundTimer }

func (vm *VM) DelayTimer() uint8 { return vm.delayTimer }

func (vm *VM) PC() uint16 { return vm.pc }

func (vm *VM) Index() uint16 { return vm.index }

func (vm *VM) SP() uint16 { return vm.sp }

// Register returns Vn. n is taken modulo RegisterCount.
func (vm *VM) Register(n int) uint8 { return vm.registers[n&(RegisterCount-1)] }

// DrawFlag reports whether the display changed since ClearDrawFlag was last called.
func (vm *VM) DrawFlag() bool { return vm.drawFlag }

func (vm *VM) ClearDrawFlag() { vm.drawFlag = false }
