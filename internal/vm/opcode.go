package vm

import (
	"context"
	"fmt"
	"log/slog"
)

func (vm *VM) executeOpcode(opcode uint16) error {
	in := Decode(opcode)

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug(
			"exec",
			"pc", fmt.Sprintf("0x%04x", (vm.pc-InstructionSize)&addressMask),
			"opcode", fmt.Sprintf("0x%04x", opcode),
			"instr", in.String(),
		)
	}

	return instructions[in.Op].execute(vm, in)
}

type instruction struct {
	mnemonic string
	format   func(in Instruction) string
	execute  func(vm *VM, in Instruction) error
}

// instructions maps every Op to its handler. It is built once and never
// modified.
var instructions = [opCount]instruction{
	OpUnknown: unknownInstruction,
	OpCls:     clsInstruction,
	OpRts:     rtsInstruction,
	OpJmp:     jmpInstruction,
	OpJsr:     jsrInstruction,
	OpSkeqImm: skeq1Instruction,
	OpSkneImm: skne1Instruction,
	OpSkeqReg: skeq2Instruction,
	OpMovImm:  mov1Instruction,
	OpAddImm:  add1Instruction,
	OpMovReg:  mov2Instruction,
	OpOr:      orInstruction,
	OpAnd:     andInstruction,
	OpXor:     xorInstruction,
	OpAddReg:  add2Instruction,
	OpSub:     subInstruction,
	OpShr:     shrInstruction,
	OpRsb:     rsbInstruction,
	OpShl:     shlInstruction,
	OpSkneReg: skne2Instruction,
	OpMvi:     mviInstruction,
	OpJmi:     jmiInstruction,
	OpRand:    randInstruction,
	OpSprite:  spriteInstruction,
	OpSkpr:    skprInstruction,
	OpSkup:    skupInstruction,
	OpGdelay:  gdelayInstruction,
	OpKey:     keyInstruction,
	OpSdelay:  sdelayInstruction,
	OpSsound:  ssoundInstruction,
	OpAdi:     adiInstruction,
	OpFont:    fontInstruction,
	OpBcd:     bcdInstruction,
	OpStr:     strInstruction,
	OpLdr:     ldrInstruction,
}

// By the time a handler runs, pc already points at the next instruction.
// Skips add one more InstructionSize on top of that.

var (
	// 00E0	cls	Clear the screen
	clsInstruction = instruction{
		mnemonic: "cls",
		format: func(in Instruction) string {
			return "cls"
		},
		execute: func(vm *VM, in Instruction) error {
			vm.display.clear()
			vm.drawFlag = true
			return nil
		},
	}

	// 00EE	rts	return from subroutine call
	rtsInstruction = instruction{
		mnemonic: "rts",
		format: func(in Instruction) string {
			return "rts"
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.sp == 0 {
				return ErrStackUnderflow
			}

			vm.sp--
			vm.pc = vm.stack[vm.sp]
			return nil
		},
	}

	// 1xxx	jmp xxx	jump to address xxx
	jmpInstruction = instruction{
		mnemonic: "jmp",
		format: func(in Instruction) string {
			return fmt.Sprintf("jmp 0x%03x", in.NNN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.pc = in.NNN
			return nil
		},
	}

	// 2xxx	jsr xxx	jump to subroutine at address xxx
	jsrInstruction = instruction{
		mnemonic: "jsr",
		format: func(in Instruction) string {
			return fmt.Sprintf("jsr 0x%03x", in.NNN)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.sp >= StackSize {
				return ErrStackOverflow
			}

			vm.stack[vm.sp] = vm.pc
			vm.sp++
			vm.pc = in.NNN
			return nil
		},
	}

	// 3rxx	skeq vr,xx	skip if register r = constant
	skeq1Instruction = instruction{
		mnemonic: "skeq",
		format: func(in Instruction) string {
			return fmt.Sprintf("skeq v%x, %d", in.X, in.NN)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.registers[in.X] == in.NN {
				vm.skip()
			}
			return nil
		},
	}

	// 4rxx	skne vr,xx	skip if register r <> constant
	skne1Instruction = instruction{
		mnemonic: "skne",
		format: func(in Instruction) string {
			return fmt.Sprintf("skne v%x, %d", in.X, in.NN)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.registers[in.X] != in.NN {
				vm.skip()
			}
			return nil
		},
	}

	// 5ry0	skeq vr,vy	skip if register r = register y
	skeq2Instruction = instruction{
		mnemonic: "skeq",
		format: func(in Instruction) string {
			return fmt.Sprintf("skeq v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.registers[in.X] == vm.registers[in.Y] {
				vm.skip()
			}
			return nil
		},
	}

	// 6rxx	mov vr,xx	move constant to register r
	mov1Instruction = instruction{
		mnemonic: "mov",
		format: func(in Instruction) string {
			return fmt.Sprintf("mov v%x, %d", in.X, in.NN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] = in.NN
			return nil
		},
	}

	// 7rxx	add vr,xx	add constant to register r	No carry generated
	add1Instruction = instruction{
		mnemonic: "add",
		format: func(in Instruction) string {
			return fmt.Sprintf("add v%x, %d", in.X, in.NN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] += in.NN
			return nil
		},
	}

	// 8ry0	mov vr,vy	move register vy into vr
	mov2Instruction = instruction{
		mnemonic: "mov",
		format: func(in Instruction) string {
			return fmt.Sprintf("mov v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] = vm.registers[in.Y]
			return nil
		},
	}

	// 8ry1	or rx,ry	or register vy into register vx
	orInstruction = instruction{
		mnemonic: "or",
		format: func(in Instruction) string {
			return fmt.Sprintf("or v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] |= vm.registers[in.Y]
			return nil
		},
	}

	// 8ry2	and rx,ry	and register vy into register vx
	andInstruction = instruction{
		mnemonic: "and",
		format: func(in Instruction) string {
			return fmt.Sprintf("and v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] &= vm.registers[in.Y]
			return nil
		},
	}

	// 8ry3	xor rx,ry	exclusive or register ry into register rx
	xorInstruction = instruction{
		mnemonic: "xor",
		format: func(in Instruction) string {
			return fmt.Sprintf("xor v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] ^= vm.registers[in.Y]
			return nil
		},
	}

	// The flag-setting arithmetic below writes vf first and vr second, so
	// with r = f the result, not the flag, is what remains in vf.

	// 8ry4	add vr,vy	add register vy to vr,carry in vf
	add2Instruction = instruction{
		mnemonic: "add",
		format: func(in Instruction) string {
			return fmt.Sprintf("add v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			sum := uint16(vm.registers[in.X]) + uint16(vm.registers[in.Y])

			vm.registers[flagRegister] = boolToFlag(sum > 0xFF)
			vm.registers[in.X] = uint8(sum)
			return nil
		},
	}

	// 8ry5	sub vr,vy	subtract register vy from vr, vf set to 0 if it borrows
	subInstruction = instruction{
		mnemonic: "sub",
		format: func(in Instruction) string {
			return fmt.Sprintf("sub v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			x, y := vm.registers[in.X], vm.registers[in.Y]

			vm.registers[flagRegister] = boolToFlag(x > y)
			vm.registers[in.X] = x - y
			return nil
		},
	}

	// 8r06	shr vr	shift register vr right, bit 0 goes into register vf
	shrInstruction = instruction{
		mnemonic: "shr",
		format: func(in Instruction) string {
			return fmt.Sprintf("shr v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			x := vm.registers[in.X]

			vm.registers[flagRegister] = x & 0x01
			vm.registers[in.X] = x >> 1
			return nil
		},
	}

	// 8ry7	rsb vr,vy	subtract register vr from register vy, result in vr, vf set to 0 if it borrows
	rsbInstruction = instruction{
		mnemonic: "rsb",
		format: func(in Instruction) string {
			return fmt.Sprintf("rsb v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			x, y := vm.registers[in.X], vm.registers[in.Y]

			vm.registers[flagRegister] = boolToFlag(y > x)
			vm.registers[in.X] = y - x
			return nil
		},
	}

	// 8r0e	shl vr	shift register vr left, bit 7 goes into register vf
	shlInstruction = instruction{
		mnemonic: "shl",
		format: func(in Instruction) string {
			return fmt.Sprintf("shl v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			x := vm.registers[in.X]

			vm.registers[flagRegister] = x >> 7
			vm.registers[in.X] = x << 1
			return nil
		},
	}

	// 9ry0	skne vr,vy	skip if register r <> register y
	skne2Instruction = instruction{
		mnemonic: "skne",
		format: func(in Instruction) string {
			return fmt.Sprintf("skne v%x, v%x", in.X, in.Y)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.registers[in.X] != vm.registers[in.Y] {
				vm.skip()
			}
			return nil
		},
	}

	// axxx	mvi xxx	Load index register with constant xxx
	mviInstruction = instruction{
		mnemonic: "mvi",
		format: func(in Instruction) string {
			return fmt.Sprintf("mvi 0x%03x", in.NNN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.index = in.NNN
			return nil
		},
	}

	// bxxx	jmi xxx	Jump to address xxx+register v0
	jmiInstruction = instruction{
		mnemonic: "jmi",
		format: func(in Instruction) string {
			return fmt.Sprintf("jmi 0x%03x", in.NNN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.pc = (in.NNN + uint16(vm.registers[0])) & addressMask
			return nil
		},
	}

	// crxx	rand vr,xx	vr = random byte AND xx
	randInstruction = instruction{
		mnemonic: "rand",
		format: func(in Instruction) string {
			return fmt.Sprintf("rand v%x, 0x%02x", in.X, in.NN)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] = uint8(vm.rng.IntN(256)) & in.NN
			return nil
		},
	}

	// drys	sprite rx,ry,s	Draw sprite at screen location rx,ry height s
	// Sprites stored in memory at location in index register, 8 bits wide.
	// Wraps around the screen.
	// If when drawn, clears a pixel, vf is set to 1 otherwise it is zero.
	// All drawing is xor drawing (e.g. it toggles the screen pixels)
	spriteInstruction = instruction{
		mnemonic: "sprite",
		format: func(in Instruction) string {
			return fmt.Sprintf("sprite v%x, v%x, %d", in.X, in.Y, in.N)
		},
		execute: func(vm *VM, in Instruction) error {
			xLocation := int(vm.registers[in.X]) % ScreenWidth
			yLocation := int(vm.registers[in.Y]) % ScreenHeight

			vm.registers[flagRegister] = 0

			for y := 0; y < int(in.N); y++ {
				row := vm.read(vm.index + uint16(y))

				const width = 8
				for x := 0; x < width; x++ {
					if row&(0x80>>x) == 0 {
						continue
					}

					if vm.display.flip(xLocation+x, yLocation+y) {
						vm.registers[flagRegister] = 1
					}
				}
			}

			vm.drawFlag = true
			return nil
		},
	}

	// ek9e	skpr k	skip if key (register rk) pressed
	skprInstruction = instruction{
		mnemonic: "skpr",
		format: func(in Instruction) string {
			return fmt.Sprintf("skpr v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			if vm.keypad.IsKeyDown(Key(vm.registers[in.X])) {
				vm.skip()
			}
			return nil
		},
	}

	// eka1	skup k	skip if key (register rk) not pressed
	skupInstruction = instruction{
		mnemonic: "skup",
		format: func(in Instruction) string {
			return fmt.Sprintf("skup v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			if !vm.keypad.IsKeyDown(Key(vm.registers[in.X])) {
				vm.skip()
			}
			return nil
		},
	}

	// fr07	gdelay vr	get delay timer into vr
	gdelayInstruction = instruction{
		mnemonic: "gdelay",
		format: func(in Instruction) string {
			return fmt.Sprintf("gdelay v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.registers[in.X] = vm.delayTimer
			return nil
		},
	}

	// fr0a	key vr	wait for keypress, put key in register vr
	// Waiting re-executes the instruction on every cycle until a key is down.
	keyInstruction = instruction{
		mnemonic: "key",
		format: func(in Instruction) string {
			return fmt.Sprintf("key v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			key, ok := vm.keypad.lowestDown()
			if !ok {
				vm.pc = (vm.pc - InstructionSize) & addressMask
				return nil
			}

			vm.registers[in.X] = uint8(key)
			return nil
		},
	}

	// fr15	sdelay vr	set the delay timer to vr
	sdelayInstruction = instruction{
		mnemonic: "sdelay",
		format: func(in Instruction) string {
			return fmt.Sprintf("sdelay v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.delayTimer = vm.registers[in.X]
			return nil
		},
	}

	// fr18	ssound vr	set the sound timer to vr
	ssoundInstruction = instruction{
		mnemonic: "ssound",
		format: func(in Instruction) string {
			return fmt.Sprintf("ssound v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.soundTimer = vm.registers[in.X]
			return nil
		},
	}

	// fr1e	adi vr	add register vr to the index register, vf untouched
	adiInstruction = instruction{
		mnemonic: "adi",
		format: func(in Instruction) string {
			return fmt.Sprintf("adi v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.index += uint16(vm.registers[in.X])
			return nil
		},
	}

	// fr29	font vr	point I to the sprite for hexadecimal character in vr
	fontInstruction = instruction{
		mnemonic: "font",
		format: func(in Instruction) string {
			return fmt.Sprintf("font v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			vm.index = FontStart + FontGlyphSize*uint16(vm.registers[in.X])
			return nil
		},
	}

	// fr33	bcd vr	store the bcd representation of register vr at location I,I+1,I+2	Doesn't change I
	bcdInstruction = instruction{
		mnemonic: "bcd",
		format: func(in Instruction) string {
			return fmt.Sprintf("bcd v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			x := vm.registers[in.X]

			vm.write(vm.index, x/100)
			vm.write(vm.index+1, (x/10)%10)
			vm.write(vm.index+2, x%10)
			return nil
		},
	}

	// fr55	str v0-vr	store registers v0-vr at location I onwards	Doesn't change I
	strInstruction = instruction{
		mnemonic: "str",
		format: func(in Instruction) string {
			return fmt.Sprintf("str v0-v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			for i := uint16(0); i <= uint16(in.X); i++ {
				vm.write(vm.index+i, vm.registers[i])
			}
			return nil
		},
	}

	// fr65	ldr v0-vr	load registers v0-vr from location I onwards	Doesn't change I
	ldrInstruction = instruction{
		mnemonic: "ldr",
		format: func(in Instruction) string {
			return fmt.Sprintf("ldr v0-v%x", in.X)
		},
		execute: func(vm *VM, in Instruction) error {
			for i := uint16(0); i <= uint16(in.X); i++ {
				vm.registers[i] = vm.read(vm.index + i)
			}
			return nil
		},
	}

	unknownInstruction = instruction{
		mnemonic: "unknown",
		format: func(in Instruction) string {
			return fmt.Sprintf("unknown 0x%04X", in.Opcode)
		},
		execute: func(vm *VM, in Instruction) error {
			return fmt.Errorf("%w 0x%04X", ErrUnknownInstruction, in.Opcode)
		},
	}
)

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
