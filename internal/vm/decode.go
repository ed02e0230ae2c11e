package vm

// Op identifies a decoded instruction kind.
type Op uint8

const (
	OpUnknown Op = iota
	OpCls        // 00E0
	OpRts        // 00EE
	OpJmp        // 1NNN
	OpJsr        // 2NNN
	OpSkeqImm    // 3XNN
	OpSkneImm    // 4XNN
	OpSkeqReg    // 5XY0
	OpMovImm     // 6XNN
	OpAddImm     // 7XNN
	OpMovReg     // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpRsb        // 8XY7
	OpShl        // 8XYE
	OpSkneReg    // 9XY0
	OpMvi        // ANNN
	OpJmi        // BNNN
	OpRand       // CXNN
	OpSprite     // DXYN
	OpSkpr       // EX9E
	OpSkup       // EXA1
	OpGdelay     // FX07
	OpKey        // FX0A
	OpSdelay     // FX15
	OpSsound     // FX18
	OpAdi        // FX1E
	OpFont       // FX29
	OpBcd        // FX33
	OpStr        // FX55
	OpLdr        // FX65

	opCount
)

func (op Op) String() string {
	if op >= opCount {
		return instructions[OpUnknown].mnemonic
	}
	return instructions[op].mnemonic
}

// Instruction is a decoded opcode: its kind plus every operand field the
// encoding can carry. Handlers read only the fields their kind uses.
type Instruction struct {
	Op     Op
	Opcode uint16

	X   uint8  // register index, bits 8-11
	Y   uint8  // register index, bits 4-7
	N   uint8  // bits 0-3
	NN  uint8  // bits 0-7
	NNN uint16 // bits 0-11
}

// String disassembles the instruction, e.g. "add v1, v2".
func (in Instruction) String() string {
	if in.Op >= opCount {
		return instructions[OpUnknown].format(in)
	}
	return instructions[in.Op].format(in)
}

// Decode tables. The top nibble selects a family; families 0, 8, E and F
// share it between several instructions and are resolved by a second table
// keyed on the low nibble (8) or the low byte (0, E, F). Zero entries are
// OpUnknown.
var (
	familyOps = [16]Op{
		0x1: OpJmp,
		0x2: OpJsr,
		0x3: OpSkeqImm,
		0x4: OpSkneImm,
		0x5: OpSkeqReg,
		0x6: OpMovImm,
		0x7: OpAddImm,
		0x9: OpSkneReg,
		0xA: OpMvi,
		0xB: OpJmi,
		0xC: OpRand,
		0xD: OpSprite,
	}

	family0Ops = [256]Op{
		0xE0: OpCls,
		0xEE: OpRts,
	}

	family8Ops = [16]Op{
		0x0: OpMovReg,
		0x1: OpOr,
		0x2: OpAnd,
		0x3: OpXor,
		0x4: OpAddReg,
		0x5: OpSub,
		0x6: OpShr,
		0x7: OpRsb,
		0xE: OpShl,
	}

	familyEOps = [256]Op{
		0x9E: OpSkpr,
		0xA1: OpSkup,
	}

	familyFOps = [256]Op{
		0x07: OpGdelay,
		0x0A: OpKey,
		0x15: OpSdelay,
		0x18: OpSsound,
		0x1E: OpAdi,
		0x29: OpFont,
		0x33: OpBcd,
		0x55: OpStr,
		0x65: OpLdr,
	}
)

// Decode splits opcode into its operand fields and resolves its kind.
// Encodings with no CHIP-8 meaning, including the machine-code call 0NNN,
// decode to OpUnknown.
func Decode(opcode uint16) Instruction {
	in := Instruction{
		Opcode: opcode,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}

	switch family := opcode >> 12; family {
	case 0x0:
		if in.X == 0 {
			in.Op = family0Ops[in.NN]
		}
	case 0x5, 0x9:
		// 5XY0 and 9XY0 reserve the low nibble
		if in.N == 0 {
			in.Op = familyOps[family]
		}
	case 0x8:
		in.Op = family8Ops[in.N]
	case 0xE:
		in.Op = familyEOps[in.NN]
	case 0xF:
		in.Op = familyFOps[in.NN]
	default:
		in.Op = familyOps[family]
	}

	return in
}
