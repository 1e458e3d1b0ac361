package mos6502

import "fmt"

// Op represents a 6502 opcode.
type Op byte

// Inst returns the instruction performed by the opcode,
// or ILL if the opcode is not a documented NMOS 6502 instruction.
func (o Op) Inst() Inst { return opTable[o].inst }

// Mode returns the addressing mode of the opcode.
func (o Op) Mode() Mode { return opTable[o].mode }

// Size returns the length in bytes of the instruction including operands.
func (o Op) Size() int { return o.Mode().Size() }

func (o Op) String() string {
	if o.Inst() == ILL {
		return fmt.Sprintf("???(%.2x)", byte(o))
	}
	return o.Inst().String()
}

// Mode is a 6502 addressing mode.
type Mode byte

const (
	Implied Mode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX
	IndirectY
	Relative
)

// Size returns the length of an instruction using the addressing mode.
func (m Mode) Size() int {
	switch m {
	case Implied, Accumulator:
		return 1
	case Absolute, AbsoluteX, AbsoluteY, Indirect:
		return 3
	default:
		return 2
	}
}

// Inst is a 6502 instruction, independent of addressing mode.
type Inst byte

const (
	ILL Inst = iota
	ADC
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA
)

var instNames = [...]string{
	ILL: "???",
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL", BRK: "BRK", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR",
	INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA", PHA: "PHA",
	PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL", ROR: "ROR", RTI: "RTI",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA",
}

func (i Inst) String() string {
	if int(i) < len(instNames) {
		return instNames[i]
	}
	return fmt.Sprintf("Inst(%d)", byte(i))
}

type opInfo struct {
	inst Inst
	mode Mode
}

var opTable = [256]opInfo{
	0x69: {ADC, Immediate}, 0x65: {ADC, ZeroPage}, 0x75: {ADC, ZeroPageX}, 0x6d: {ADC, Absolute},
	0x7d: {ADC, AbsoluteX}, 0x79: {ADC, AbsoluteY}, 0x61: {ADC, IndirectX}, 0x71: {ADC, IndirectY},

	0x29: {AND, Immediate}, 0x25: {AND, ZeroPage}, 0x35: {AND, ZeroPageX}, 0x2d: {AND, Absolute},
	0x3d: {AND, AbsoluteX}, 0x39: {AND, AbsoluteY}, 0x21: {AND, IndirectX}, 0x31: {AND, IndirectY},

	0x0a: {ASL, Accumulator}, 0x06: {ASL, ZeroPage}, 0x16: {ASL, ZeroPageX}, 0x0e: {ASL, Absolute},
	0x1e: {ASL, AbsoluteX},

	0x90: {BCC, Relative}, 0xb0: {BCS, Relative}, 0xf0: {BEQ, Relative}, 0x30: {BMI, Relative},
	0xd0: {BNE, Relative}, 0x10: {BPL, Relative}, 0x50: {BVC, Relative}, 0x70: {BVS, Relative},

	0x24: {BIT, ZeroPage}, 0x2c: {BIT, Absolute},

	0x00: {BRK, Implied},

	0x18: {CLC, Implied}, 0xd8: {CLD, Implied}, 0x58: {CLI, Implied}, 0xb8: {CLV, Implied},

	0xc9: {CMP, Immediate}, 0xc5: {CMP, ZeroPage}, 0xd5: {CMP, ZeroPageX}, 0xcd: {CMP, Absolute},
	0xdd: {CMP, AbsoluteX}, 0xd9: {CMP, AbsoluteY}, 0xc1: {CMP, IndirectX}, 0xd1: {CMP, IndirectY},

	0xe0: {CPX, Immediate}, 0xe4: {CPX, ZeroPage}, 0xec: {CPX, Absolute},
	0xc0: {CPY, Immediate}, 0xc4: {CPY, ZeroPage}, 0xcc: {CPY, Absolute},

	0xc6: {DEC, ZeroPage}, 0xd6: {DEC, ZeroPageX}, 0xce: {DEC, Absolute}, 0xde: {DEC, AbsoluteX},
	0xca: {DEX, Implied}, 0x88: {DEY, Implied},

	0x49: {EOR, Immediate}, 0x45: {EOR, ZeroPage}, 0x55: {EOR, ZeroPageX}, 0x4d: {EOR, Absolute},
	0x5d: {EOR, AbsoluteX}, 0x59: {EOR, AbsoluteY}, 0x41: {EOR, IndirectX}, 0x51: {EOR, IndirectY},

	0xe6: {INC, ZeroPage}, 0xf6: {INC, ZeroPageX}, 0xee: {INC, Absolute}, 0xfe: {INC, AbsoluteX},
	0xe8: {INX, Implied}, 0xc8: {INY, Implied},

	0x4c: {JMP, Absolute}, 0x6c: {JMP, Indirect},
	0x20: {JSR, Absolute},

	0xa9: {LDA, Immediate}, 0xa5: {LDA, ZeroPage}, 0xb5: {LDA, ZeroPageX}, 0xad: {LDA, Absolute},
	0xbd: {LDA, AbsoluteX}, 0xb9: {LDA, AbsoluteY}, 0xa1: {LDA, IndirectX}, 0xb1: {LDA, IndirectY},

	0xa2: {LDX, Immediate}, 0xa6: {LDX, ZeroPage}, 0xb6: {LDX, ZeroPageY}, 0xae: {LDX, Absolute},
	0xbe: {LDX, AbsoluteY},

	0xa0: {LDY, Immediate}, 0xa4: {LDY, ZeroPage}, 0xb4: {LDY, ZeroPageX}, 0xac: {LDY, Absolute},
	0xbc: {LDY, AbsoluteX},

	0x4a: {LSR, Accumulator}, 0x46: {LSR, ZeroPage}, 0x56: {LSR, ZeroPageX}, 0x4e: {LSR, Absolute},
	0x5e: {LSR, AbsoluteX},

	0xea: {NOP, Implied},

	0x09: {ORA, Immediate}, 0x05: {ORA, ZeroPage}, 0x15: {ORA, ZeroPageX}, 0x0d: {ORA, Absolute},
	0x1d: {ORA, AbsoluteX}, 0x19: {ORA, AbsoluteY}, 0x01: {ORA, IndirectX}, 0x11: {ORA, IndirectY},

	0x48: {PHA, Implied}, 0x08: {PHP, Implied}, 0x68: {PLA, Implied}, 0x28: {PLP, Implied},

	0x2a: {ROL, Accumulator}, 0x26: {ROL, ZeroPage}, 0x36: {ROL, ZeroPageX}, 0x2e: {ROL, Absolute},
	0x3e: {ROL, AbsoluteX},

	0x6a: {ROR, Accumulator}, 0x66: {ROR, ZeroPage}, 0x76: {ROR, ZeroPageX}, 0x6e: {ROR, Absolute},
	0x7e: {ROR, AbsoluteX},

	0x40: {RTI, Implied}, 0x60: {RTS, Implied},

	0xe9: {SBC, Immediate}, 0xe5: {SBC, ZeroPage}, 0xf5: {SBC, ZeroPageX}, 0xed: {SBC, Absolute},
	0xfd: {SBC, AbsoluteX}, 0xf9: {SBC, AbsoluteY}, 0xe1: {SBC, IndirectX}, 0xf1: {SBC, IndirectY},

	0x38: {SEC, Implied}, 0xf8: {SED, Implied}, 0x78: {SEI, Implied},

	0x85: {STA, ZeroPage}, 0x95: {STA, ZeroPageX}, 0x8d: {STA, Absolute}, 0x9d: {STA, AbsoluteX},
	0x99: {STA, AbsoluteY}, 0x81: {STA, IndirectX}, 0x91: {STA, IndirectY},

	0x86: {STX, ZeroPage}, 0x96: {STX, ZeroPageY}, 0x8e: {STX, Absolute},
	0x84: {STY, ZeroPage}, 0x94: {STY, ZeroPageX}, 0x8c: {STY, Absolute},

	0xaa: {TAX, Implied}, 0xa8: {TAY, Implied}, 0xba: {TSX, Implied},
	0x8a: {TXA, Implied}, 0x9a: {TXS, Implied}, 0x98: {TYA, Implied},
}

// Disassemble returns the assembler text of the instruction at addr,
// and the number of bytes it occupies.
func (m *Machine) Disassemble(addr uint16) (string, int) {
	var (
		op = Op(m.Mem[addr])
		lo = m.Mem[addr+1]
		w  = uint16(lo) | uint16(m.Mem[addr+2])<<8
		s  = op.String()
	)
	switch op.Mode() {
	case Accumulator:
		s += " A"
	case Immediate:
		s += fmt.Sprintf(" #&%.2X", lo)
	case ZeroPage:
		s += fmt.Sprintf(" &%.2X", lo)
	case ZeroPageX:
		s += fmt.Sprintf(" &%.2X,X", lo)
	case ZeroPageY:
		s += fmt.Sprintf(" &%.2X,Y", lo)
	case Absolute:
		s += fmt.Sprintf(" &%.4X", w)
	case AbsoluteX:
		s += fmt.Sprintf(" &%.4X,X", w)
	case AbsoluteY:
		s += fmt.Sprintf(" &%.4X,Y", w)
	case Indirect:
		s += fmt.Sprintf(" (&%.4X)", w)
	case IndirectX:
		s += fmt.Sprintf(" (&%.2X,X)", lo)
	case IndirectY:
		s += fmt.Sprintf(" (&%.2X),Y", lo)
	case Relative:
		s += fmt.Sprintf(" &%.4X", addr+2+uint16(int8(lo)))
	}
	return s, op.Size()
}
