// Package mos6502 provides an implementation of an NMOS 6502 CPU, called
// Machine, with per-address hooks that let a host observe and replace memory
// reads, memory writes and control transfers.
package mos6502

import (
	"errors"
	"fmt"
	"strings"
)

// Status register flags.
const (
	Carry     byte = 0x01
	Zero      byte = 0x02
	Interrupt byte = 0x04
	Decimal   byte = 0x08
	Break     byte = 0x10
	Unused    byte = 0x20
	Overflow  byte = 0x40
	Negative  byte = 0x80
)

// Vector identifies one of the 6502 hardware vectors.
type Vector uint16

const (
	NMI   Vector = 0xfffa
	RESET Vector = 0xfffc
	IRQ   Vector = 0xfffe
)

// PollInterval is the number of instructions Run executes between calls to
// its poll function.
const PollInterval = 0x4000

// ReadFunc is called in place of a memory read at a hooked address.
// The returned value is the result of the read.
type ReadFunc func(m *Machine, addr uint16) (byte, error)

// WriteFunc is called in place of a memory write at a hooked address;
// memory is not modified.
type WriteFunc func(m *Machine, addr uint16, v byte) error

// CallFunc is called when control is transferred to a hooked address by
// JSR, JMP or an interrupt. It returns the address at which execution
// continues.
type CallFunc func(m *Machine, addr uint16) (next uint16, err error)

// PollFunc is called periodically by Run.
type PollFunc func(m *Machine)

// Machine is an implementation of a 6502 CPU with a 64KB address space.
//
// Hooks see data reads and writes at an instruction's effective address.
// Opcode and operand fetches, stack operations and the fetch of indirect
// pointers access Mem directly.
type Machine struct {
	Mem [0x10000]byte

	A, X, Y byte
	S       byte
	P       byte
	PC      uint16

	reads  [0x10000]ReadFunc
	writes [0x10000]WriteFunc
	calls  [0x10000]CallFunc

	err error // first error returned by a hook during the current instruction

	brk    uint16
	brkSet bool
}

// NewMachine returns a Machine with zeroed memory and no hooks.
func NewMachine() *Machine {
	return &Machine{S: 0xff, P: Unused | Interrupt}
}

func (m *Machine) SetReadHook(addr uint16, f ReadFunc)   { m.reads[addr] = f }
func (m *Machine) SetWriteHook(addr uint16, f WriteFunc) { m.writes[addr] = f }
func (m *Machine) SetCallHook(addr uint16, f CallFunc)   { m.calls[addr] = f }

// SetVector stores addr in the given hardware vector.
func (m *Machine) SetVector(v Vector, addr uint16) {
	m.Mem[v] = byte(addr)
	m.Mem[v+1] = byte(addr >> 8)
}

// Reset performs a 6502 reset: interrupts are disabled, decimal mode is
// cleared and execution continues at the address in the RESET vector.
func (m *Machine) Reset() {
	m.S = 0xfd
	m.P = (m.P | Interrupt | Unused) &^ Decimal
	m.PC = m.word(uint16(RESET))
}

// SetBreak makes Run stop with ErrBreak before executing the instruction
// at addr.
func (m *Machine) SetBreak(addr uint16) { m.brk, m.brkSet = addr, true }

// ClearBreak removes the breakpoint.
func (m *Machine) ClearBreak() { m.brkSet = false }

// Break returns the breakpoint address, if one is set.
func (m *Machine) Break() (uint16, bool) { return m.brk, m.brkSet }

// ErrBreak is returned by Run when execution reaches the breakpoint.
var ErrBreak = errors.New("breakpoint")

// Run executes instructions until one of them returns an error, which Run
// returns. If poll is non-nil it is called every PollInterval instructions.
// The first instruction is always executed, so calling Run again after
// ErrBreak continues past the breakpoint.
func (m *Machine) Run(poll PollFunc) error {
	for n := 1; ; n++ {
		if m.brkSet && n > 1 && m.PC == m.brk {
			return ErrBreak
		}
		if err := m.Step(); err != nil {
			return err
		}
		if poll != nil && n%PollInterval == 0 {
			poll(m)
		}
	}
}

// Step executes the instruction at m.PC. It returns a HaltError if the
// opcode is not implemented, and otherwise the first error returned by a
// hook invoked by the instruction.
func (m *Machine) Step() error {
	var (
		opPC = m.PC
		op   = Op(m.Mem[opPC])
		inst = op.Inst()
	)
	if inst == ILL {
		return HaltError{Op: op, Addr: opPC}
	}
	m.PC++
	ea := m.address(op.Mode())
	m.exec(inst, op.Mode(), ea)
	if err := m.err; err != nil {
		m.err = nil
		return err
	}
	return nil
}

// address consumes the operand bytes of the current instruction and returns
// its effective address.
func (m *Machine) address(mode Mode) uint16 {
	pc := m.PC
	switch mode {
	case Implied, Accumulator:
		return 0
	case Immediate, Relative:
		m.PC++
		return pc
	case ZeroPage:
		m.PC++
		return uint16(m.Mem[pc])
	case ZeroPageX:
		m.PC++
		return uint16(m.Mem[pc] + m.X)
	case ZeroPageY:
		m.PC++
		return uint16(m.Mem[pc] + m.Y)
	case Absolute:
		m.PC += 2
		return m.word(pc)
	case AbsoluteX:
		m.PC += 2
		return m.word(pc) + uint16(m.X)
	case AbsoluteY:
		m.PC += 2
		return m.word(pc) + uint16(m.Y)
	case Indirect:
		m.PC += 2
		// The NMOS 6502 does not carry into the high byte of the pointer.
		ptr := m.word(pc)
		hi := ptr&0xff00 | uint16(byte(ptr)+1)
		return uint16(m.Mem[ptr]) | uint16(m.Mem[hi])<<8
	case IndirectX:
		m.PC++
		return m.zpWord(m.Mem[pc] + m.X)
	case IndirectY:
		m.PC++
		return m.zpWord(m.Mem[pc]) + uint16(m.Y)
	default:
		panic(fmt.Errorf("internal error: addressing mode %d not implemented", mode))
	}
}

func (m *Machine) exec(inst Inst, mode Mode, ea uint16) {
	switch inst {
	case ADC:
		m.adc(m.load(mode, ea))
	case SBC:
		m.sbc(m.load(mode, ea))
	case AND:
		m.A &= m.load(mode, ea)
		m.setNZ(m.A)
	case ORA:
		m.A |= m.load(mode, ea)
		m.setNZ(m.A)
	case EOR:
		m.A ^= m.load(mode, ea)
		m.setNZ(m.A)
	case BIT:
		v := m.load(mode, ea)
		m.setFlag(Zero, m.A&v == 0)
		m.P = m.P&^(Negative|Overflow) | v&(Negative|Overflow)
	case CMP:
		m.compare(m.A, m.load(mode, ea))
	case CPX:
		m.compare(m.X, m.load(mode, ea))
	case CPY:
		m.compare(m.Y, m.load(mode, ea))

	case LDA:
		m.A = m.load(mode, ea)
		m.setNZ(m.A)
	case LDX:
		m.X = m.load(mode, ea)
		m.setNZ(m.X)
	case LDY:
		m.Y = m.load(mode, ea)
		m.setNZ(m.Y)
	case STA:
		m.write(ea, m.A)
	case STX:
		m.write(ea, m.X)
	case STY:
		m.write(ea, m.Y)

	case ASL, LSR, ROL, ROR, INC, DEC:
		m.modify(inst, mode, ea)

	case INX:
		m.X++
		m.setNZ(m.X)
	case INY:
		m.Y++
		m.setNZ(m.Y)
	case DEX:
		m.X--
		m.setNZ(m.X)
	case DEY:
		m.Y--
		m.setNZ(m.Y)
	case TAX:
		m.X = m.A
		m.setNZ(m.X)
	case TAY:
		m.Y = m.A
		m.setNZ(m.Y)
	case TXA:
		m.A = m.X
		m.setNZ(m.A)
	case TYA:
		m.A = m.Y
		m.setNZ(m.A)
	case TSX:
		m.X = m.S
		m.setNZ(m.X)
	case TXS:
		m.S = m.X

	case PHA:
		m.push(m.A)
	case PHP:
		m.push(m.P | Break | Unused)
	case PLA:
		m.A = m.pull()
		m.setNZ(m.A)
	case PLP:
		m.P = m.pull()&^Break | Unused

	case CLC:
		m.P &^= Carry
	case SEC:
		m.P |= Carry
	case CLD:
		m.P &^= Decimal
	case SED:
		m.P |= Decimal
	case CLI:
		m.P &^= Interrupt
	case SEI:
		m.P |= Interrupt
	case CLV:
		m.P &^= Overflow
	case NOP:

	case BCC:
		m.branch(ea, m.P&Carry == 0)
	case BCS:
		m.branch(ea, m.P&Carry != 0)
	case BNE:
		m.branch(ea, m.P&Zero == 0)
	case BEQ:
		m.branch(ea, m.P&Zero != 0)
	case BPL:
		m.branch(ea, m.P&Negative == 0)
	case BMI:
		m.branch(ea, m.P&Negative != 0)
	case BVC:
		m.branch(ea, m.P&Overflow == 0)
	case BVS:
		m.branch(ea, m.P&Overflow != 0)

	case JMP:
		m.call(ea)
	case JSR:
		m.pushWord(m.PC - 1)
		m.call(ea)
	case RTS:
		m.PC = m.pullWord() + 1
	case RTI:
		m.P = m.pull()&^Break | Unused
		m.PC = m.pullWord()
	case BRK:
		m.pushWord(m.PC + 1)
		m.push(m.P | Break | Unused)
		m.P |= Interrupt
		m.call(m.word(uint16(IRQ)))

	default:
		panic(fmt.Errorf("internal error: %v not implemented", inst))
	}
}

func (m *Machine) modify(inst Inst, mode Mode, ea uint16) {
	var v byte
	if mode == Accumulator {
		v = m.A
	} else {
		v = m.read(ea)
	}
	switch inst {
	case ASL:
		m.setFlag(Carry, v&0x80 != 0)
		v <<= 1
	case LSR:
		m.setFlag(Carry, v&0x01 != 0)
		v >>= 1
	case ROL:
		c := m.P & Carry
		m.setFlag(Carry, v&0x80 != 0)
		v = v<<1 | c
	case ROR:
		c := m.P & Carry
		m.setFlag(Carry, v&0x01 != 0)
		v = v>>1 | c<<7
	case INC:
		v++
	case DEC:
		v--
	}
	m.setNZ(v)
	if mode == Accumulator {
		m.A = v
	} else {
		m.write(ea, v)
	}
}

func (m *Machine) adc(v byte) {
	c := uint16(m.P & Carry)
	if m.P&Decimal != 0 {
		lo := uint16(m.A&0x0f) + uint16(v&0x0f) + c
		if lo > 0x09 {
			lo += 0x06
		}
		hi := uint16(m.A>>4) + uint16(v>>4)
		if lo > 0x0f {
			hi++
		}
		// NMOS parts set Z from the binary sum and N, V from the
		// intermediate high nibble.
		m.setFlag(Zero, byte(uint16(m.A)+uint16(v)+c) == 0)
		m.setFlag(Negative, hi&0x08 != 0)
		m.setFlag(Overflow, (m.A^v)&0x80 == 0 && (byte(hi<<4)^m.A)&0x80 != 0)
		if hi > 0x09 {
			hi += 0x06
		}
		m.setFlag(Carry, hi > 0x0f)
		m.A = byte(hi<<4) | byte(lo&0x0f)
		return
	}
	sum := uint16(m.A) + uint16(v) + c
	r := byte(sum)
	m.setFlag(Overflow, (m.A^r)&(v^r)&0x80 != 0)
	m.setFlag(Carry, sum > 0xff)
	m.A = r
	m.setNZ(r)
}

func (m *Machine) sbc(v byte) {
	borrow := int(1 - m.P&Carry)
	diff := int(m.A) - int(v) - borrow
	r := byte(diff)
	m.setFlag(Overflow, (m.A^v)&(m.A^r)&0x80 != 0)
	m.setFlag(Carry, diff >= 0)
	m.setNZ(r)
	if m.P&Decimal != 0 {
		lo := int(m.A&0x0f) - int(v&0x0f) - borrow
		hi := int(m.A>>4) - int(v>>4)
		if lo < 0 {
			lo -= 0x06
			hi--
		}
		if hi < 0 {
			hi -= 0x06
		}
		r = byte(hi<<4) | byte(lo&0x0f)
	}
	m.A = r
}

func (m *Machine) compare(reg, v byte) {
	m.setFlag(Carry, reg >= v)
	m.setNZ(reg - v)
}

func (m *Machine) branch(ea uint16, cond bool) {
	if cond {
		m.PC += uint16(int8(m.Mem[ea]))
	}
}

// call transfers control to addr, giving any call hook at addr the chance
// to redirect it.
func (m *Machine) call(addr uint16) {
	m.PC = addr
	f := m.calls[addr]
	if f == nil {
		return
	}
	next, err := f(m, addr)
	if err != nil {
		m.fail(err)
		return
	}
	m.PC = next
}

// load returns the operand of the current instruction.
func (m *Machine) load(mode Mode, ea uint16) byte {
	if mode == Immediate {
		return m.Mem[ea]
	}
	return m.read(ea)
}

func (m *Machine) read(addr uint16) byte {
	f := m.reads[addr]
	if f == nil {
		return m.Mem[addr]
	}
	v, err := f(m, addr)
	if err != nil {
		m.fail(err)
	}
	return v
}

func (m *Machine) write(addr uint16, v byte) {
	f := m.writes[addr]
	if f == nil {
		m.Mem[addr] = v
		return
	}
	if err := f(m, addr, v); err != nil {
		m.fail(err)
	}
}

func (m *Machine) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Machine) push(v byte) {
	m.Mem[0x100|uint16(m.S)] = v
	m.S--
}

func (m *Machine) pull() byte {
	m.S++
	return m.Mem[0x100|uint16(m.S)]
}

func (m *Machine) pushWord(v uint16) {
	m.push(byte(v >> 8))
	m.push(byte(v))
}

func (m *Machine) pullWord() uint16 {
	lo := m.pull()
	return uint16(lo) | uint16(m.pull())<<8
}

func (m *Machine) word(addr uint16) uint16 {
	return uint16(m.Mem[addr]) | uint16(m.Mem[addr+1])<<8
}

func (m *Machine) zpWord(addr byte) uint16 {
	return uint16(m.Mem[addr]) | uint16(m.Mem[addr+1])<<8
}

func (m *Machine) setNZ(v byte) {
	m.P &^= Zero | Negative
	if v == 0 {
		m.P |= Zero
	}
	m.P |= v & Negative
}

func (m *Machine) setFlag(f byte, on bool) {
	if on {
		m.P |= f
	} else {
		m.P &^= f
	}
}

// String returns a one-line dump of the CPU registers.
func (m *Machine) String() string {
	return fmt.Sprintf("PC=%.4X SP=%.4X A=%.2X X=%.2X Y=%.2X P=%.2X %s",
		m.PC, 0x100|uint16(m.S), m.A, m.X, m.Y, m.P, flagString(m.P))
}

func flagString(p byte) string {
	var b strings.Builder
	for i, c := range "NV-BDIZC" {
		if p&(0x80>>i) != 0 {
			b.WriteRune(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// HaltError is returned by Step if the machine encounters an opcode it
// does not implement.
type HaltError struct {
	Op   Op
	Addr uint16
}

func (e HaltError) Error() string {
	return fmt.Sprintf("illegal opcode %.2x at %.4x", byte(e.Op), e.Addr)
}
