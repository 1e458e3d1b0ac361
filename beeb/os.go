package beeb

import (
	"bytes"
	"fmt"
)

// osbyteCall is an emulated OSBYTE selector. The handler sets the result
// registers; the dispatcher returns to the caller.
type osbyteCall struct {
	Desc    string
	Handler func(m *Machine) error
}

// oswordCall is an emulated OSWORD selector. The handler returns the
// address at which execution continues.
type oswordCall struct {
	Desc    string
	Handler func(m *Machine) (uint16, error)
}

var osbyteCalls = map[byte]osbyteCall{
	0x03: {"select output stream", ignore},
	0x0f: {"flush buffers", ignore},
	0x7c: {"clear escape condition", ignore},
	0x7e: {"acknowledge escape condition", (*Machine).ackEscape},
	0x83: {"read OSHWM", (*Machine).readOSHWM},
	0x84: {"read HIMEM", (*Machine).readHIMEM},
	0x86: {"read text cursor position", (*Machine).readCursor},
	0x8a: {"insert character into buffer", ignore},
	0xa0: {"read VDU variable", (*Machine).readVDUVariable},
}

var oswordCalls = map[byte]oswordCall{
	0x00: {"read line", (*Machine).readLine},
	0x05: {"read I/O processor memory", (*Machine).readIOMemory},
}

func ignore(*Machine) error { return nil }

func (m *Machine) ackEscape() error {
	m.cpu.X = 0
	return nil
}

func (m *Machine) readOSHWM() error {
	m.cpu.X, m.cpu.Y = lo(oshwm), hi(oshwm)
	return nil
}

func (m *Machine) readHIMEM() error {
	m.cpu.X, m.cpu.Y = lo(himem), hi(himem)
	return nil
}

func (m *Machine) readCursor() error {
	m.cpu.X, m.cpu.Y = 0, 0
	return nil
}

func (m *Machine) readVDUVariable() error {
	c := m.cpu
	x, err := m.vdu.get(c.X)
	if err != nil {
		return err
	}
	y, err := m.vdu.get(c.X + 1)
	if err != nil {
		return err
	}
	c.X, c.Y = x, y
	return nil
}

func (m *Machine) osbyte() (uint16, error) {
	c := m.cpu
	call, ok := osbyteCalls[c.A]
	if !ok {
		return 0, &UnsupportedError{What: "OSBYTE", Selector: c.A}
	}
	m.trace.LazyPrintf("osbyte: &%.2X (%s) X=&%.2X Y=&%.2X", c.A, call.Desc, c.X, c.Y)
	if err := call.Handler(m); err != nil {
		return 0, err
	}
	return m.pullReturn(), nil
}

func (m *Machine) osword() (uint16, error) {
	c := m.cpu
	call, ok := oswordCalls[c.A]
	if !ok {
		return 0, &UnsupportedError{What: "OSWORD", Selector: c.A}
	}
	m.trace.LazyPrintf("osword: &%.2X (%s) block=&%.4X", c.A, call.Desc, m.yx())
	return call.Handler(m)
}

// readLine suspends the machine until the host supplies a line with
// ResumeLine. The control block holds the buffer address and the maximum
// line length.
func (m *Machine) readLine() (uint16, error) {
	yx := m.yx()
	if yx > 0xff00 {
		return 0, internalf("OSWORD 0 control block at %.4x is too near top of memory", yx)
	}
	m.lineBlock = yx
	m.state = AwaitingLine
	return 0, errYield
}

// readIOMemory copies the byte addressed by the first word of the control
// block to its fifth byte. The copy is made by synthesized code so that
// the source address goes through the same traps as any other read.
func (m *Machine) readIOMemory() (uint16, error) {
	yx := m.yx()
	src, err := m.word(yx)
	if err != nil {
		return 0, err
	}
	return m.emit(transient, copyByteCode(src, yx+4), m.peekReturn(), true)
}

func (m *Machine) osrdch() (uint16, error) {
	m.state = AwaitingCharacter
	return 0, errYield
}

func (m *Machine) oswrch() (uint16, error) {
	if err := m.output(m.cpu.A); err != nil {
		return 0, err
	}
	return m.pullReturn(), nil
}

func (m *Machine) osnewl() (uint16, error) {
	if err := m.newline(); err != nil {
		return 0, err
	}
	return m.pullReturn(), nil
}

func (m *Machine) osasci() (uint16, error) {
	if m.cpu.A == cr {
		return m.osnewl()
	}
	return m.oswrch()
}

func (m *Machine) newline() error {
	if err := m.output(lf); err != nil {
		return err
	}
	return m.output(cr)
}

func (m *Machine) output(c byte) error {
	if err := m.drv.WriteByte(c); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// Service call offered to the sideways ROMs for an unrecognised command.
const serviceCommand = 4

// oscli runs the command addressed by X and Y. *BASIC enters BASIC; any
// other command is offered to the sideways ROMs.
func (m *Machine) oscli() (uint16, error) {
	c := m.cpu
	yx := m.yx()
	if yx > 0xff00 {
		return 0, internalf("OSCLI command at %.4x is too near top of memory", yx)
	}
	c.Mem[osTextPointer] = c.X
	c.Mem[osTextPointer+1] = c.Y

	c.A = serviceCommand
	c.X = byte(firstServiceBank)
	c.Y = 0
	for c.Mem[yx+uint16(c.Y)] == '*' {
		c.Y++
		if c.Y == 0 {
			return 0, internalf("too many *s in OSCLI command at %.4x", yx)
		}
	}
	cmd := c.Mem[int(yx)+int(c.Y):]
	m.trace.LazyPrintf("oscli: %q", commandString(cmd))
	if bytes.HasPrefix(cmd, []byte("BASIC")) {
		return m.enterLanguage()
	}
	return m.emit(service, serviceCode(), m.peekReturn(), true)
}

// enterLanguage pages in BASIC and enters it. The language never returns,
// so the caller's return address is left on the stack.
func (m *Machine) enterLanguage() (uint16, error) {
	c := m.cpu
	c.A, c.X, c.Y = 1, 0, 0
	return m.emit(transient, languageCode(BankBASIC), 0, false)
}

// brk handles BRK, which the emulated software uses only to raise errors.
// The error number and message follow the BRK instruction.
func (m *Machine) brk() (uint16, error) {
	c := m.cpu
	ptr := uint16(c.Mem[0x100|uint16(c.S+2)]) | uint16(c.Mem[0x100|uint16(c.S+3)])<<8
	c.Mem[errorPointer] = lo(ptr - 1)
	c.Mem[errorPointer+1] = hi(ptr - 1)
	err := &GuestError{Code: c.Mem[ptr-1], Msg: cString(c.Mem[:], ptr)}
	m.trace.LazyPrintf("brk: %v", err)
	return 0, err
}

func cString(mem []byte, addr uint16) string {
	var b []byte
	for a := int(addr); a < len(mem) && mem[a] != 0 && len(b) < 0xff; a++ {
		b = append(b, mem[a])
	}
	return string(b)
}

// commandString returns the command at the start of b, which ends at the
// first CR.
func commandString(b []byte) string {
	if i := bytes.IndexByte(b, cr); i >= 0 {
		b = b[:i]
	}
	if len(b) > 0xff {
		b = b[:0xff]
	}
	return string(b)
}

func (m *Machine) yx() uint16 {
	return uint16(m.cpu.Y)<<8 | uint16(m.cpu.X)
}

// word returns the little-endian word at addr.
func (m *Machine) word(addr uint16) (uint16, error) {
	if addr == 0xffff {
		return 0, internalf("word read at top of memory")
	}
	return uint16(m.cpu.Mem[addr]) | uint16(m.cpu.Mem[addr+1])<<8, nil
}

// peekReturn returns the address an RTS would return to.
func (m *Machine) peekReturn() uint16 {
	c := m.cpu
	l := c.Mem[0x100|uint16(c.S+1)]
	h := c.Mem[0x100|uint16(c.S+2)]
	return (uint16(l) | uint16(h)<<8) + 1
}

// pullReturn returns from the current OS call: it pops the return address
// pushed by JSR and returns the address at which execution continues.
func (m *Machine) pullReturn() uint16 {
	ret := m.peekReturn()
	m.cpu.S += 2
	return ret
}
