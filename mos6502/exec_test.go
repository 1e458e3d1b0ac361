package mos6502

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewMachine(t *testing.T) {
	m := NewMachine()
	for i := range m.Mem {
		if m.Mem[i] != 0 {
			t.Fatalf("Mem[%.4x] == %.2x, want 0", i, m.Mem[i])
		}
	}
	if m.S != 0xff {
		t.Errorf("S == %.2x, want ff", m.S)
	}
	if m.P != Unused|Interrupt {
		t.Errorf("P == %.2x, want %.2x", m.P, Unused|Interrupt)
	}
}

func TestReset(t *testing.T) {
	m := NewMachine()
	m.P |= Decimal
	m.SetVector(RESET, 0x8000)
	m.Reset()
	if m.PC != 0x8000 {
		t.Errorf("PC == %.4x, want 8000", m.PC)
	}
	if m.S != 0xfd {
		t.Errorf("S == %.2x, want fd", m.S)
	}
	if m.P&Decimal != 0 || m.P&Interrupt == 0 {
		t.Errorf("P == %.2x after reset", m.P)
	}
}

func TestExec(t *testing.T) {
	c := newExecTestCase
	for i, c := range []*execTestCase{
		c(0xa9, 0x00).a(0x55).want().a(0x00).p(0x26),
		c(0xa9, 0x80).want().a(0x80).p(0xa4),
		c(0xa5, 0x10).mem(0x10, 0x42).want().a(0x42),
		c(0xb5, 0xff).x(0x12).mem(0x11, 0x42).want().a(0x42),
		c(0xbd, 0x00, 0x30).x(1).mem(0x3001, 5).want().a(5),
		c(0xb9, 0xff, 0x30).y(1).mem(0x3100, 5).want().a(5),
		c(0xa1, 0x10).x(2).mem(0x12, 0x34, 0x12).mem(0x1234, 7).want().a(7),
		c(0xb1, 0x10).y(5).mem(0x10, 0x00, 0x30).mem(0x3005, 0x99).want().a(0x99).p(0xa4),
		c(0xb6, 0x10).y(1).mem(0x11, 3).want().x(3),
		c(0xbc, 0x00, 0x30).x(2).mem(0x3002, 4).want().y(4),

		c(0x8d, 0x00, 0x30).a(0x42).want().mem(0x3000, 0x42),
		c(0x95, 0xff).x(2).a(1).want().mem(0x01, 1),
		c(0x91, 0x10).a(9).y(1).mem(0x10, 0xff, 0x30).want().mem(0x3100, 9),
		c(0x86, 0x20).x(6).want().mem(0x20, 6),
		c(0x8c, 0x00, 0x30).y(7).want().mem(0x3000, 7),

		c(0x69, 0x01).a(0x7f).want().a(0x80).p(0xe4),
		c(0x69, 0x01).a(0xff).want().a(0x00).p(0x27),
		c(0x69, 0x01).a(0x01).p(0x25).want().a(0x03).p(0x24),
		c(0x69, 0x01).a(0x09).p(0x2c).want().a(0x10).p(0x2c),
		c(0x69, 0x01).a(0x99).p(0x2c).want().a(0x00).p(0xad),
		c(0xe9, 0x01).a(0x00).p(0x25).want().a(0xff).p(0xa4),
		c(0xe9, 0x01).a(0x80).p(0x25).want().a(0x7f).p(0x65),
		c(0xe9, 0x01).a(0x10).p(0x2d).want().a(0x09).p(0x2d),

		c(0x29, 0x0f).a(0xf0).want().a(0x00).p(0x26),
		c(0x09, 0x80).a(0x01).want().a(0x81).p(0xa4),
		c(0x49, 0xff).a(0x0f).want().a(0xf0).p(0xa4),
		c(0x24, 0x10).a(0x01).mem(0x10, 0xc0).want().p(0xe6),

		c(0xc9, 0x10).a(0x20).want().p(0x25),
		c(0xc9, 0x10).a(0x10).want().p(0x27),
		c(0xc9, 0x20).a(0x10).want().p(0xa4),
		c(0xe0, 0x05).x(0x05).want().p(0x27),
		c(0xc0, 0x06).y(0x05).want().p(0xa4),

		c(0xe6, 0x10).mem(0x10, 0xff).want().mem(0x10, 0x00).p(0x26),
		c(0xce, 0x00, 0x30).mem(0x3000, 0x00).want().mem(0x3000, 0xff).p(0xa4),
		c(0x0a).a(0x81).want().a(0x02).p(0x25),
		c(0x46, 0x10).mem(0x10, 0x01).want().mem(0x10, 0x00).p(0x27),
		c(0x2a).a(0x80).want().a(0x00).p(0x27),
		c(0x6a).a(0x02).p(0x25).want().a(0x81).p(0xa4),

		c(0xe8).x(0xff).want().x(0x00).p(0x26),
		c(0xca).x(0x01).want().x(0x00).p(0x26),
		c(0x88).y(0x00).want().y(0xff).p(0xa4),
		c(0xaa).a(0x80).want().x(0x80).p(0xa4),
		c(0xba).want().x(0xff).p(0xa4),
		c(0x9a).x(0x40).want().s(0x40),

		c(0x48).a(0x42).want().s(0xfe).mem(0x1ff, 0x42),
		c(0x68).s(0xfe).mem(0x1ff, 0x00).want().a(0x00).s(0xff).p(0x26),
		c(0x08).want().s(0xfe).mem(0x1ff, 0x34),
		c(0x28).s(0xfe).mem(0x1ff, 0xff).want().s(0xff).p(0xef),

		c(0x38).want().p(0x25),
		c(0x18).p(0x25).want().p(0x24),
		c(0xf8).want().p(0x2c),
		c(0xb8).p(0x64).want().p(0x24),

		c(0xd0, 0x05).want().pc(0x207),
		c(0xd0, rel(-4)).want().pc(0x1fe),
		c(0xf0, 0x05).want(),
		c(0x90, 0x10).want().pc(0x212),
		c(0xb0, 0x10).want(),

		c(0x4c, 0x34, 0x12).want().pc(0x1234),
		c(0x6c, 0xff, 0x30).mem(0x30ff, 0x34).mem(0x3000, 0x12).mem(0x3100, 0x56).want().pc(0x1234),
		c(0x20, 0x00, 0x30).want().pc(0x3000).s(0xfd).mem(0x1fe, 0x02, 0x02),
		c(0x60).s(0xfd).mem(0x1fe, 0x33, 0x12).want().pc(0x1234).s(0xff),
		c(0x40).s(0xfc).mem(0x1fd, 0x01, 0x34, 0x12).want().pc(0x1234).s(0xff).p(0x21),
		c(0x00).mem(0xfffe, 0x00, 0xf0).want().pc(0xf000).s(0xfc).mem(0x1fd, 0x34, 0x02, 0x02),

		c(0x02).want().pc(0x200).error(HaltError{Op: 0x02, Addr: 0x200}),
	} {
		t.Run(fmt.Sprintf("%s_%d", Op(c.m.Mem[0x200]), i), func(t *testing.T) {
			if err := c.m.Step(); err != c.err {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			if g, w := c.m.A, c.w.A; g != w {
				t.Errorf("A is %.2x, want %.2x", g, w)
			}
			if g, w := c.m.X, c.w.X; g != w {
				t.Errorf("X is %.2x, want %.2x", g, w)
			}
			if g, w := c.m.Y, c.w.Y; g != w {
				t.Errorf("Y is %.2x, want %.2x", g, w)
			}
			if g, w := c.m.S, c.w.S; g != w {
				t.Errorf("S is %.2x, want %.2x", g, w)
			}
			if g, w := c.m.P, c.w.P; g != w {
				t.Errorf("P is %.2x (%s), want %.2x (%s)", g, flagString(g), w, flagString(w))
			}
			if g, w := c.m.PC, c.w.PC; g != w {
				t.Errorf("PC is %.4x, want %.4x", g, w)
			}
			if g, w := c.m.Mem, c.w.Mem; g != w {
				for i := range g {
					if g[i] != w[i] {
						t.Errorf("memory[%.4x] = %.2x, want %.2x", i, g[i], w[i])
					}
				}
			}
		})
	}
}

func TestHooks(t *testing.T) {
	m := NewMachine()
	m.SetReadHook(0x3000, func(m *Machine, addr uint16) (byte, error) {
		return 0x99, nil
	})
	var written []byte
	m.SetWriteHook(0xfe30, func(m *Machine, addr uint16, v byte) error {
		written = append(written, v)
		return nil
	})
	var callS byte
	m.SetCallHook(0xffee, func(m *Machine, addr uint16) (uint16, error) {
		callS = m.S
		return 0x4000, nil
	})
	copy(m.Mem[0x200:], []byte{
		0xad, 0x00, 0x30, // LDA &3000
		0x8d, 0x30, 0xfe, // STA &FE30
		0x20, 0xee, 0xff, // JSR &FFEE
	})
	m.PC = 0x200
	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if m.A != 0x99 {
		t.Errorf("A == %.2x, want 99", m.A)
	}
	if m.Mem[0x3000] != 0 {
		t.Errorf("read hook modified memory")
	}
	if len(written) != 1 || written[0] != 0x99 {
		t.Errorf("write hook saw %x, want [99]", written)
	}
	if m.Mem[0xfe30] != 0 {
		t.Errorf("write hook did not replace the store")
	}
	if callS != 0xfd {
		t.Errorf("call hook saw S == %.2x, want fd", callS)
	}
	if m.PC != 0x4000 {
		t.Errorf("PC == %.4x, want 4000", m.PC)
	}
}

func TestHookError(t *testing.T) {
	errBoom := errors.New("boom")
	m := NewMachine()
	m.SetReadHook(0x00b0, func(m *Machine, addr uint16) (byte, error) {
		return 0, errBoom
	})
	copy(m.Mem[0x200:], []byte{0xa5, 0xb0}) // LDA &B0
	m.PC = 0x200
	if err := m.Step(); err != errBoom {
		t.Fatalf("Step returned %v, want %v", err, errBoom)
	}
	if m.PC != 0x202 {
		t.Errorf("PC == %.4x, want 0202", m.PC)
	}
}

func TestRun(t *testing.T) {
	errStop := errors.New("stop")
	m := NewMachine()
	copy(m.Mem[0x200:], []byte{
		0xe8,             // INX
		0x4c, 0x00, 0x02, // JMP &0200
	})
	calls := 0
	m.SetCallHook(0x200, func(m *Machine, addr uint16) (uint16, error) {
		calls++
		if calls == 3 {
			return 0, errStop
		}
		return addr, nil
	})
	m.PC = 0x200
	polls := 0
	if err := m.Run(func(*Machine) { polls++ }); err != errStop {
		t.Fatalf("Run returned %v, want %v", err, errStop)
	}
	if m.X != 3 {
		t.Errorf("X == %d, want 3", m.X)
	}
	if polls != 0 {
		t.Errorf("poll called %d times, want 0", polls)
	}
}

func TestBreak(t *testing.T) {
	m := NewMachine()
	copy(m.Mem[0x200:], []byte{
		0xe8,             // INX
		0xe8,             // INX
		0x4c, 0x00, 0x02, // JMP &0200
	})
	m.PC = 0x200
	m.SetBreak(0x201)
	if err := m.Run(nil); err != ErrBreak {
		t.Fatalf("Run returned %v, want %v", err, ErrBreak)
	}
	if m.PC != 0x201 || m.X != 1 {
		t.Errorf("stopped at %.4x with X=%d, want 0201 and 1", m.PC, m.X)
	}

	// Running again steps over the breakpoint and stops on the next lap.
	if err := m.Run(nil); err != ErrBreak {
		t.Fatalf("Run returned %v, want %v", err, ErrBreak)
	}
	if m.PC != 0x201 || m.X != 3 {
		t.Errorf("stopped at %.4x with X=%d, want 0201 and 3", m.PC, m.X)
	}

	if a, ok := m.Break(); !ok || a != 0x201 {
		t.Errorf("Break() = %.4x, %v; want 0201, true", a, ok)
	}
	m.ClearBreak()
	if _, ok := m.Break(); ok {
		t.Errorf("breakpoint still set after ClearBreak")
	}
}

type execTestCase struct {
	m, w *Machine
	err  error
	set  *Machine
}

func newExecTestCase(code ...byte) *execTestCase {
	c := &execTestCase{m: NewMachine(), w: NewMachine()}
	for _, m := range []*Machine{c.m, c.w} {
		copy(m.Mem[0x200:], code)
		m.PC = 0x200
	}
	c.w.PC += uint16(Op(code[0]).Size())
	c.set = c.m
	return c
}

func (c *execTestCase) each(f func(m *Machine)) *execTestCase {
	f(c.set)
	if c.set == c.m {
		f(c.w)
	}
	return c
}

func (c *execTestCase) a(v byte) *execTestCase { return c.each(func(m *Machine) { m.A = v }) }
func (c *execTestCase) x(v byte) *execTestCase { return c.each(func(m *Machine) { m.X = v }) }
func (c *execTestCase) y(v byte) *execTestCase { return c.each(func(m *Machine) { m.Y = v }) }
func (c *execTestCase) s(v byte) *execTestCase { return c.each(func(m *Machine) { m.S = v }) }
func (c *execTestCase) p(v byte) *execTestCase { return c.each(func(m *Machine) { m.P = v }) }
func (c *execTestCase) pc(v uint16) *execTestCase {
	c.set.PC = v
	return c
}

func (c *execTestCase) mem(addr uint16, bytes ...byte) *execTestCase {
	return c.each(func(m *Machine) { copy(m.Mem[addr:], bytes) })
}

func (c *execTestCase) want() *execTestCase {
	c.set = c.w
	return c
}

func (c *execTestCase) error(err error) *execTestCase {
	c.err = err
	return c
}

func rel(i int8) byte { return byte(i) }
