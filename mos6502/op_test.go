package mos6502

import "testing"

func TestOpTable(t *testing.T) {
	n := 0
	for _, o := range allOps() {
		if o.Inst() != ILL {
			n++
		}
	}
	if n != 151 {
		t.Errorf("%d documented opcodes, want 151", n)
	}
}

// Check that there are names for every instruction.
func TestInstString(t *testing.T) {
	for i := ADC; i <= TYA; i++ {
		if s := i.String(); len(s) != 3 || s == "???" {
			t.Errorf("Inst(%d).String() returned %q", byte(i), s)
		}
	}
}

func TestDisassemble(t *testing.T) {
	for _, c := range []struct {
		code []byte
		want string
		size int
	}{
		{[]byte{0xad, 0x30, 0xfe}, "LDA &FE30", 3},
		{[]byte{0xd0, 0xfe}, "BNE &0200", 2},
		{[]byte{0xb1, 0x10}, "LDA (&10),Y", 2},
		{[]byte{0x6c, 0x0e, 0x02}, "JMP (&020E)", 3},
		{[]byte{0xa2, 0x0c}, "LDX #&0C", 2},
		{[]byte{0x0a}, "ASL A", 1},
		{[]byte{0x60}, "RTS", 1},
		{[]byte{0x02}, "???(02)", 1},
	} {
		m := NewMachine()
		copy(m.Mem[0x200:], c.code)
		got, size := m.Disassemble(0x200)
		if got != c.want || size != c.size {
			t.Errorf("Disassemble(% x) = %q, %d; want %q, %d", c.code, got, size, c.want, c.size)
		}
	}
}

func allOps() []Op {
	ops := make([]Op, 0x100)
	for i := range ops {
		ops[i] = Op(i)
	}
	return ops
}
