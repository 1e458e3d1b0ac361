package main

import (
	"bytes"

	"github.com/nf/beeb/beeb"
)

const (
	keyReturn = 0x0d
	keyDelete = 0x7f
)

// typeahead holds keys pressed before the machine asks for them.
type typeahead struct {
	buf []byte
}

func (t *typeahead) push(b ...byte) {
	for _, c := range b {
		if c == '\n' {
			c = keyReturn
		}
		t.buf = append(t.buf, c)
	}
}

func (t *typeahead) reset() { t.buf = t.buf[:0] }

// feed resumes m with buffered input for as long as there is enough of it
// to satisfy the input m is waiting for. Keys are consumed one at a time
// by OSRDCH and a line at a time, up to Return, by OSWORD 0.
func (t *typeahead) feed(m *beeb.Machine) error {
	for {
		switch m.State() {
		case beeb.AwaitingCharacter:
			if len(t.buf) == 0 {
				return nil
			}
			c := t.buf[0]
			t.buf = t.buf[1:]
			if err := m.ResumeChar(c); err != nil {
				return err
			}
		case beeb.AwaitingLine:
			i := bytes.IndexByte(t.buf, keyReturn)
			if i < 0 {
				return nil
			}
			line := edit(t.buf[:i])
			t.buf = t.buf[i+1:]
			if err := m.ResumeLine(line); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// pending returns the line being typed.
func (t *typeahead) pending() string {
	b := t.buf
	if i := bytes.LastIndexByte(b, keyReturn); i >= 0 {
		b = b[i+1:]
	}
	return edit(b)
}

// edit applies the Delete keys in a typed line.
func edit(b []byte) string {
	line := make([]byte, 0, len(b))
	for _, c := range b {
		if c == keyDelete {
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
			continue
		}
		line = append(line, c)
	}
	return string(line)
}
