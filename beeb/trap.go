package beeb

import "github.com/nf/beeb/mos6502"

// Access is a kind of memory access made by the emulated CPU.
type Access byte

const (
	Read Access = iota
	Write
	Call
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Call:
		return "call"
	}
	return "access"
}

// region is a range of the address space, first to last inclusive, in which
// the given kinds of access are rejected except at the allowed addresses.
type region struct {
	name        string
	first, last uint16
	kinds       []Access
	allow       []uint16
}

func (r region) allows(addr uint16) bool {
	for _, a := range r.allow {
		if a == addr {
			return true
		}
	}
	return false
}

// surface lists the parts of the machine the emulated software must not
// touch. Accesses elsewhere in memory go straight to RAM or the paged ROM.
var surface = []region{
	{
		name:  "OS workspace",
		first: 0xb0, last: 0xff,
		kinds: []Access{Read, Write},
		allow: []uint16{
			osTextPointer, osTextPointer + 1,
			romselCopy,
			errorPointer, errorPointer + 1,
		},
	},
	{
		name:  "OS vectors",
		first: 0x200, last: 0x235,
		kinds: []Access{Read, Write},
		allow: []uint16{brkv, brkv + 1, wrchv, wrchv + 1},
	},
	{
		name:  "OS ROM",
		first: osStart, last: 0xffff,
		kinds: []Access{Call},
	},
}

// trap is an address with an emulated behaviour, which takes precedence
// over any region covering it.
type trap struct {
	name  string
	addr  uint16
	read  func(m *Machine) (byte, error)
	write func(m *Machine, v byte) error
	call  func(m *Machine) (uint16, error)
}

var traps = []trap{
	{name: "escape_flag", addr: escapeFlag, read: (*Machine).readEscapeFlag},
	{name: "romsel", addr: ROMSEL, write: (*Machine).writeROMSEL},
	{name: "irq_handler", addr: fakeIRQHandler, call: (*Machine).brk},
	{name: "osrdch", addr: OSRDCH, call: (*Machine).osrdch},
	{name: "osasci", addr: OSASCI, call: (*Machine).osasci},
	{name: "osnewl", addr: OSNEWL, call: (*Machine).osnewl},
	{name: "oswrch", addr: OSWRCH, call: (*Machine).oswrch},
	{name: "osword", addr: OSWORD, call: (*Machine).osword},
	{name: "osbyte", addr: OSBYTE, call: (*Machine).osbyte},
	{name: "oscli", addr: OSCLI, call: (*Machine).oscli},
}

// installTraps hooks every address in the surface regions and then the
// emulated traps.
func (m *Machine) installTraps() {
	c := m.cpu
	for _, r := range surface {
		for a := int(r.first); a <= int(r.last); a++ {
			addr := uint16(a)
			if r.allows(addr) {
				continue
			}
			for _, k := range r.kinds {
				switch k {
				case Read:
					c.SetReadHook(addr, rejectRead)
				case Write:
					c.SetWriteHook(addr, rejectWrite)
				case Call:
					c.SetCallHook(addr, rejectCall)
				}
			}
		}
	}
	for _, t := range traps {
		t := t
		if t.read != nil {
			c.SetReadHook(t.addr, func(*mos6502.Machine, uint16) (byte, error) {
				return t.read(m)
			})
		}
		if t.write != nil {
			c.SetWriteHook(t.addr, func(_ *mos6502.Machine, _ uint16, v byte) error {
				return t.write(m, v)
			})
		}
		if t.call != nil {
			c.SetCallHook(t.addr, func(*mos6502.Machine, uint16) (uint16, error) {
				return t.call(m)
			})
		}
	}
}

func rejectRead(_ *mos6502.Machine, addr uint16) (byte, error) {
	return 0, &AccessError{Op: Read, Addr: addr}
}

func rejectWrite(_ *mos6502.Machine, addr uint16, v byte) error {
	return &AccessError{Op: Write, Addr: addr, Data: v}
}

func rejectCall(_ *mos6502.Machine, addr uint16) (uint16, error) {
	return 0, &AccessError{Op: Call, Addr: addr}
}

// The escape flag is never set.
func (m *Machine) readEscapeFlag() (byte, error) {
	return 0, nil
}
