package beeb

// OS entry points.
const (
	OSRDCH uint16 = 0xffe0
	OSASCI uint16 = 0xffe3
	OSNEWL uint16 = 0xffe7
	OSWRCH uint16 = 0xffee
	OSWORD uint16 = 0xfff1
	OSBYTE uint16 = 0xfff4
	OSCLI  uint16 = 0xfff7
)

// Hardware and OS addresses.
const (
	ROMSEL uint16 = 0xfe30 // paging register

	osTextPointer = 0xf2 // command tail, two bytes
	romselCopy    = 0xf4 // RAM copy of ROMSEL
	errorPointer  = 0xfd // last BRK message, two bytes
	escapeFlag    = 0xff

	brkv  = 0x202
	wrchv = 0x20e

	romStart      = 0x8000
	languageEntry = 0x8000
	serviceEntry  = 0x8003

	osStart        = 0xc000
	fakeIRQHandler = 0xf000
)

// Values reported by OSBYTE.
const (
	oshwm = 0x0e00
	himem = 0x8000
)

const (
	lf = 0x0a
	cr = 0x0d
)

// Label names an address in the emulated machine.
type Label struct {
	Name string
	Addr uint16
}

// Labels returns names for the OS entry points, hardware registers and
// workspace locations handled by the machine.
func Labels() []Label {
	ls := []Label{
		{"command_tail", osTextPointer},
		{"romsel_copy", romselCopy},
		{"error_pointer", errorPointer},
		{"escape_flag", escapeFlag},
		{"brkv", brkv},
		{"wrchv", wrchv},
		{"transient_code", transient.addr},
		{"service_code", service.addr},
		{"language_entry", languageEntry},
		{"service_entry", serviceEntry},
	}
	for _, t := range traps {
		ls = append(ls, Label{t.name, t.addr})
	}
	return ls
}
