package beeb

// scratch is a page of guest memory used to hold synthesized code.
type scratch struct {
	name string
	addr uint16
}

const scratchSize = 0x100

var (
	transient = scratch{"transient", 0x900}
	service   = scratch{"service", 0xb00}
)

func (s scratch) contains(addr uint16) bool {
	return addr >= s.addr && addr < s.addr+scratchSize
}

// emit copies code into s and returns the address at which it starts.
// If the code will return to ret, ret must not lie in s: the code would
// overwrite the code it returns to.
func (m *Machine) emit(s scratch, code []byte, ret uint16, returns bool) (uint16, error) {
	if returns && s.contains(ret) {
		return 0, &ReentrancyError{Buffer: s.name, Return: ret}
	}
	if len(code) > scratchSize {
		return 0, internalf("%d bytes of code for %s buffer", len(code), s.name)
	}
	copy(m.cpu.Mem[s.addr:], code)
	m.trace.LazyPrintf("emit: %d bytes at %.4x", len(code), s.addr)
	return s.addr, nil
}

// 6502 opcodes used by the code templates.
const (
	opBRK    = 0x00
	opBPL    = 0x10
	opJSR    = 0x20
	opJMP    = 0x4c
	opRTS    = 0x60
	opSTXzp  = 0x86
	opSTAabs = 0x8d
	opSTXabs = 0x8e
	opLDXimm = 0xa2
	opLDXzp  = 0xa6
	opLDAabs = 0xad
	opCMPimm = 0xc9
	opDEX    = 0xca
	opBNE    = 0xd0
)

const badCommand = 0xfe

func lo(a uint16) byte { return byte(a) }
func hi(a uint16) byte { return byte(a >> 8) }

// languageCode pages in bank and enters it as the current language.
func languageCode(bank Bank) []byte {
	return []byte{
		opLDXimm, byte(bank),
		opSTXzp, romselCopy,
		opSTXabs, lo(ROMSEL), hi(ROMSEL),
		opJMP, lo(languageEntry), hi(languageEntry),
	}
}

// serviceCode offers the service call in A to each bank from the one in X
// down to bank 0, returning as soon as a bank claims it by zeroing A.
// If no bank claims it the code raises a "Bad command" error.
func serviceCode() []byte {
	code := []byte{
		// loop:
		opSTXzp, romselCopy,
		opSTXabs, lo(ROMSEL), hi(ROMSEL),
		opJSR, lo(serviceEntry), hi(serviceEntry),
		opCMPimm, 0,
		opBNE, 1, // next
		opRTS,
		// next:
		opLDXzp, romselCopy,
		opDEX,
		opBPL, 0, // loop
	}
	code[len(code)-1] = byte(-len(code))
	code = append(code, opBRK, badCommand)
	code = append(code, "Bad command"...)
	return append(code, 0)
}

// copyByteCode copies the byte at src to dst.
func copyByteCode(src, dst uint16) []byte {
	return []byte{
		opLDAabs, lo(src), hi(src),
		opSTAabs, lo(dst), hi(dst),
		opRTS,
	}
}
