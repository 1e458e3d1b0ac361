// Package beeb implements just enough of a BBC Micro to run its BASIC
// interpreter and the utilities that run alongside it in sideways ROM.
//
// The emulated software runs on a 6502 until it needs input, at which point
// the Machine suspends and the host supplies a character or a line to
// resume it. Every OS call, workspace location and vector the software may
// use is listed in the trap table; any other use of the OS is fatal.
package beeb

import (
	"errors"
	"io"

	"github.com/nf/beeb/mos6502"
)

// State is the state of a Machine between calls.
type State int

const (
	Running State = iota
	AwaitingCharacter
	AwaitingLine
	Stopped // at the processor's breakpoint
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingCharacter:
		return "awaiting character"
	case AwaitingLine:
		return "awaiting line"
	case Stopped:
		return "stopped"
	}
	return "invalid state"
}

// Driver receives the characters written by the emulated software.
type Driver interface {
	io.ByteWriter
}

// NoVariant selects no BASIC image; paging in BASIC fails.
const NoVariant = -1

// Config holds the machine configuration.
type Config struct {
	// BASICVariant selects the image passed to ROMs for the BASIC bank.
	BASICVariant int
}

// Machine is an emulated BBC Micro.
type Machine struct {
	cpu  *mos6502.Machine
	cfg  Config
	drv  Driver
	roms ROMs

	state     State
	started   bool
	lineBlock uint16 // OSWORD 0 control block while awaiting a line

	bank  Bank
	paged bool

	vdu   vduVariables
	trace backlog
	poll  mos6502.PollFunc
}

// errYield is returned by a trap that suspends the machine.
var errYield = errors.New("yield")

// New returns a machine that writes output to drv and pages ROM images
// from roms. Start must be called to begin execution.
func New(cfg Config, drv Driver, roms ROMs) *Machine {
	m := &Machine{
		cpu:  mos6502.NewMachine(),
		cfg:  cfg,
		drv:  drv,
		roms: roms,
	}
	m.cpu.Reset()
	m.installTraps()
	m.cpu.Mem[wrchv] = lo(OSWRCH)
	m.cpu.Mem[wrchv+1] = hi(OSWRCH)
	m.cpu.SetVector(mos6502.IRQ, fakeIRQHandler)
	m.vdu.init()
	return m
}

// SetPoll sets a function to be called periodically while the machine runs.
func (m *Machine) SetPoll(f mos6502.PollFunc) { m.poll = f }

// Start enters BASIC and runs until the machine suspends for input,
// returning nil, or fails.
func (m *Machine) Start() error {
	if m.started {
		return internalf("machine already started")
	}
	m.started = true
	m.cpu.S = 0xff
	pc, err := m.enterLanguage()
	if err != nil {
		return err
	}
	m.cpu.PC = pc
	return m.run()
}

// ResumeChar returns c from the pending OSRDCH and runs until the machine
// next suspends or fails.
func (m *Machine) ResumeChar(c byte) error {
	if m.state != AwaitingCharacter {
		return &StateError{Op: "ResumeChar", State: m.state}
	}
	cpu := m.cpu
	cpu.A = c
	cpu.P &^= mos6502.Carry
	cpu.PC = m.pullReturn()
	return m.run()
}

// ResumeLine completes the pending OSWORD 0 with line, which must not
// contain CR, and runs until the machine next suspends or fails. The line
// is echoed to the driver as it would have been typed.
func (m *Machine) ResumeLine(line string) error {
	if m.state != AwaitingLine {
		return &StateError{Op: "ResumeLine", State: m.state}
	}
	c := m.cpu
	buf, err := m.word(m.lineBlock)
	if err != nil {
		return err
	}
	if buf > 0xff00 {
		return internalf("OSWORD 0 buffer at %.4x is too near top of memory", buf)
	}
	limit := int(c.Mem[m.lineBlock+2])
	if len(line) > limit {
		return &LineTooLongError{Len: len(line), Max: limit}
	}
	for i := 0; i < len(line); i++ {
		if err := m.output(line[i]); err != nil {
			return err
		}
	}
	if err := m.newline(); err != nil {
		return err
	}
	n := copy(c.Mem[buf:], line)
	c.Mem[buf+uint16(n)] = cr
	c.Y = byte(n)
	c.P &^= mos6502.Carry
	c.PC = m.pullReturn()
	return m.run()
}

// Continue resumes a machine stopped at a breakpoint.
func (m *Machine) Continue() error {
	if m.state != Stopped {
		return &StateError{Op: "Continue", State: m.state}
	}
	return m.run()
}

func (m *Machine) run() error {
	m.state = Running
	err := m.cpu.Run(m.poll)
	if err == mos6502.ErrBreak {
		m.state = Stopped
		m.trace.LazyPrintf("break at %.4x", m.cpu.PC)
		err = errYield
	}
	if err == errYield {
		if m.poll != nil {
			m.poll(m.cpu)
		}
		return nil
	}
	m.trace.LazyPrintf("fatal: %v", err)
	return err
}

// State reports whether the machine is waiting for input, and of which
// kind, or stopped at a breakpoint.
func (m *Machine) State() State { return m.state }

// Bank returns the bank last paged in, if any.
func (m *Machine) Bank() (Bank, bool) { return m.bank, m.paged }

// CPU returns the emulated processor.
func (m *Machine) CPU() *mos6502.Machine { return m.cpu }

// Dump describes the processor state and the instruction at PC.
func (m *Machine) Dump() string {
	dis, _ := m.cpu.Disassemble(m.cpu.PC)
	return m.cpu.String() + " " + dis
}

// EmitTrace logs the most recent OS calls and bank switches.
func (m *Machine) EmitTrace() { m.trace.Emit() }

// Input supplies keyboard input to Run.
type Input interface {
	ReadChar() (byte, error)
	ReadLine() (string, error)
}

// Run starts the machine and resumes it with input from in until the
// machine fails or in returns an error. If in returns io.EOF, Run returns
// nil.
func (m *Machine) Run(in Input) error {
	err := m.Start()
	for err == nil {
		switch m.state {
		case AwaitingCharacter:
			var c byte
			if c, err = in.ReadChar(); err == nil {
				err = m.ResumeChar(c)
			}
		case AwaitingLine:
			var line string
			if line, err = in.ReadLine(); err == nil {
				err = m.ResumeLine(line)
			}
		default:
			err = internalf("machine suspended while %v", m.state)
		}
	}
	if err == io.EOF {
		return nil
	}
	return err
}
