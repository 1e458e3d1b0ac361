package main

import (
	"errors"
	"log"
	"sync"

	"github.com/nf/beeb/beeb"
	"github.com/nf/beeb/mos6502"
)

// Runner runs a machine, feeding it keys sent from other goroutines.
// In dev mode a fatal error leaves the runner waiting for a Reset rather
// than returning.
type Runner struct {
	cfg   beeb.Config
	out   beeb.Driver
	dev   bool
	trace bool

	// state, if set, is called after the machine starts or resumes and
	// periodically while it runs.
	state func(m *beeb.Machine, err error)
	// pending, if set, is called with the line being typed.
	pending func(line string)

	brk    uint16
	brkSet bool

	keys      chan []byte
	do        chan call
	cont      chan bool
	reset     chan beeb.ROMs
	resetDone chan bool
	exit      chan bool
	exitOnce  sync.Once
}

func NewRunner(cfg beeb.Config, out beeb.Driver, devMode, trace bool) *Runner {
	return &Runner{
		cfg:       cfg,
		out:       out,
		dev:       devMode,
		trace:     trace,
		keys:      make(chan []byte, 64),
		do:        make(chan call),
		cont:      make(chan bool),
		reset:     make(chan beeb.ROMs),
		resetDone: make(chan bool),
		exit:      make(chan bool),
	}
}

// Keys queues keyboard input for the machine.
func (r *Runner) Keys(b ...byte) {
	select {
	case r.keys <- b:
	case <-r.exit:
	}
}

type call struct {
	f    func(m *beeb.Machine)
	done chan bool
}

// Do calls f with the current machine on the goroutine running it, and
// returns when f returns.
func (r *Runner) Do(f func(m *beeb.Machine)) {
	c := call{f, make(chan bool)}
	select {
	case r.do <- c:
		<-c.done
	case <-r.exit:
	}
}

// Break sets the processor breakpoint to addr, or clears it if on is
// false. The breakpoint carries over to machines started by Reset.
func (r *Runner) Break(addr uint16, on bool) {
	r.Do(func(m *beeb.Machine) {
		r.brk, r.brkSet = addr, on
		r.setBreak(m)
	})
}

func (r *Runner) setBreak(m *beeb.Machine) {
	if r.brkSet {
		m.CPU().SetBreak(r.brk)
	} else {
		m.CPU().ClearBreak()
	}
}

// Continue resumes a machine stopped at the breakpoint.
func (r *Runner) Continue() {
	select {
	case r.cont <- true:
	case <-r.exit:
	}
}

// Reset replaces the running machine with a new one using roms.
func (r *Runner) Reset(roms beeb.ROMs) {
	if !r.dev {
		panic("Reset called while not running in dev mode")
	}
	select {
	case r.reset <- roms:
		<-r.resetDone
	case <-r.exit:
	}
}

// Exit stops Run.
func (r *Runner) Exit() { r.exitOnce.Do(func() { close(r.exit) }) }

// errExit is returned by Run when it stops at the request of Exit.
var errExit = errors.New("exit")

// Run starts a machine with roms and runs it until it fails or Exit is
// called. Failures are reported before Run returns them.
func (r *Runner) Run(roms beeb.ROMs) error {
	var (
		m   *beeb.Machine
		in  typeahead
		err error
	)
	start := func(roms beeb.ROMs) {
		m = beeb.New(r.cfg, r.out, roms)
		r.setBreak(m)
		if r.state != nil {
			m.SetPoll(func(*mos6502.Machine) { r.state(m, nil) })
		}
		in.reset()
		err = r.check(m, m.Start())
	}
	start(roms)
	for {
		if err != nil && !r.dev {
			return err
		}
		select {
		case b := <-r.keys:
			in.push(b...)
			if err == nil {
				err = r.check(m, in.feed(m))
			}
			if r.pending != nil {
				r.pending(in.pending())
			}
		case c := <-r.do:
			c.f(m)
			close(c.done)
		case <-r.cont:
			if err == nil && m.State() == beeb.Stopped {
				err = m.Continue()
				if err == nil {
					err = in.feed(m)
				}
				err = r.check(m, err)
			}
			if r.pending != nil {
				r.pending(in.pending())
			}
		case roms := <-r.reset:
			log.Printf("dev: reset")
			start(roms)
			r.resetDone <- true
		case <-r.exit:
			return errExit
		}
	}
}

func (r *Runner) check(m *beeb.Machine, err error) error {
	if r.state != nil {
		r.state(m, err)
	}
	if err != nil {
		report(m, err, r.trace)
	}
	if f, ok := r.out.(interface{ Flush() error }); ok {
		f.Flush()
	}
	return err
}
