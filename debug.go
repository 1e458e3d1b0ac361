package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/beeb/beeb"
)

// debugger is a terminal UI showing the machine's output, its processor
// state and watched memory. Text typed into the input field is sent to the
// machine as keys, ending with Return; lines starting with a colon are
// debugger commands.
type debugger struct {
	r *Runner

	output *viewDriver

	log   *tview.TextView
	out   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	syms symbols

	mu      sync.Mutex
	watches []watch
}

type watch struct {
	symbol
	short bool
}

func newDebugger(syms symbols) *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		out: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app:  tview.NewApplication(),
		syms: syms,
	}
	d.output = &viewDriver{w: d.out}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.out.SetChangedFunc(func() { d.app.Draw() })
	d.out.SetBorder(true).SetTitle("output")
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.out, 0, 3, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case ":b", ":break", ":w", ":w2", ":watch", ":watch2", ":dis":
				for _, s := range d.syms.withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := d.input.GetText()
		d.input.SetText("")
		if !strings.HasPrefix(text, ":") {
			d.r.Keys(append([]byte(text), keyReturn)...)
			return
		}
		d.command(text)
	})
	return d
}

func (d *debugger) command(text string) {
	cmd, arg, _ := strings.Cut(text, " ")
	switch cmd {
	case ":exit":
		d.app.Stop()
	case ":trace":
		go d.r.Do(func(m *beeb.Machine) { m.EmitTrace() })
	case ":b", ":break":
		if arg == "" {
			go d.r.Break(0, false)
			log.Print("cleared break")
			return
		}
		s, ok := d.syms.resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		go d.r.Break(s.addr, true)
		log.Printf("set break %.4x", s.addr)
	case ":c", ":cont", ":continue":
		go d.r.Continue()
	case ":w", ":w2", ":watch", ":watch2":
		s, ok := d.syms.resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches,
			watch{symbol: s, short: strings.HasSuffix(cmd, "2")})
		d.mu.Unlock()
		log.Printf("watching %.4x", s.addr)
	case ":unwatch":
		d.mu.Lock()
		d.watches = nil
		d.mu.Unlock()
		log.Print("cleared watches")
	case ":dis":
		s, ok := d.syms.resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		go d.r.Do(func(m *beeb.Machine) {
			log.Print(disassemble(d.syms, m, s.addr, 8))
		})
	default:
		log.Printf("unknown command %q", cmd)
	}
}

func (d *debugger) Run() error { return d.app.Run() }

// StateFunc is called on the machine's goroutine to refresh the display.
func (d *debugger) StateFunc(m *beeb.Machine, err error) {
	var (
		watch   = d.watchContent(m)
		state   = stateMsg(d.syms, m, err)
		running = m.State() == beeb.Running
	)
	d.app.QueueUpdateDraw(func() {
		switch {
		case err != nil:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		case running:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		default:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		}
		d.watch.SetText(watch)
		d.state.SetText(state)
	})
}

func stateMsg(syms symbols, m *beeb.Machine, err error) string {
	var (
		cpu      = m.CPU()
		dis, _   = cpu.Disassemble(cpu.PC)
		pcSym    string
		kind     string
		bankInfo = "no bank"
	)
	if s := syms.forAddr(cpu.PC); len(s) > 0 {
		pcSym = s[0].String()
	}
	switch {
	case err != nil:
		kind = "[HALT!]"
	case m.State() == beeb.AwaitingCharacter:
		kind = "[char] "
	case m.State() == beeb.AwaitingLine:
		kind = "[line] "
	case m.State() == beeb.Stopped:
		kind = "[break]"
	default:
		kind = "       "
	}
	if b, ok := m.Bank(); ok {
		bankInfo = fmt.Sprintf("bank %d", b)
	}
	detail := m.State().String()
	if err != nil {
		detail = err.Error()
	}
	return fmt.Sprintf("%.4x %-14s %s %s\n%v\n%s: %s\n",
		cpu.PC, dis, kind, pcSym, cpu, bankInfo, detail)
}

// disassemble lists n instructions starting at addr.
func disassemble(syms symbols, m *beeb.Machine, addr uint16, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		dis, size := m.CPU().Disassemble(addr)
		fmt.Fprintf(&b, "\n%.4x %s", addr, dis)
		if s := syms.forAddr(addr); len(s) > 0 {
			fmt.Fprintf(&b, " ; %s", s[0].label)
		}
		addr += uint16(size)
	}
	return b.String()
}

func (d *debugger) watchContent(m *beeb.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var (
		b   strings.Builder
		mem = &m.CPU().Mem
	)
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s [%.4x] ", w.label, w.addr)
		if w.short {
			fmt.Fprintf(&b, "%.2x%.2x", mem[w.addr+1], mem[w.addr])
		} else {
			fmt.Fprintf(&b, "  %.2x", mem[w.addr])
		}
	}
	return b.String()
}

// viewDriver writes the machine's output to a view a line at a time.
type viewDriver struct {
	w   io.Writer
	buf []byte
}

func (d *viewDriver) WriteByte(b byte) error {
	switch b {
	case '\r':
		return nil
	case '\n':
		d.buf = append(d.buf, b)
		return d.Flush()
	}
	d.buf = append(d.buf, b)
	return nil
}

func (d *viewDriver) Flush() error {
	if len(d.buf) == 0 {
		return nil
	}
	_, err := d.w.Write(d.buf)
	d.buf = d.buf[:0]
	return err
}
