package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console connects a machine to the standard streams. It is both the
// machine's output driver and its input.
//
// When the input is a terminal, characters are read in raw mode and lines
// in the terminal's normal mode. The terminal echoes lines as they are
// typed, so the machine's own echo of each line is dropped.
type Console struct {
	in  *bufio.Reader
	out *bufio.Writer

	fd     int    // input terminal, or -1
	echoed []byte // pending output already echoed by the terminal
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
		fd:  -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
	}
	return c
}

// WriteByte writes output from the machine. The machine ends lines with
// LF CR; CR is dropped.
func (c *Console) WriteByte(b byte) error {
	if len(c.echoed) > 0 {
		if b == c.echoed[0] {
			c.echoed = c.echoed[1:]
			return nil
		}
		c.echoed = nil
	}
	switch b {
	case '\r':
		return nil
	case '\n':
		if err := c.out.WriteByte(b); err != nil {
			return err
		}
		return c.out.Flush()
	}
	return c.out.WriteByte(b)
}

func (c *Console) Flush() error { return c.out.Flush() }

const ctrlC = 0x03

// ReadChar reads a key. Newline is read as Return. On a terminal, Ctrl-C
// ends the input.
func (c *Console) ReadChar() (byte, error) {
	if err := c.out.Flush(); err != nil {
		return 0, err
	}
	if c.fd >= 0 {
		state, err := term.MakeRaw(c.fd)
		if err != nil {
			return 0, err
		}
		defer term.Restore(c.fd, state)
	}
	b, err := c.in.ReadByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b == '\n':
		b = keyReturn
	case b == ctrlC && c.fd >= 0:
		return 0, io.EOF
	}
	return b, nil
}

// ReadLine reads a line without its terminator. A final line without a
// terminator is returned before io.EOF.
func (c *Console) ReadLine() (string, error) {
	if err := c.out.Flush(); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if c.fd >= 0 {
		c.echoed = []byte(line + "\n")
	}
	return line, nil
}

// readLines sends each line read from in to r as typed keys, ending it
// with Return, until in is exhausted.
func readLines(in io.Reader, r *Runner) error {
	s := bufio.NewScanner(in)
	for s.Scan() {
		r.Keys(append([]byte(strings.TrimRight(s.Text(), "\r")), keyReturn)...)
	}
	return s.Err()
}
