package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nf/beeb/beeb"
)

type symbols []symbol

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.4x)", s.label, s.addr) }

func (s symbols) forAddr(addr uint16) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol for a label or a hexadecimal address,
// written with an optional & or $ prefix.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := parseAddr(arg)
	if err != nil {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: fmt.Sprintf("&%.4X", addr)}, true
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "&"), "$")
	v, err := strconv.ParseUint(s, 16, 16)
	return uint16(v), err
}

// machineSymbols returns the labels of the emulated OS, plus those in
// symFile if it is not empty. Each line of symFile holds a label and a
// hexadecimal address; blank lines and lines starting with # are ignored.
func machineSymbols(symFile string) (symbols, error) {
	var ss symbols
	for _, l := range beeb.Labels() {
		ss = append(ss, symbol{addr: l.Addr, label: l.Name})
	}
	if symFile != "" {
		more, err := parseSymbols(symFile)
		if err != nil {
			return nil, err
		}
		ss = append(ss, more...)
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

func parseSymbols(symFile string) (symbols, error) {
	f, err := os.Open(symFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var (
		ss   symbols
		s    = bufio.NewScanner(f)
		line = 0
	)
	for s.Scan() {
		line++
		t := strings.TrimSpace(s.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		fields := strings.Fields(t)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want label and address, got %q", symFile, line, t)
		}
		addr, err := parseAddr(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid address %q", symFile, line, fields[1])
		}
		ss = append(ss, symbol{addr: addr, label: fields[0]})
	}
	return ss, s.Err()
}
