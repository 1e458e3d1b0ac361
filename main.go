// Command beeb runs BBC BASIC, and the sideways ROM utilities that work
// alongside it, on an emulated BBC Micro.
//
// Keyboard input is read from standard input and the machine's output is
// written to standard output, so BASIC can be driven by a script:
//
//	printf '10 PRINT "HELLO"\nRUN\n' | beeb -roms roms
//
// The machine stops when standard input is exhausted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/nf/beeb/beeb"
)

func main() {
	log.SetPrefix("beeb: ")
	log.SetFlags(0)

	var (
		romsFlag  = flag.String("roms", "roms", "read ROM images from `dir`")
		basicFlag = flag.String("basic", "", "use the BASIC image `name`, such as basic2 (default first basic*.rom)")
		guiFlag   = flag.Bool("gui", false, "show output in a window and read keys from it")
		devFlag   = flag.Bool("dev", false, "enable developer mode (restart when the ROM images change)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")
		traceFlag = flag.Bool("trace", false, "log recent OS calls after a fatal error")
		symsFlag  = flag.String("syms", "", "read debugger symbols from `file`")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-roms dir] [-basic name] [-gui] [-trace]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-roms dir] [-basic name] <-dev | -debug> [-syms file]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	roms, err := beeb.LoadROMDir(*romsFlag)
	if err != nil {
		log.Fatal(err)
	}
	variant, err := basicVariant(roms, *basicFlag)
	if err != nil {
		log.Fatal(err)
	}
	cfg := beeb.Config{BASICVariant: variant}

	if *devFlag || *debugFlag {
		if err := devMode(cfg, *romsFlag, *debugFlag, *traceFlag, *symsFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	if *guiFlag {
		err = guiMode(cfg, roms, *traceFlag)
	} else {
		err = run(cfg, roms, *traceFlag)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		// Already reported.
		os.Exit(1)
	}
}

// basicVariant returns the index of the named BASIC image, or of the first
// image if name is empty.
func basicVariant(roms *beeb.ROMSet, name string) (int, error) {
	if name == "" {
		if len(roms.BASIC) == 0 {
			return beeb.NoVariant, nil
		}
		return 0, nil
	}
	if v := roms.Variant(name); v != beeb.NoVariant {
		return v, nil
	}
	return beeb.NoVariant, fmt.Errorf("no BASIC image named %q (have %q)", name, roms.BASICNames)
}

func run(cfg beeb.Config, roms beeb.ROMs, trace bool) error {
	con := NewConsole(os.Stdin, os.Stdout)
	m := beeb.New(cfg, con, roms)
	err := m.Run(con)
	con.Flush()
	if err != nil {
		report(m, err, trace)
	}
	return err
}

// report logs a fatal error. Errors raised by the emulated software are
// shown as BASIC would show them; any other error is followed by the
// processor state.
func report(m *beeb.Machine, err error, trace bool) {
	var ge *beeb.GuestError
	if errors.As(err, &ge) {
		log.Printf("error: %v", ge)
		return
	}
	log.Print(err)
	log.Printf("6502 state: %s", m.Dump())
	if trace {
		log.Print("recent OS calls:")
		m.EmitTrace()
	}
}
