package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/beeb/beeb"
)

// devMode runs the machine until input ends or the debugger exits,
// restarting it whenever a ROM image in romDir changes. Fatal machine
// errors are logged and the machine waits for the next change.
func devMode(cfg beeb.Config, romDir string, debug, trace bool, symFile string) error {
	romDir = filepath.Clean(romDir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(romDir); err != nil {
		return err
	}

	var (
		con = NewConsole(os.Stdin, os.Stdout)
		out beeb.Driver
		d   *debugger
	)
	if debug {
		syms, err := machineSymbols(symFile)
		if err != nil {
			return err
		}
		d = newDebugger(syms)
		out = d.output
	} else {
		out = con
	}
	r := NewRunner(cfg, out, true, trace)

	if d != nil {
		d.r = r
		r.state = d.StateFunc
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("beeb: ")
			r.Exit()
		}()
	} else {
		go func() {
			if err := readLines(os.Stdin, r); err != nil {
				log.Printf("dev: reading input: %v", err)
			}
			r.Exit()
		}()
	}

	romCh := make(chan beeb.ROMs)
	go func() {
		started := false
		load := time.After(1 * time.Millisecond)
		for {
			select {
			case <-load:
				log.Printf("dev: load %s", romDir)
				roms, err := beeb.LoadROMDir(romDir)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if !started {
					log.Printf("dev: start")
					romCh <- roms
					started = true
				} else {
					r.Reset(roms)
				}
			case ev := <-watcher.Event:
				if filepath.Ext(ev.Name) == ".rom" && !ev.IsAttrib() {
					load = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()

	var roms beeb.ROMs
	select {
	case roms = <-romCh:
	case <-r.exit:
		return nil
	}
	if err := r.Run(roms); err != errExit {
		return err
	}
	return nil
}
