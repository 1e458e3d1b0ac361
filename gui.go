package main

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/beeb/beeb"
)

// guiMode runs the machine with its output shown in a window and keys
// read from the window, until the window closes or the machine fails.
func guiMode(cfg beeb.Config, roms beeb.ROMs, trace bool) error {
	var (
		scr  = newTextScreen()
		r    = NewRunner(cfg, scr, false, trace)
		done = make(chan error, 1)
	)
	r.pending = scr.setPending
	go func() {
		done <- r.Run(roms)
		r.Exit()
	}()
	runGUI(scr, r)
	r.Exit()
	select {
	case err := <-done:
		if err != errExit {
			return err
		}
	case <-time.After(time.Second):
		// The machine is busy and will not see the exit.
	}
	return nil
}

func runGUI(scr *textScreen, r *Runner) {
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "beeb",
			Width:  screenSize().X * 2,
			Height: screenSize().Y * 2,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer w.Release()

		buf, err := s.NewBuffer(screenSize())
		if err != nil {
			log.Fatal(err)
		}
		defer buf.Release()
		tex, err := s.NewTexture(screenSize())
		if err != nil {
			log.Fatal(err)
		}
		defer tex.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-r.exit:
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				}
			}
		}()

		var (
			sz    size.Event
			drawn = -1
		)
		for {
			switch e := w.NextEvent().(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				drawn = -1

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Direction == key.DirRelease {
					break
				}
				if b, ok := keyByte(e); ok {
					r.Keys(b)
				}

			case paint.Event:
				drawn = -1

			case update:
				if g := scr.generation(); g != drawn {
					drawn = g
					scr.draw(buf.RGBA())
					tex.Upload(image.Point{}, buf, buf.Bounds())
					w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
					w.Publish()
				}

			case error:
				log.Print(e)
			}
		}
	})
}

// BBC Micro key codes for keys without a character.
const (
	keyEscape = 0x1b
	keyLeft   = 0x88
	keyRight  = 0x89
	keyDown   = 0x8a
	keyUp     = 0x8b
)

// keyByte returns the BBC Micro key code for a key press.
func keyByte(e key.Event) (byte, bool) {
	switch e.Code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		return keyReturn, true
	case key.CodeDeleteBackspace, key.CodeDeleteForward:
		return keyDelete, true
	case key.CodeEscape:
		return keyEscape, true
	case key.CodeLeftArrow:
		return keyLeft, true
	case key.CodeRightArrow:
		return keyRight, true
	case key.CodeDownArrow:
		return keyDown, true
	case key.CodeUpArrow:
		return keyUp, true
	}
	if e.Modifiers&key.ModControl != 0 && e.Rune >= '@' && e.Rune <= '_' {
		return byte(e.Rune - '@'), true
	}
	if e.Modifiers&key.ModControl != 0 && e.Rune >= 'a' && e.Rune <= 'z' {
		return byte(e.Rune - 'a' + 1), true
	}
	if e.Rune >= 0x20 && e.Rune < 0x7f {
		return byte(e.Rune), true
	}
	return 0, false
}
