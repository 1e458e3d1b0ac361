package main

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	screenCols = 40
	screenRows = 25
)

// Character cell size in pixels.
var (
	cellW = basicfont.Face7x13.Advance
	cellH = basicfont.Face7x13.Height
)

// textScreen is a mode 7 sized text display driven by VDU codes. It is
// written by the machine's goroutine and drawn by the GUI.
type textScreen struct {
	mu      sync.Mutex
	cells   [screenRows][screenCols]byte
	x, y    int
	params  []byte // parameters collected for code
	code    byte
	want    int // parameters still to come
	pending string
	gen     int // incremented on every change
}

// vduParams is the number of parameter bytes following each VDU code.
var vduParams = [32]int{
	1: 1, 17: 1, 18: 2, 19: 5, 22: 1, 23: 9,
	24: 8, 25: 5, 28: 4, 29: 4, 31: 2,
}

func newTextScreen() *textScreen {
	s := &textScreen{}
	s.clear()
	return s
}

func (s *textScreen) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.want > 0 {
		s.params = append(s.params, c)
		if s.want--; s.want == 0 {
			s.control(s.code, s.params)
		}
		return nil
	}
	if c < 32 {
		if n := vduParams[c]; n > 0 {
			s.code, s.params, s.want = c, s.params[:0], n
			return nil
		}
		s.control(c, nil)
		return nil
	}
	if c == 127 {
		if s.x > 0 {
			s.x--
			s.cells[s.y][s.x] = ' '
		}
		return nil
	}
	s.cells[s.y][s.x] = c
	if s.x++; s.x == screenCols {
		s.x = 0
		s.lineFeed()
	}
	return nil
}

func (s *textScreen) control(c byte, params []byte) {
	switch c {
	case 8: // cursor left
		if s.x > 0 {
			s.x--
		}
	case 9: // cursor right
		if s.x < screenCols-1 {
			s.x++
		}
	case 10:
		s.lineFeed()
	case 11: // cursor up
		if s.y > 0 {
			s.y--
		}
	case 12, 22: // clear screen, change mode
		s.clear()
	case 13:
		s.x = 0
	case 30:
		s.x, s.y = 0, 0
	case 31: // move cursor
		if x, y := int(params[0]), int(params[1]); x < screenCols && y < screenRows {
			s.x, s.y = x, y
		}
	}
}

func (s *textScreen) lineFeed() {
	if s.y < screenRows-1 {
		s.y++
		return
	}
	copy(s.cells[:], s.cells[1:])
	for i := range s.cells[screenRows-1] {
		s.cells[screenRows-1][i] = ' '
	}
}

func (s *textScreen) clear() {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = ' '
		}
	}
	s.x, s.y = 0, 0
}

// setPending sets the line being typed, shown at the cursor.
func (s *textScreen) setPending(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line != s.pending {
		s.pending = line
		s.gen++
	}
}

// generation returns a number that changes whenever the screen does.
func (s *textScreen) generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *textScreen) line(y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.cells[y][:])
}

func screenSize() image.Point {
	return image.Pt(screenCols*cellW, screenRows*cellH)
}

var (
	screenFG = color.RGBA{0xff, 0xff, 0xff, 0xff}
	screenBG = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// draw renders the screen, the pending input and the cursor into dst,
// which should be screenSize pixels.
func (s *textScreen) draw(dst *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(dst, dst.Bounds(), image.NewUniform(screenBG), image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(screenFG),
		Face: basicfont.Face7x13,
	}
	for y := range s.cells {
		d.Dot = fixed.P(0, y*cellH+basicfont.Face7x13.Ascent)
		d.DrawBytes(s.cells[y][:])
	}

	// The pending line wraps like output would.
	x, y := s.x, s.y
	for i := 0; i < len(s.pending) && y < screenRows; i++ {
		d.Dot = fixed.P(x*cellW, y*cellH+basicfont.Face7x13.Ascent)
		d.DrawString(s.pending[i : i+1])
		if x++; x == screenCols {
			x, y = 0, y+1
		}
	}
	if y < screenRows {
		r := image.Rect(x*cellW, (y+1)*cellH-2, (x+1)*cellW, (y+1)*cellH)
		draw.Draw(dst, r, image.NewUniform(screenFG), image.Point{}, draw.Src)
	}
}
