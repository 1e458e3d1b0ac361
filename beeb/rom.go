package beeb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Bank identifies a sideways ROM.
type Bank byte

const (
	BankEditorA Bank = 0
	BankEditorB Bank = 1
	BankBASIC   Bank = 12
)

// firstServiceBank is the highest bank offered service calls; banks are
// offered them in descending order down to bank 0.
const firstServiceBank = BankEditorB

// ROMSize is the size of a sideways ROM image and of the paged window.
const ROMSize = 0x4000

// ROM is a sideways ROM image.
type ROM [ROMSize]byte

// ROMs provides the image for a bank. The BASIC bank has one image per
// variant; the variant is ignored for the other banks.
type ROMs interface {
	Image(b Bank, variant int) (*ROM, error)
}

// ROMSet is a ROMs implementation holding images in memory.
type ROMSet struct {
	EditorA, EditorB *ROM

	// BASIC holds the interpreter images, indexed by variant, and their
	// names.
	BASIC      []*ROM
	BASICNames []string
}

func (s *ROMSet) Image(b Bank, variant int) (*ROM, error) {
	var r *ROM
	switch b {
	case BankEditorA:
		r = s.EditorA
	case BankEditorB:
		r = s.EditorB
	case BankBASIC:
		if variant < 0 || variant >= len(s.BASIC) {
			return nil, fmt.Errorf("BASIC variant %d: %w", variant, ErrNotConfigured)
		}
		r = s.BASIC[variant]
	default:
		return nil, ErrUnknownBank
	}
	if r == nil {
		return nil, ErrNotConfigured
	}
	return r, nil
}

// Variant returns the index of the named BASIC image, or NoVariant.
func (s *ROMSet) Variant(name string) int {
	for i, n := range s.BASICNames {
		if n == name {
			return i
		}
	}
	return NoVariant
}

// LoadROMDir reads the images in dir: editor-a.rom and editor-b.rom for
// the editor banks and basic*.rom, in name order, for the BASIC variants.
// Missing editor images are left unset.
func LoadROMDir(dir string) (*ROMSet, error) {
	var (
		s   ROMSet
		err error
	)
	if s.EditorA, err = readOptionalROM(filepath.Join(dir, "editor-a.rom")); err != nil {
		return nil, err
	}
	if s.EditorB, err = readOptionalROM(filepath.Join(dir, "editor-b.rom")); err != nil {
		return nil, err
	}
	paths, err := filepath.Glob(filepath.Join(dir, "basic*.rom"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	for _, p := range paths {
		r, err := ReadROM(p)
		if err != nil {
			return nil, err
		}
		s.BASIC = append(s.BASIC, r)
		s.BASICNames = append(s.BASICNames, strings.TrimSuffix(filepath.Base(p), ".rom"))
	}
	return &s, nil
}

// ReadROM reads a ROM image, which must be exactly ROMSize bytes.
func ReadROM(name string) (*ROM, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if len(b) != ROMSize {
		return nil, fmt.Errorf("%s: ROM image is %d bytes, want %d", name, len(b), ROMSize)
	}
	var r ROM
	copy(r[:], b)
	return &r, nil
}

func readOptionalROM(name string) (*ROM, error) {
	r, err := ReadROM(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return r, err
}
