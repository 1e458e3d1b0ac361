package beeb

import (
	"errors"
	"fmt"
)

// Every error returned by a Machine is fatal: the emulated machine cannot
// continue after it. GuestError is raised by the software being emulated;
// all other types report that the software used part of the machine that
// is not emulated.

// GuestError reports a BRK executed by the emulated software, which on this
// machine only happens when that software raises an error.
type GuestError struct {
	Code byte
	Msg  string
}

func (e *GuestError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Msg, e.Code)
}

// AccessError reports a read, write or call outside the emulated surface.
type AccessError struct {
	Op   Access
	Addr uint16
	Data byte
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("unexpected %s at address %.4x, data %.2x", e.Op, e.Addr, e.Data)
}

// UnsupportedError reports an OS call selector, or VDU variable, that is
// not emulated.
type UnsupportedError struct {
	What     string
	Selector byte
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported %s &%.2X", e.What, e.Selector)
}

// StateError reports a resume call that does not match the input the
// machine is waiting for.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s called while machine is %v", e.Op, e.State)
}

// LineTooLongError reports an input line longer than the emulated
// software's buffer.
type LineTooLongError struct {
	Len, Max int
}

func (e *LineTooLongError) Error() string {
	return fmt.Sprintf("line too long (%d characters, maximum %d)", e.Len, e.Max)
}

var (
	ErrUnknownBank   = errors.New("invalid ROM bank")
	ErrNoVariant     = errors.New("no BASIC version selected")
	ErrNotConfigured = errors.New("no ROM image configured")
)

// BankError reports a write to ROMSEL that cannot be honoured.
type BankError struct {
	Bank Bank
	Err  error
}

func (e *BankError) Error() string {
	return fmt.Sprintf("ROM bank %d: %v", e.Bank, e.Err)
}

func (e *BankError) Unwrap() error { return e.Err }

// ReentrancyError reports code being synthesized into a scratch buffer
// that holds the code that will run after it.
type ReentrancyError struct {
	Buffer string
	Return uint16
}

func (e *ReentrancyError) Error() string {
	return fmt.Sprintf("%s code buffer reused while returning to %.4x", e.Buffer, e.Return)
}

// InternalError reports any other condition the emulation does not handle.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func internalf(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
