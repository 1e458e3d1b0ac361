package beeb

// vduVariables is the table of VDU variables readable with OSBYTE &A0.
// Only the entries set by New are defined.
type vduVariables struct {
	val [0x100]byte
	set [0x100]bool
}

func (t *vduVariables) define(i, v byte) {
	t.val[i] = v
	t.set[i] = true
}

func (t *vduVariables) get(i byte) (byte, error) {
	if !t.set[i] {
		return 0, &UnsupportedError{What: "VDU variable", Selector: i}
	}
	return t.val[i], nil
}

// Screen mode 7 and its memory map type.
func (t *vduVariables) init() {
	t.define(0x55, 7)
	t.define(0x56, 4)
}
