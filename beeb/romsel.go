package beeb

// writeROMSEL pages the selected bank's image into the paged window.
func (m *Machine) writeROMSEL(v byte) error {
	return m.selectBank(Bank(v))
}

func (m *Machine) selectBank(b Bank) error {
	rom, err := m.image(b)
	if err != nil {
		return &BankError{Bank: b, Err: err}
	}
	copy(m.cpu.Mem[romStart:romStart+ROMSize], rom[:])
	m.bank, m.paged = b, true
	m.trace.LazyPrintf("romsel: bank %d", b)
	return nil
}

func (m *Machine) image(b Bank) (*ROM, error) {
	switch b {
	case BankEditorA, BankEditorB:
	case BankBASIC:
		if m.cfg.BASICVariant == NoVariant {
			return nil, ErrNoVariant
		}
	default:
		return nil, ErrUnknownBank
	}
	return m.roms.Image(b, m.cfg.BASICVariant)
}
