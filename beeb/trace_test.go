package beeb

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
)

func TestBacklog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	flags := log.Flags()
	log.SetFlags(0)
	defer log.SetFlags(flags)

	var b backlog
	for i := 0; i < maxBacklog+5; i++ {
		b.LazyPrintf("entry %d", i)
	}
	b.Emit()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != maxBacklog {
		t.Fatalf("emitted %d lines, want %d", len(lines), maxBacklog)
	}
	if lines[0] != "entry 5" || lines[len(lines)-1] != fmt.Sprintf("entry %d", maxBacklog+4) {
		t.Errorf("emitted %q ... %q", lines[0], lines[len(lines)-1])
	}

	buf.Reset()
	var short backlog
	short.LazyPrintf("one")
	short.LazyPrintf("two")
	short.Emit()
	if got := buf.String(); got != "one\ntwo\n" {
		t.Errorf("partly filled backlog emitted %q", got)
	}
}
