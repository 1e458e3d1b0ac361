package beeb

import "log"

// backlog keeps the most recent trap events in a ring, formatting them
// only when they are emitted.
type backlog struct {
	ring      [maxBacklog]logEntry
	next, len int
}

type logEntry struct {
	format string
	args   []any
}

const maxBacklog = 100

func (b *backlog) LazyPrintf(format string, args ...any) {
	b.ring[b.next] = logEntry{format, args}
	b.next = (b.next + 1) % maxBacklog
	if b.len < maxBacklog {
		b.len++
	}
}

// Emit logs the retained entries, oldest first.
func (b *backlog) Emit() {
	first := b.next - b.len + maxBacklog
	for i := 0; i < b.len; i++ {
		e := b.ring[(first+i)%maxBacklog]
		log.Printf(e.format, e.args...)
	}
}
