package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for the duel journal.
type EventLogger interface {
	Log(entry Entry)
	Entries() []Entry
}

// --- MemoryLogger: stores entries in memory for test assertions ---

type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
	seq     int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	entry.Seq = l.seq
	l.entries = append(l.entries, entry)
}

func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// EntriesOfKind returns all entries of kind k.
func (l *MemoryLogger) EntriesOfKind(k Kind) []Entry {
	var result []Entry
	for _, e := range l.Entries() {
		if e.Kind == k {
			result = append(result, e)
		}
	}
	return result
}

// LastEntry returns the most recent entry, or a zero entry if none.
func (l *MemoryLogger) LastEntry() Entry {
	entries := l.Entries()
	if len(entries) == 0 {
		return Entry{}
	}
	return entries[len(entries)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(entry Entry) {
	l.MemoryLogger.Log(entry)
	fmt.Fprintln(l.w, FormatEntry(entry))
}

// --- Formatting ---

// FormatEntry formats a single entry as a human-readable line.
func FormatEntry(e Entry) string {
	return fmt.Sprintf("T%-2d %-16s| %s", e.Turn, e.Phase, e.Details)
}

// FormatAll formats all entries as a multi-line string.
func FormatAll(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(FormatEntry(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}
