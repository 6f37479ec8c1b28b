package log

import (
	"encoding/hex"
	"io"
	"strings"
	"sync"
	"time"
)

// RawLogger records raw HID report bytes as they cross the transport.
// Implementations must be safe for concurrent use; reports arrive from the
// probe engine and from transport reader goroutines at the same time.
type RawLogger interface {
	// Report logs one frame. direction describes what happened to it
	// ("send feature", "recv", ...), path names the interface.
	Report(direction, path string, data []byte)
}

// NewRaw returns a RawLogger writing dash-separated hex dumps to w.
// A nil writer yields a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	if w == nil {
		return nopRaw{}
	}
	return &rawWriter{w: w}
}

type nopRaw struct{}

func (nopRaw) Report(string, string, []byte) {}

type rawWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *rawWriter) Report(direction, path string, data []byte) {
	line := time.Now().Format("2006-01-02T15:04:05.000000Z07:00") +
		" " + direction + " " + path + " " + hexDump(data) + "\n"
	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}

func hexDump(b []byte) string {
	digits := hex.EncodeToString(b)
	var builder strings.Builder
	for i, r := range digits {
		if i > 0 && i%2 == 0 {
			builder.WriteString("-")
		}
		builder.WriteRune(r)
	}
	return builder.String()
}
