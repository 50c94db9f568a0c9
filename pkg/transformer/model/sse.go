package model

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single stream line. Provider events carrying large
// code fragments can exceed bufio's 64KiB default.
const maxLineSize = 1 << 20

// Event is one server-sent event.
type Event struct {
	Name string
	Data string
}

// ScanSSE reads server-sent events from r and calls fn for each complete
// event. Multi-line data fields are joined with "\n"; comment lines are
// ignored. Scanning stops early when fn returns false.
func ScanSSE(r io.Reader, fn func(Event) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var ev Event
	var data []string
	flush := func() bool {
		if len(data) == 0 && ev.Name == "" {
			return true
		}
		ev.Data = strings.Join(data, "\n")
		keepGoing := fn(ev)
		ev, data = Event{}, data[:0]
		return keepGoing
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			if !flush() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	flush()
	return nil
}

// ScanLines calls fn for every non-empty line of r, as used by
// newline-delimited JSON streams. Scanning stops early when fn returns false.
func ScanLines(r io.Reader, fn func(line []byte) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if !fn(line) {
			return nil
		}
	}
	return scanner.Err()
}
