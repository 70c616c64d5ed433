package sse

import "strings"

// dataPrefix marks lines that carry an event payload. The prefix is exactly
// six characters; per the SSE format the space after the colon is part of
// the separator, not the payload.
const dataPrefix = "data: "

// ExtractFrame filters one decoded line down to its JSON payload, if any.
//
// Rules, applied in order:
//  1. "event: ..." lines are recognized but not surfaced. This protocol
//     does not rely on the named-event channel; classification is done on
//     payload shape instead.
//  2. A "data: " prefix is stripped.
//  3. If the remainder itself begins with "data: " it is stripped again.
//     Some server event-encoding helpers wrap an already-encoded frame,
//     producing "data: data: {...}" on the wire. The double strip is a
//     compatibility shim for that quirk and must not be removed.
//  4. An empty or whitespace-only remainder is discarded.
//
// Anything else (comments, id:/retry: fields, blank separators) yields no
// frame.
//
// Parameters:
//   - line: One decoded line, without its terminator
//
// Returns:
//   - string: The payload to classify
//   - bool: True if the line carried a payload
func ExtractFrame(line string) (string, bool) {
	if strings.HasPrefix(line, "event: ") {
		return "", false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}

	payload := line[len(dataPrefix):]
	payload = strings.TrimPrefix(payload, dataPrefix)

	if strings.TrimSpace(payload) == "" {
		return "", false
	}
	return payload, true
}
