package sse

import (
	"reflect"
	"testing"
)

// decodeAll feeds the input to a LineDecoder in chunks of the given size and
// collects every emitted line.
func decodeAll(input string, chunkSize int) []string {
	var dec LineDecoder
	var lines []string
	data := []byte(input)
	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, dec.Write(data[start:end])...)
	}
	return lines
}

func TestLineDecoder_ChunkBoundaryInvariance(t *testing.T) {
	// Includes multi-byte characters so that small chunk sizes split
	// runes across chunk boundaries.
	input := "data: {\"content\":\"héllo\"}\n" +
		"data: {\"content\":\"wörld — 日本語\"}\n" +
		"event: content_delta\n" +
		"\n" +
		"data: {\"content\":\"tail\"}\n"

	want := decodeAll(input, len(input))

	for _, size := range []int{1, 2, 3, 5, 7, 16, 64} {
		got := decodeAll(input, size)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: got %q, want %q", size, got, want)
		}
	}
}

func TestLineDecoder_PartialLineHeldBack(t *testing.T) {
	var dec LineDecoder

	if lines := dec.Write([]byte("data: {\"con")); lines != nil {
		t.Fatalf("expected no lines before terminator, got %q", lines)
	}
	if !dec.Pending() {
		t.Fatal("expected pending partial line")
	}

	lines := dec.Write([]byte("tent\":\"hi\"}\ndata: "))
	if len(lines) != 1 || lines[0] != `data: {"content":"hi"}` {
		t.Fatalf("unexpected lines: %q", lines)
	}
	if !dec.Pending() {
		t.Fatal("expected pending bytes after trailing partial")
	}

	dec.Reset()
	if dec.Pending() {
		t.Fatal("Reset should discard the partial buffer")
	}
}

func TestLineDecoder_CRLF(t *testing.T) {
	var dec LineDecoder
	lines := dec.Write([]byte("data: a\r\ndata: b\n"))
	want := []string{"data: a", "data: b"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
}

func TestLineDecoder_MultipleLinesInOneChunk(t *testing.T) {
	var dec LineDecoder
	lines := dec.Write([]byte("a\nb\nc\n"))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %q, want %q", lines, want)
	}
}

func TestExtractFrame(t *testing.T) {
	cases := []struct {
		name    string
		line    string
		want    string
		wantOK  bool
	}{
		{"plain data", `data: {"content":"hi"}`, `{"content":"hi"}`, true},
		{"double prefix artifact", `data: data: {"content":"bar"}`, `{"content":"bar"}`, true},
		{"event line dropped", "event: content_delta", "", false},
		{"blank line dropped", "", "", false},
		{"whitespace payload dropped", "data:   ", "", false},
		{"empty payload dropped", "data: ", "", false},
		{"comment dropped", ": keep-alive", "", false},
		{"id field dropped", "id: 42", "", false},
		{"retry field dropped", "retry: 1000", "", false},
		{"no prefix dropped", `{"content":"hi"}`, "", false},
		{"bare data colon dropped", "data:", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractFrame(tc.line)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("ExtractFrame(%q) = (%q, %v), want (%q, %v)",
					tc.line, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
