package agent

import "strings"

// sentenceSegmenter accumulates reply text and yields complete sentences.
// A sentence ends at '.', '!', or '?' with the terminator kept attached; the
// trailing unterminated fragment is buffered until more text arrives or the
// turn ends.
type sentenceSegmenter struct {
	pending string
}

// splitSentences splits text after each terminator. The final element is the
// (possibly empty) unterminated tail.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			parts = append(parts, text[start:i+1])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}

// Feed appends text to the buffer and returns any sentences completed by it,
// trimmed of surrounding whitespace.
func (s *sentenceSegmenter) Feed(text string) []string {
	parts := splitSentences(s.pending + text)
	s.pending = parts[len(parts)-1]

	var out []string
	for _, p := range parts[:len(parts)-1] {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Flush returns the buffered tail, trimmed, and resets the buffer.
func (s *sentenceSegmenter) Flush() string {
	tail := strings.TrimSpace(s.pending)
	s.pending = ""
	return tail
}

// Reset discards any buffered text.
func (s *sentenceSegmenter) Reset() {
	s.pending = ""
}
