package core

// streaming.go prepares delimited uploads for the csv reader without a
// second copy of the file:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF), as written by Excel on Windows,
//     is dropped
//   - invalid UTF-8 bytes are replaced with U+FFFD as they stream through

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sanitizeChunk is how many runes one refill of the sanitizer decodes.
const sanitizeChunk = 4096

// newDelimitedReader wraps r with BOM skipping and UTF-8 sanitation.
func newDelimitedReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{src: br}
}

// utf8Sanitizer re-encodes its source rune by rune. bufio.Reader.ReadRune
// yields U+FFFD for each invalid byte, so the output is always valid UTF-8.
type utf8Sanitizer struct {
	src     *bufio.Reader
	buf     []byte
	pending []byte
	err     error
}

// Read implements io.Reader.
func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(s.pending) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	if n == 0 {
		return 0, s.err
	}
	return n, nil
}

func (s *utf8Sanitizer) fill() {
	buf := s.buf[:0]
	for i := 0; i < sanitizeChunk; i++ {
		r, _, err := s.src.ReadRune()
		if err != nil {
			s.err = err
			break
		}
		buf = utf8.AppendRune(buf, r)
	}
	s.buf = buf
	s.pending = buf
}
