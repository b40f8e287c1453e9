// Package emit holds the two collaborators every generator backend writes
// through: an indenting line stream and the per-routine declaration table.
package emit

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Stream writes text line by line at the current indentation level. The
// first write error is kept and every later write becomes a no-op.
type Stream struct {
	w     io.Writer
	width int
	level int
	buf   bytes.Buffer
	err   error
}

// NewStream returns a stream that indents by width spaces per level.
func NewStream(w io.Writer, width int) *Stream {
	if width < 0 {
		width = 0
	}
	return &Stream{w: w, width: width}
}

// Inc indents subsequent output by one level.
func (s *Stream) Inc() { s.level++ }

// Dec undoes one Inc.
func (s *Stream) Dec() {
	if s.level > 0 {
		s.level--
	}
}

// Level is the current indentation depth.
func (s *Stream) Level() int { return s.level }

// Out executes tmpl with data and writes the result.
func (s *Stream) Out(tmpl *template.Template, data any) {
	if s.err != nil {
		return
	}
	s.buf.Reset()
	if err := tmpl.Execute(&s.buf, data); err != nil {
		s.err = fmt.Errorf("execute %s: %w", tmpl.Name(), err)
		return
	}
	s.Text(s.buf.String())
}

// Text writes text, one trailing newline folded, with every non-empty line
// prefixed by the current indentation.
func (s *Stream) Text(text string) {
	if s.err != nil {
		return
	}
	text = strings.TrimSuffix(text, "\n")
	pad := strings.Repeat(" ", s.level*s.width)
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(pad)
			b.WriteString(strings.TrimRight(line, " \t"))
		}
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		s.err = err
	}
}

// Err returns the first error met while writing.
func (s *Stream) Err() error { return s.err }
