package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Alia5/giopgen/internal/codegen/meta"
)

// DeclLogger records the scratch declarations each generated routine opens
// with, one line per routine.
type DeclLogger interface {
	Log(r meta.Routine)
}

// declLogger implements DeclLogger with thread-safe writes.
type declLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewDecl creates a new DeclLogger. If writer is nil, returns a no-op logger.
func NewDecl(w io.Writer) DeclLogger {
	return &declLogger{w: w}
}

// Log emits a single line: timestamp, routine, entity and its declarations.
func (d *declLogger) Log(r meta.Routine) {
	if d.w == nil {
		return
	}

	decls := make([]string, len(r.Declarations))
	for i, decl := range r.Declarations {
		decls[i] = strings.Join(strings.Fields(decl), " ")
	}

	line := fmt.Sprintf("%s %s (%s %s) decls: %d [%s]\n",
		time.Now().Format("2006/01/02 15:04:05"),
		r.Name,
		r.Kind,
		r.Entity,
		len(decls),
		strings.Join(decls, " "))

	d.mu.Lock()
	_, _ = d.w.Write([]byte(line))
	d.mu.Unlock()
}
