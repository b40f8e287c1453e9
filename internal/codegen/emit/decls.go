package emit

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDivergence is returned when the replay pass registers a different
	// declaration list for a routine than the recording pass did.
	ErrDivergence = errors.New("declaration replay diverged from recording")
	// ErrDuplicateRoutine is returned when two entities map to the same
	// routine identity.
	ErrDuplicateRoutine = errors.New("routine identity generated twice")
)

// Table collects, per routine identity, the ordered and duplicate-free list
// of scratch declarations its body uses.
//
// A table starts out recording. Enter/Add/Leave calls build each routine's
// list. Seal switches it to replay: Enter then hands back the recorded list
// so it can be written ahead of the body, and Leave checks that the replayed
// body registered exactly the same list.
type Table struct {
	sealed   bool
	sets     map[string][]string
	order    []string
	replayed map[string]struct{}

	cur  string
	open bool
	used []string
	err  error
}

// NewTable returns an empty recording table.
func NewTable() *Table {
	return &Table{
		sets:     make(map[string][]string),
		replayed: make(map[string]struct{}),
	}
}

// Recording reports whether the table is still in its first pass.
func (t *Table) Recording() bool { return !t.sealed }

// Seal ends recording. It fails if a routine is still open.
func (t *Table) Seal() error {
	if t.open {
		return fmt.Errorf("seal with routine %s still open", t.cur)
	}
	t.sealed = true
	return t.err
}

// Enter opens the routine id. While replaying it returns the declarations
// recorded for id, in recording order.
func (t *Table) Enter(id string) ([]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.open {
		return nil, fmt.Errorf("enter %s: routine %s still open", id, t.cur)
	}
	if !t.sealed {
		if _, dup := t.sets[id]; dup {
			t.err = fmt.Errorf("%w: %s", ErrDuplicateRoutine, id)
			return nil, t.err
		}
		t.sets[id] = []string{}
		t.order = append(t.order, id)
	} else {
		if _, ok := t.sets[id]; !ok {
			t.err = fmt.Errorf("%w: %s was never recorded", ErrDivergence, id)
			return nil, t.err
		}
		if _, dup := t.replayed[id]; dup {
			t.err = fmt.Errorf("%w: %s", ErrDuplicateRoutine, id)
			return nil, t.err
		}
		t.replayed[id] = struct{}{}
	}
	t.cur, t.open, t.used = id, true, nil
	return slices.Clone(t.sets[id]), nil
}

// Add registers decl for the open routine. Registering the same text again
// is a no-op, so a shared slot is declared once however often it is used.
func (t *Table) Add(decl string) {
	if t.err != nil {
		return
	}
	if !t.open {
		t.err = fmt.Errorf("declaration %q registered outside a routine", decl)
		return
	}
	if !t.sealed {
		if !slices.Contains(t.sets[t.cur], decl) {
			t.sets[t.cur] = append(t.sets[t.cur], decl)
		}
		return
	}
	if !slices.Contains(t.used, decl) {
		t.used = append(t.used, decl)
	}
}

// Leave closes the open routine. While replaying it fails with
// ErrDivergence unless the body registered the recorded list exactly.
func (t *Table) Leave() error {
	if t.err != nil {
		return t.err
	}
	if !t.open {
		return errors.New("leave without an open routine")
	}
	t.open = false
	if t.sealed && !slices.Equal(t.used, t.sets[t.cur]) {
		t.err = fmt.Errorf("%w: %s recorded %q, replay used %q", ErrDivergence, t.cur, t.sets[t.cur], t.used)
	}
	return t.err
}

// Decls returns the recorded declarations of id.
func (t *Table) Decls(id string) []string { return slices.Clone(t.sets[id]) }

// Identities lists every recorded routine in the order it was entered.
func (t *Table) Identities() []string { return slices.Clone(t.order) }

// Err returns the first consistency error the table met.
func (t *Table) Err() error { return t.err }
