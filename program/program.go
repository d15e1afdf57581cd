// Package program is the mush program store: line-numbered statements in
// increasing order, with a cursor that sits before a statement or past the
// end.
package program

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrNoLine indicates no statement carries the requested line number.
var ErrNoLine = errors.New("program: no such line")

// Statement is one stored program line.
type Statement struct {
	LineNo int
	Body   string
}

// Program holds statements ordered by line number. Not safe for concurrent
// use.
type Program struct {
	stmts []*Statement

	// cursor is an index into stmts: the cursor sits before stmts[cursor],
	// or past the end when cursor == len(stmts).
	cursor int
}

// New returns an empty program with the cursor past the (empty) end.
func New() *Program {
	return &Program{}
}

// Len returns the number of stored statements.
func (p *Program) Len() int { return len(p.stmts) }

// Insert adds a statement, replacing any statement with the same line
// number. The cursor keeps its position: if it sat before some statement,
// it still does; if it was past the end, it remains past the end.
func (p *Program) Insert(stmt *Statement) error {
	if stmt == nil {
		return errors.New("program: nil statement")
	}
	i := sort.Search(len(p.stmts), func(k int) bool {
		return p.stmts[k].LineNo >= stmt.LineNo
	})
	if i < len(p.stmts) && p.stmts[i].LineNo == stmt.LineNo {
		p.stmts[i] = stmt
		return nil
	}
	p.stmts = append(p.stmts, nil)
	copy(p.stmts[i+1:], p.stmts[i:])
	p.stmts[i] = stmt
	if i <= p.cursor {
		p.cursor++
	}
	return nil
}

// Delete removes every statement with lo <= line number <= hi. A cursor
// sitting before a deleted statement moves to the next surviving one.
func (p *Program) Delete(lo, hi int) {
	kept := p.stmts[:0]
	cursor := p.cursor
	for i, s := range p.stmts {
		if s.LineNo >= lo && s.LineNo <= hi {
			if i < p.cursor {
				cursor--
			}
			continue
		}
		kept = append(kept, s)
	}
	p.stmts = kept
	p.cursor = cursor
}

// Reset moves the cursor before the first statement.
func (p *Program) Reset() {
	p.cursor = 0
}

// Fetch returns the statement the cursor sits before, or nil when the
// cursor is past the end.
func (p *Program) Fetch() *Statement {
	if p.cursor >= len(p.stmts) {
		return nil
	}
	return p.stmts[p.cursor]
}

// Next advances the cursor past the statement it sits before. No-op past
// the end.
func (p *Program) Next() {
	if p.cursor < len(p.stmts) {
		p.cursor++
	}
}

// Goto positions the cursor before the statement with the given line
// number.
func (p *Program) Goto(lineno int) error {
	for i, s := range p.stmts {
		if s.LineNo == lineno {
			p.cursor = i
			return nil
		}
	}
	return ErrNoLine
}

// List writes the statements in order, marking the cursor position with a
// line containing only "-->".
func (p *Program) List(w io.Writer) error {
	for i, s := range p.stmts {
		if i == p.cursor {
			if _, err := fmt.Fprintln(w, "-->"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%d %s\n", s.LineNo, s.Body); err != nil {
			return err
		}
	}
	if p.cursor >= len(p.stmts) {
		if _, err := fmt.Fprintln(w, "-->"); err != nil {
			return err
		}
	}
	return nil
}
