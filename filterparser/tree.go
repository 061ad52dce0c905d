package filterparser

import "strings"

// FilterType identifies the variant of a Tree node.
type FilterType int

const (
	FilterNop FilterType = iota
	FilterOr
	FilterAnd
	FilterNot
	FilterColumn
	FilterTerm
)

// Record exposes one candidate's field values to the comparator layer. Text
// fields render verbatim; numeric fields render their raw magnitude in
// decimal, durations in nanoseconds.
type Record interface {
	FieldValue(name string) string
}

/*
Tree is one node of a compiled filter expression. A tree is immutable once
built and is rebuilt wholesale when the filter string changes, so one tree may
be evaluated concurrently over many records.
*/
type Tree interface {
	Type() FilterType
	Accept(rec Record) bool
}

// nopFilter accepts everything. It stands in for empty sub-expressions.
type nopFilter struct{}

func (nopFilter) Type() FilterType { return FilterNop }

func (nopFilter) Accept(rec Record) bool { return true }

type orFilter struct {
	children []Tree
}

func (f *orFilter) Type() FilterType { return FilterOr }

func (f *orFilter) Accept(rec Record) bool {
	for _, child := range f.children {
		if child.Accept(rec) {
			return true
		}
	}
	return false
}

func (f *orFilter) add(child Tree) {
	f.children = append(f.children, child)
}

type andFilter struct {
	children []Tree
}

func (f *andFilter) Type() FilterType { return FilterAnd }

func (f *andFilter) Accept(rec Record) bool {
	for _, child := range f.children {
		if !child.Accept(rec) {
			return false
		}
	}
	return true
}

func (f *andFilter) add(child Tree) {
	f.children = append(f.children, child)
}

type notFilter struct {
	child Tree
}

func (f *notFilter) Type() FilterType { return FilterNot }

func (f *notFilter) Accept(rec Record) bool {
	return !f.child.Accept(rec)
}

// columnFilter applies a comparator to one named field. Values are lowercased
// before comparison; numeric comparators parse them and are unaffected.
type columnFilter struct {
	column string
	cmp    Comparator
}

func (f *columnFilter) Type() FilterType { return FilterColumn }

func (f *columnFilter) Accept(rec Record) bool {
	return f.cmp(strings.ToLower(rec.FieldValue(f.column)))
}

// termFilter applies a comparator across a whole field set, matching if any
// field matches. Fields are probed in schema order.
type termFilter struct {
	columns []string
	cmp     Comparator
}

func (f *termFilter) Type() FilterType { return FilterTerm }

func (f *termFilter) Accept(rec Record) bool {
	for _, column := range f.columns {
		if f.cmp(strings.ToLower(rec.FieldValue(column))) {
			return true
		}
	}
	return false
}
