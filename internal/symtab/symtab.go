// Package symtab implements the two-level Jack symbol table: one class
// table (Static|Field) that persists for the whole file, and one
// subroutine table (Argument|Local) rebuilt at each subroutine boundary.
// Grounded on compiler/symbol_table.go's SymbolTableMap/ClassSymbolTable/
// FuncSymbolTable split, but fixes that file's index-assignment bugs
// (declared Todo-marked there: param/local indices were hardcoded to 0
// instead of counted per kind) and drops its package-level mutable
// `var symbolTable SymbolTableMap` global in favor of per-compilation
// instances, so two classes compiled in the same process never share state.
package symtab

import (
	"fmt"

	"hacktoolchain/internal/ast"
	"hacktoolchain/internal/diag"
)

// Entry is one resolved symbol: its declared type, storage kind, the index
// within that kind (declaration order), and the span of its declaration
// (used by lint to point at the declaration site of an unused variable).
type Entry struct {
	Name  string
	Type  string
	Kind  ast.VarKind
	Index int
	Span  diag.Span
}

// ClassTable holds Static and Field declarations for one class. It persists
// across every subroutine in the file.
type ClassTable struct {
	entries map[string]Entry
	counts  map[ast.VarKind]int
}

func NewClassTable() *ClassTable {
	return &ClassTable{entries: make(map[string]Entry), counts: make(map[ast.VarKind]int)}
}

// Define registers a Static or Field symbol, assigning it the next index
// within its kind. Returns a ResolveError if the name is already declared
// in this class.
func (t *ClassTable) Define(name, typ string, kind ast.VarKind, span diag.Span) error {
	if _, ok := t.entries[name]; ok {
		return &diag.ResolveError{Span: span, Kind: "AlreadyDefinedIdent", Msg: fmt.Sprintf("%q is already declared in this class", name)}
	}
	idx := t.counts[kind]
	t.counts[kind] = idx + 1
	t.entries[name] = Entry{Name: name, Type: typ, Kind: kind, Index: idx, Span: span}
	return nil
}

func (t *ClassTable) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

func (t *ClassTable) Count(kind ast.VarKind) int { return t.counts[kind] }

// SubTable holds Argument and Local declarations for one subroutine body.
// For a method, index 0 of the Argument kind is reserved for the implicit
// `this` receiver before any declared parameter is defined.
type SubTable struct {
	entries map[string]Entry
	order   []string
	counts  map[ast.VarKind]int
}

func NewSubTable(isMethod bool) *SubTable {
	t := &SubTable{entries: make(map[string]Entry), counts: make(map[ast.VarKind]int)}
	if isMethod {
		t.counts[ast.Argument] = 1
	}
	return t
}

func (t *SubTable) Define(name, typ string, kind ast.VarKind, span diag.Span) error {
	if _, ok := t.entries[name]; ok {
		return &diag.ResolveError{Span: span, Kind: "AlreadyDefinedIdent", Msg: fmt.Sprintf("%q is already declared in this subroutine", name)}
	}
	idx := t.counts[kind]
	t.counts[kind] = idx + 1
	t.entries[name] = Entry{Name: name, Type: typ, Kind: kind, Index: idx, Span: span}
	t.order = append(t.order, name)
	return nil
}

func (t *SubTable) Lookup(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

func (t *SubTable) Count(kind ast.VarKind) int { return t.counts[kind] }

// Names returns declared parameter/local names in declaration order. lint
// drives its unused-variable walk off this instead of re-deriving
// declarations from the AST itself.
func (t *SubTable) Names() []string { return t.order }

// Resolver combines a class table and the current subroutine table, with
// subroutine-scope names shadowing class-scope ones.
type Resolver struct {
	Class *ClassTable
	Sub   *SubTable
}

func NewResolver(class *ClassTable, sub *SubTable) *Resolver {
	return &Resolver{Class: class, Sub: sub}
}

func (r *Resolver) Lookup(name string) (Entry, bool) {
	if e, ok := r.Sub.Lookup(name); ok {
		return e, ok
	}
	return r.Class.Lookup(name)
}

// BuildClassTable walks a class's declared fields/statics into a fresh
// ClassTable. Returns every AlreadyDefinedIdent diagnostic it hits rather
// than aborting on the first, matching spec.md §7's "continue the walk...
// to surface more errors per pass" for recoverable resolve errors.
func BuildClassTable(cls *ast.Class) (*ClassTable, []error) {
	t := NewClassTable()
	var errs []error
	for _, dec := range cls.Vars {
		for _, name := range dec.Names {
			if err := t.Define(name, dec.Type, dec.Kind, dec.Span); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return t, errs
}

// BuildSubTable walks one subroutine's parameters and locals into a fresh
// SubTable. A method's implicit receiver is accounted for via isMethod;
// constructor/function callers pass isMethod=false.
func BuildSubTable(sub *ast.Subroutine) (*SubTable, []error) {
	t := NewSubTable(sub.Kind == ast.Method)
	var errs []error
	for _, p := range sub.Params {
		if err := t.Define(p.Name, p.Type, ast.Argument, p.Span); err != nil {
			errs = append(errs, err)
		}
	}
	for _, dec := range sub.Locals {
		for _, name := range dec.Names {
			if err := t.Define(name, dec.Type, ast.Local, dec.Span); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return t, errs
}
