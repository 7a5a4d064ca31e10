// Package diag defines the error and span types shared by every stage of the
// toolchain. The teacher packages each rolled their own ad-hoc
// errors.New(fmt.Sprintf(...)) helper per file (compiler/symbol_table.go's
// makeSemanticError, vmtranslator/vm_translator.go's makeError,
// assembler/assembler.go's makeSyntaxErr); this package gives the whole
// toolchain one shared error taxonomy instead of three incompatible ones,
// modeled on original_source/jack-compiler/src/error.rs's enum-of-kinds
// design translated into Go error struct types.
package diag

import "fmt"

// Span locates a diagnostic in source text.
type Span struct {
	File string
	Line int
	Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// LexError reports a tokenizer failure.
type LexError struct {
	Span Span
	Kind string // unterminated-comment | unterminated-string | bad-character | integer-out-of-range
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: lex error: %s: %s", e.Span, e.Kind, e.Msg)
}

// ParseError reports a parser failure.
type ParseError struct {
	Span     Span
	Expected string
	Got      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: expected %s, got %s", e.Span, e.Expected, e.Got)
}

// ResolveError reports a recoverable semantic failure: undefined name,
// not-a-callable, wrong arity, duplicate definition, unused variable.
type ResolveError struct {
	Span Span
	Kind string
	Msg  string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// IoError wraps a filesystem failure. The VM translator and the assembler
// stop at the first one. The Jack compiler stops when the input path cannot
// be listed; a .jack file it cannot read, or a .vm file it cannot write,
// fails that unit only and the remaining files are still compiled.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error at %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// Reporter collects diagnostics emitted by a recoverable pass (resolve
// errors during codegen, lint warnings) without aborting the walk, so a
// single run can surface more than one problem — spec.md §7's requirement
// that ResolveError "emit a diagnostic and continue the walk... to surface
// more errors per pass."
type Reporter struct {
	diags []error
}

func (r *Reporter) Report(err error) {
	r.diags = append(r.diags, err)
}

func (r *Reporter) HasErrors() bool { return len(r.diags) > 0 }

func (r *Reporter) Diagnostics() []error { return r.diags }
