// Package codegen walks the Jack AST once per class and emits the VM
// instruction stream of spec.md §4.3: subroutine prologues, statement
// lowering, expression lowering with the Math.multiply/Math.divide calls
// for */÷, and call resolution between unqualified method calls and
// qualified object-or-class calls. Grounded on compiler/code_generator.go's
// generate<Node>Code/writeOutput naming idiom, but corrected: the teacher's
// version emits uppercase non-canonical mnemonics in places and leaves an
// unfilled %d in its variable-name formatting helper; this emits the
// lowercase canonical mnemonics of spec.md §3 throughout.
package codegen

import (
	"fmt"

	"hacktoolchain/internal/ast"
	"hacktoolchain/internal/diag"
	"hacktoolchain/internal/symtab"
	"hacktoolchain/internal/vm"
)

type emitter struct {
	className string
	class     *symtab.ClassTable
	sub       *symtab.SubTable
	resolver  *symtab.Resolver
	insns     []vm.Insn
	reporter  *diag.Reporter
	labels    int
}

// Emit lowers one class to its VM instruction stream. The returned Reporter
// carries every ResolveError it hit (undefined name, duplicate declaration;
// call arity is not checked) without
// aborting, per spec.md §7's "continue the walk with a poison placeholder"
// discipline — the placeholder here is simply skipping emission of the
// malformed node.
func Emit(cls *ast.Class) ([]vm.Insn, *diag.Reporter) {
	classTable, errs := symtab.BuildClassTable(cls)
	e := &emitter{className: cls.Name, class: classTable, reporter: &diag.Reporter{}}
	for _, err := range errs {
		e.reporter.Report(err)
	}
	for i := range cls.Subroutines {
		e.emitSubroutine(&cls.Subroutines[i])
	}
	return e.insns, e.reporter
}

func (e *emitter) emit(i vm.Insn) { e.insns = append(e.insns, i) }

func (e *emitter) fail(err error) { e.reporter.Report(err) }

func (e *emitter) freshLabel(prefix string) string {
	l := fmt.Sprintf("%s%d", prefix, e.labels)
	e.labels++
	return l
}

func (e *emitter) emitSubroutine(sub *ast.Subroutine) {
	subTable, errs := symtab.BuildSubTable(sub)
	for _, err := range errs {
		e.reporter.Report(err)
	}
	e.sub = subTable
	e.resolver = symtab.NewResolver(e.class, subTable)
	e.labels = 0

	e.emit(vm.Insn{Op: vm.Function, Name: e.className + "." + sub.Name, Arg: subTable.Count(ast.Local), Span: sub.Span})

	switch sub.Kind {
	case ast.Constructor:
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: e.class.Count(ast.Field), Span: sub.Span})
		e.emit(vm.Insn{Op: vm.Call, Name: "Memory.alloc", Arg: 1, Span: sub.Span})
		e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Pointer, Index: 0, Span: sub.Span})
	case ast.Method:
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Argument, Index: 0, Span: sub.Span})
		e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Pointer, Index: 0, Span: sub.Span})
	}

	for _, st := range sub.Body {
		e.emitStatement(st)
	}
}

func segOf(kind ast.VarKind) vm.Segment {
	switch kind {
	case ast.Static:
		return vm.Static
	case ast.Field:
		return vm.This
	case ast.Argument:
		return vm.Argument
	case ast.Local:
		return vm.Local
	}
	return vm.Static
}

func (e *emitter) emitStatement(st ast.Statement) {
	switch s := st.(type) {
	case *ast.LetStmt:
		e.emitLet(s)
	case *ast.IfStmt:
		e.emitIf(s)
	case *ast.WhileStmt:
		e.emitWhile(s)
	case *ast.DoStmt:
		e.emitExpr(s.Call)
		e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Temp, Index: 0, Span: s.Span()})
	case *ast.ReturnStmt:
		if s.Value != nil {
			e.emitExpr(s.Value)
		} else {
			e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: 0, Span: s.Span()})
		}
		e.emit(vm.Insn{Op: vm.Return, Span: s.Span()})
	}
}

func (e *emitter) emitLet(s *ast.LetStmt) {
	entry, ok := e.resolver.Lookup(s.Name)
	if !ok {
		e.fail(&diag.ResolveError{Span: s.Span(), Kind: "undefined-name", Msg: fmt.Sprintf("undefined variable %q", s.Name)})
		return
	}
	if s.Index == nil {
		e.emitExpr(s.Value)
		e.emit(vm.Insn{Op: vm.Pop, Seg: segOf(entry.Kind), Index: entry.Index, Span: s.Span()})
		return
	}
	// array assignment: base(v), index, add; then e; stash e, compute target,
	// restore e, store — the "e may itself touch that" ordering of spec.md §4.3.
	e.emit(vm.Insn{Op: vm.Push, Seg: segOf(entry.Kind), Index: entry.Index, Span: s.Span()})
	e.emitExpr(s.Index)
	e.emit(vm.Insn{Op: vm.Add, Span: s.Span()})
	e.emitExpr(s.Value)
	e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Temp, Index: 0, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Pointer, Index: 1, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.Push, Seg: vm.Temp, Index: 0, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.Pop, Seg: vm.That, Index: 0, Span: s.Span()})
}

func (e *emitter) emitIf(s *ast.IfStmt) {
	e.emitExpr(s.Cond)
	e.emit(vm.Insn{Op: vm.Not, Span: s.Span()})
	if s.Else == nil {
		end := e.freshLabel("IF_END")
		e.emit(vm.Insn{Op: vm.IfGoto, Label: end, Span: s.Span()})
		for _, st := range s.Then {
			e.emitStatement(st)
		}
		e.emit(vm.Insn{Op: vm.Label, Label: end, Span: s.Span()})
		return
	}
	elseL := e.freshLabel("IF_ELSE")
	endL := e.freshLabel("IF_END")
	e.emit(vm.Insn{Op: vm.IfGoto, Label: elseL, Span: s.Span()})
	for _, st := range s.Then {
		e.emitStatement(st)
	}
	e.emit(vm.Insn{Op: vm.Goto, Label: endL, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.Label, Label: elseL, Span: s.Span()})
	for _, st := range s.Else {
		e.emitStatement(st)
	}
	e.emit(vm.Insn{Op: vm.Label, Label: endL, Span: s.Span()})
}

func (e *emitter) emitWhile(s *ast.WhileStmt) {
	top := e.freshLabel("WHILE_TOP")
	end := e.freshLabel("WHILE_END")
	e.emit(vm.Insn{Op: vm.Label, Label: top, Span: s.Span()})
	e.emitExpr(s.Cond)
	e.emit(vm.Insn{Op: vm.Not, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.IfGoto, Label: end, Span: s.Span()})
	for _, st := range s.Body {
		e.emitStatement(st)
	}
	e.emit(vm.Insn{Op: vm.Goto, Label: top, Span: s.Span()})
	e.emit(vm.Insn{Op: vm.Label, Label: end, Span: s.Span()})
}

func (e *emitter) emitExpr(expr ast.Expr) {
	switch ex := expr.(type) {
	case *ast.IntLit:
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: ex.Value, Span: ex.Span()})
	case *ast.StrLit:
		e.emitStrLit(ex)
	case *ast.KeywordConst:
		e.emitKeywordConst(ex)
	case *ast.VarRef:
		entry, ok := e.resolver.Lookup(ex.Name)
		if !ok {
			e.fail(&diag.ResolveError{Span: ex.Span(), Kind: "undefined-name", Msg: fmt.Sprintf("undefined variable %q", ex.Name)})
			return
		}
		e.emit(vm.Insn{Op: vm.Push, Seg: segOf(entry.Kind), Index: entry.Index, Span: ex.Span()})
	case *ast.IndexExpr:
		entry, ok := e.resolver.Lookup(ex.Name)
		if !ok {
			e.fail(&diag.ResolveError{Span: ex.Span(), Kind: "undefined-name", Msg: fmt.Sprintf("undefined variable %q", ex.Name)})
			return
		}
		e.emit(vm.Insn{Op: vm.Push, Seg: segOf(entry.Kind), Index: entry.Index, Span: ex.Span()})
		e.emitExpr(ex.Index)
		e.emit(vm.Insn{Op: vm.Add, Span: ex.Span()})
		e.emit(vm.Insn{Op: vm.Pop, Seg: vm.Pointer, Index: 1, Span: ex.Span()})
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.That, Index: 0, Span: ex.Span()})
	case *ast.UnaryExpr:
		e.emitExpr(ex.Operand)
		if ex.Op == "-" {
			e.emit(vm.Insn{Op: vm.Neg, Span: ex.Span()})
		} else {
			e.emit(vm.Insn{Op: vm.Not, Span: ex.Span()})
		}
	case *ast.BinaryExpr:
		e.emitExpr(ex.Left)
		e.emitExpr(ex.Right)
		e.emitBinOp(ex)
	case *ast.CallExpr:
		e.emitCall(ex)
	}
}

func (e *emitter) emitStrLit(ex *ast.StrLit) {
	e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: len(ex.Value), Span: ex.Span()})
	e.emit(vm.Insn{Op: vm.Call, Name: "String.new", Arg: 1, Span: ex.Span()})
	for _, c := range []byte(ex.Value) {
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: int(c), Span: ex.Span()})
		e.emit(vm.Insn{Op: vm.Call, Name: "String.appendChar", Arg: 2, Span: ex.Span()})
	}
}

func (e *emitter) emitKeywordConst(ex *ast.KeywordConst) {
	switch ex.Kind {
	case "true":
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: 1, Span: ex.Span()})
		e.emit(vm.Insn{Op: vm.Neg, Span: ex.Span()})
	case "false", "null":
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Constant, Index: 0, Span: ex.Span()})
	case "this":
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Pointer, Index: 0, Span: ex.Span()})
	}
}

func (e *emitter) emitBinOp(ex *ast.BinaryExpr) {
	span := ex.Span()
	switch ex.Op {
	case "+":
		e.emit(vm.Insn{Op: vm.Add, Span: span})
	case "-":
		e.emit(vm.Insn{Op: vm.Sub, Span: span})
	case "&":
		e.emit(vm.Insn{Op: vm.And, Span: span})
	case "|":
		e.emit(vm.Insn{Op: vm.Or, Span: span})
	case "<":
		e.emit(vm.Insn{Op: vm.Lt, Span: span})
	case ">":
		e.emit(vm.Insn{Op: vm.Gt, Span: span})
	case "=":
		e.emit(vm.Insn{Op: vm.Eq, Span: span})
	case "*":
		e.emit(vm.Insn{Op: vm.Call, Name: "Math.multiply", Arg: 2, Span: span})
	case "/":
		e.emit(vm.Insn{Op: vm.Call, Name: "Math.divide", Arg: 2, Span: span})
	}
}

// emitCall resolves the three call forms of spec.md §4.3: unqualified
// (method on the implicit this), qualified-on-object, and qualified-on-class.
func (e *emitter) emitCall(ex *ast.CallExpr) {
	span := ex.Span()
	if ex.Receiver == "" {
		e.emit(vm.Insn{Op: vm.Push, Seg: vm.Pointer, Index: 0, Span: span})
		for _, a := range ex.Args {
			e.emitExpr(a)
		}
		e.emit(vm.Insn{Op: vm.Call, Name: e.className + "." + ex.Name, Arg: len(ex.Args) + 1, Span: span})
		return
	}
	if entry, ok := e.resolver.Lookup(ex.Receiver); ok {
		e.emit(vm.Insn{Op: vm.Push, Seg: segOf(entry.Kind), Index: entry.Index, Span: span})
		for _, a := range ex.Args {
			e.emitExpr(a)
		}
		e.emit(vm.Insn{Op: vm.Call, Name: entry.Type + "." + ex.Name, Arg: len(ex.Args) + 1, Span: span})
		return
	}
	for _, a := range ex.Args {
		e.emitExpr(a)
	}
	e.emit(vm.Insn{Op: vm.Call, Name: ex.Receiver + "." + ex.Name, Arg: len(ex.Args), Span: span})
}
