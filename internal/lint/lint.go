// Package lint implements the optional unused-variable and redefinition
// diagnostics pass. Grounded on
// original_source/jack-compiler/src/diagnosis/unused_variable.rs's
// UnusedVariableVisitor: a table of (declared, used) per scope, a name
// marked used on every reference site, every leftover unused entry reported
// at the end of the scope. Run as a post-parse, pre-codegen pass, gated
// behind a CLI flag; its diagnostics are warnings, never build failures,
// mirroring original_source's diagnosis/report.rs treating UnusedVariable at
// Severity::Warning.
//
// Declarations and their redefinition checks are delegated to symtab's own
// BuildClassTable/BuildSubTable instead of a second AST walk, and the
// per-subroutine unused check is driven off SubTable.Names() — the
// declaration-order list symtab records as each name is defined.
package lint

import (
	"fmt"

	"hacktoolchain/internal/ast"
	"hacktoolchain/internal/diag"
	"hacktoolchain/internal/symtab"
)

// Check walks one class and reports every AlreadyDefinedIdent and
// UnusedVariable diagnostic it finds via the returned Reporter. It never
// aborts early: every subroutine and every class-level declaration is
// checked independently.
func Check(cls *ast.Class) *diag.Reporter {
	r := &diag.Reporter{}

	_, errs := symtab.BuildClassTable(cls)
	for _, err := range errs {
		r.Report(err)
	}

	for i := range cls.Subroutines {
		checkSubroutine(&cls.Subroutines[i], r)
	}

	// Fields/statics are legitimately unused by many classes (the OS-library
	// idiom, used only via accessor methods) so only locals/params are
	// reported, matching unused_variable.rs which scopes its visitor to a
	// single subroutine's declared table, never the class table.
	return r
}

func checkSubroutine(sub *ast.Subroutine, r *diag.Reporter) {
	subTable, errs := symtab.BuildSubTable(sub)
	for _, err := range errs {
		r.Report(err)
	}

	used := map[string]bool{}
	for _, st := range sub.Body {
		walkStatement(st, used)
	}

	for _, name := range subTable.Names() {
		if used[name] {
			continue
		}
		entry, _ := subTable.Lookup(name)
		r.Report(&diag.ResolveError{Span: entry.Span, Kind: "UnusedVariable", Msg: fmt.Sprintf("%q is never used", name)})
	}
}

func walkStatement(st ast.Statement, used map[string]bool) {
	switch s := st.(type) {
	case *ast.LetStmt:
		used[s.Name] = true
		if s.Index != nil {
			walkExpr(s.Index, used)
		}
		walkExpr(s.Value, used)
	case *ast.IfStmt:
		walkExpr(s.Cond, used)
		for _, b := range s.Then {
			walkStatement(b, used)
		}
		for _, b := range s.Else {
			walkStatement(b, used)
		}
	case *ast.WhileStmt:
		walkExpr(s.Cond, used)
		for _, b := range s.Body {
			walkStatement(b, used)
		}
	case *ast.DoStmt:
		walkExpr(s.Call, used)
	case *ast.ReturnStmt:
		if s.Value != nil {
			walkExpr(s.Value, used)
		}
	}
}

func walkExpr(e ast.Expr, used map[string]bool) {
	switch ex := e.(type) {
	case *ast.VarRef:
		used[ex.Name] = true
	case *ast.IndexExpr:
		used[ex.Name] = true
		walkExpr(ex.Index, used)
	case *ast.UnaryExpr:
		walkExpr(ex.Operand, used)
	case *ast.BinaryExpr:
		walkExpr(ex.Left, used)
		walkExpr(ex.Right, used)
	case *ast.CallExpr:
		if ex.Receiver != "" {
			used[ex.Receiver] = true
		}
		for _, a := range ex.Args {
			walkExpr(a, used)
		}
	}
}
