// Package asmgen lowers the VM instruction stream to Hack assembly, per
// spec.md §4.5: segment addressing, arithmetic/logic expansion, control
// flow, and the calling convention. Grounded on vmtranslator/
// vm_translator.go's overall macro-expansion structure (one Go function per
// VM opcode emitting a fixed assembly template), but the segment pop macro
// here stashes the computed target address in the canonical R13/R14
// scratch registers instead of the teacher's literal "$segment_index_loc"
// symbol — an ad-hoc assembly-level variable name with no counterpart in
// spec.md's calling convention, which names R13/R14 explicitly.
package asmgen

import (
	"fmt"
	"strings"

	"hacktoolchain/internal/diag"
	"hacktoolchain/internal/vm"
)

const (
	stackBase = 256
)

var segBase = map[vm.Segment]string{
	vm.Local:    "LCL",
	vm.Argument: "ARG",
	vm.This:     "THIS",
	vm.That:     "THAT",
}

type Gen struct {
	lines     []string
	file      string // current static namespace
	funcName  string // current enclosing function, for label scoping
	cmpCount  int
	callCount int
}

func New() *Gen { return &Gen{} }

func (g *Gen) emit(format string, args ...any) {
	g.lines = append(g.lines, fmt.Sprintf(format, args...))
}

func (g *Gen) comment(s string) { g.emit("// %s", s) }

// Bootstrap emits the standard preamble: SP=256, call Sys.init 0. The
// driver calls it for directory translations and for a single file that
// defines Sys.init, unless bootstrap emission is switched off.
func (g *Gen) Bootstrap() {
	g.comment("bootstrap")
	g.emit("@%d", stackBase)
	g.emit("D=A")
	g.emit("@SP")
	g.emit("M=D")
	g.emitCall("Sys.init", 0, diag.Span{})
}

// Generate lowers one VM instruction stream (from one source file) into
// assembly, appended to the generator's output.
func (g *Gen) Generate(file string, insns []vm.Insn) error {
	g.file = file
	for _, in := range insns {
		if err := g.lower(in); err != nil {
			return err
		}
	}
	return nil
}

// Output returns the full accumulated assembly text.
func (g *Gen) Output() string {
	return strings.Join(g.lines, "\n") + "\n"
}

func (g *Gen) lower(in vm.Insn) error {
	switch in.Op {
	case vm.Push:
		return g.lowerPush(in)
	case vm.Pop:
		return g.lowerPop(in)
	case vm.Add, vm.Sub, vm.And, vm.Or:
		g.lowerBinArith(in)
	case vm.Neg, vm.Not:
		g.lowerUnary(in)
	case vm.Eq, vm.Gt, vm.Lt:
		g.lowerCompare(in)
	case vm.Label:
		g.emit("(%s$%s)", g.funcName, in.Label)
	case vm.Goto:
		g.emit("@%s$%s", g.funcName, in.Label)
		g.emit("0;JMP")
	case vm.IfGoto:
		g.emit("@SP")
		g.emit("AM=M-1")
		g.emit("D=M")
		g.emit("@%s$%s", g.funcName, in.Label)
		g.emit("D;JNE")
	case vm.Function:
		g.funcName = in.Name
		g.comment(in.String())
		g.emit("(%s)", in.Name)
		for i := 0; i < in.Arg; i++ {
			g.emit("@SP")
			g.emit("A=M")
			g.emit("M=0")
			g.emit("@SP")
			g.emit("M=M+1")
		}
	case vm.Call:
		g.comment(in.String())
		g.emitCall(in.Name, in.Arg, in.Span)
	case vm.Return:
		g.comment("return")
		g.lowerReturn()
	default:
		return &diag.ParseError{Span: in.Span, Expected: "VM instruction", Got: in.Op.String()}
	}
	return nil
}

func (g *Gen) pushD() {
	g.emit("@SP")
	g.emit("A=M")
	g.emit("M=D")
	g.emit("@SP")
	g.emit("M=M+1")
}

func (g *Gen) lowerPush(in vm.Insn) error {
	g.comment(in.String())
	switch in.Seg {
	case vm.Constant:
		g.emit("@%d", in.Index)
		g.emit("D=A")
	case vm.Local, vm.Argument, vm.This, vm.That:
		base := segBase[in.Seg]
		g.emit("@%s", base)
		g.emit("D=M")
		g.emit("@%d", in.Index)
		g.emit("A=D+A")
		g.emit("D=M")
	case vm.Static:
		g.emit("@%s.%d", g.file, in.Index)
		g.emit("D=M")
	case vm.Temp:
		if in.Index < 0 || in.Index > 7 {
			return &diag.ResolveError{Span: in.Span, Kind: "segment-range", Msg: fmt.Sprintf("temp index %d out of range", in.Index)}
		}
		g.emit("@%d", 5+in.Index)
		g.emit("D=M")
	case vm.Pointer:
		if in.Index != 0 && in.Index != 1 {
			return &diag.ResolveError{Span: in.Span, Kind: "segment-range", Msg: fmt.Sprintf("pointer index %d out of range", in.Index)}
		}
		g.emit("@%s", pointerReg(in.Index))
		g.emit("D=M")
	}
	g.pushD()
	return nil
}

func pointerReg(i int) string {
	if i == 0 {
		return "THIS"
	}
	return "THAT"
}

func (g *Gen) lowerPop(in vm.Insn) error {
	g.comment(in.String())
	switch in.Seg {
	case vm.Local, vm.Argument, vm.This, vm.That:
		base := segBase[in.Seg]
		g.emit("@%s", base)
		g.emit("D=M")
		g.emit("@%d", in.Index)
		g.emit("D=D+A")
		g.emit("@R13")
		g.emit("M=D")
		g.emit("@SP")
		g.emit("AM=M-1")
		g.emit("D=M")
		g.emit("@R13")
		g.emit("A=M")
		g.emit("M=D")
	case vm.Static:
		g.emit("@SP")
		g.emit("AM=M-1")
		g.emit("D=M")
		g.emit("@%s.%d", g.file, in.Index)
		g.emit("M=D")
	case vm.Temp:
		if in.Index < 0 || in.Index > 7 {
			return &diag.ResolveError{Span: in.Span, Kind: "segment-range", Msg: fmt.Sprintf("temp index %d out of range", in.Index)}
		}
		g.emit("@SP")
		g.emit("AM=M-1")
		g.emit("D=M")
		g.emit("@%d", 5+in.Index)
		g.emit("M=D")
	case vm.Pointer:
		if in.Index != 0 && in.Index != 1 {
			return &diag.ResolveError{Span: in.Span, Kind: "segment-range", Msg: fmt.Sprintf("pointer index %d out of range", in.Index)}
		}
		g.emit("@SP")
		g.emit("AM=M-1")
		g.emit("D=M")
		g.emit("@%s", pointerReg(in.Index))
		g.emit("M=D")
	case vm.Constant:
		return &diag.ResolveError{Span: in.Span, Kind: "segment-range", Msg: "cannot pop constant (push-only segment)"}
	}
	return nil
}

func (g *Gen) lowerBinArith(in vm.Insn) {
	g.comment(in.String())
	g.emit("@SP")
	g.emit("AM=M-1")
	g.emit("D=M")
	g.emit("A=A-1")
	switch in.Op {
	case vm.Add:
		g.emit("M=M+D")
	case vm.Sub:
		g.emit("M=M-D")
	case vm.And:
		g.emit("M=M&D")
	case vm.Or:
		g.emit("M=M|D")
	}
}

func (g *Gen) lowerUnary(in vm.Insn) {
	g.comment(in.String())
	g.emit("@SP")
	g.emit("A=M-1")
	if in.Op == vm.Neg {
		g.emit("M=-M")
	} else {
		g.emit("M=!M")
	}
}

func (g *Gen) lowerCompare(in vm.Insn) {
	g.comment(in.String())
	k := g.cmpCount
	g.cmpCount++
	trueL := fmt.Sprintf("CMP_TRUE%d", k)
	endL := fmt.Sprintf("CMP_END%d", k)
	g.emit("@SP")
	g.emit("AM=M-1")
	g.emit("D=M")
	g.emit("A=A-1")
	g.emit("D=M-D")
	g.emit("@%s", trueL)
	switch in.Op {
	case vm.Eq:
		g.emit("D;JEQ")
	case vm.Gt:
		g.emit("D;JGT")
	case vm.Lt:
		g.emit("D;JLT")
	}
	g.emit("@SP")
	g.emit("A=M-1")
	g.emit("M=0")
	g.emit("@%s", endL)
	g.emit("0;JMP")
	g.emit("(%s)", trueL)
	g.emit("@SP")
	g.emit("A=M-1")
	g.emit("M=-1")
	g.emit("(%s)", endL)
}

func (g *Gen) emitCall(name string, nArgs int, span diag.Span) {
	k := g.callCount
	g.callCount++
	ret := fmt.Sprintf("RET_%d", k)

	g.emit("@%s", ret)
	g.emit("D=A")
	g.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		g.emit("@%s", reg)
		g.emit("D=M")
		g.pushD()
	}
	g.emit("@SP")
	g.emit("D=M")
	g.emit("@%d", nArgs+5)
	g.emit("D=D-A")
	g.emit("@ARG")
	g.emit("M=D")
	g.emit("@SP")
	g.emit("D=M")
	g.emit("@LCL")
	g.emit("M=D")
	g.emit("@%s", name)
	g.emit("0;JMP")
	g.emit("(%s)", ret)
}

func (g *Gen) lowerReturn() {
	g.emit("@LCL")
	g.emit("D=M")
	g.emit("@R13")
	g.emit("M=D") // FRAME

	g.emit("@5")
	g.emit("A=D-A")
	g.emit("D=M")
	g.emit("@R14")
	g.emit("M=D") // RET

	g.emit("@SP")
	g.emit("AM=M-1")
	g.emit("D=M")
	g.emit("@ARG")
	g.emit("A=M")
	g.emit("M=D") // *ARG = pop()

	g.emit("@ARG")
	g.emit("D=M+1")
	g.emit("@SP")
	g.emit("M=D") // SP = ARG+1

	for i, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		g.emit("@R13")
		g.emit("D=M")
		g.emit("@%d", i+1)
		g.emit("A=D-A")
		g.emit("D=M")
		g.emit("@%s", reg)
		g.emit("M=D")
	}

	g.emit("@R14")
	g.emit("A=M")
	g.emit("0;JMP")
}
