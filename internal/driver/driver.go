// Package driver is the file-walking glue shared by all three CLI
// entrypoints: single file vs. directory, lexical ordering, shared
// bootstrap and static-namespace discipline per spec.md §4.6. Grounded on
// bitmaybewise-jack-compiler-go/main.go's directory-walk-and-translate-
// siblings shape (that repo's driver is a thin main.go, not a package, but
// its walk-then-call-per-file structure is the idiom followed here) and on
// the teacher's own main.go entrypoints, which inline this glue per binary
// instead of sharing it — this package exists so all three cmd/ binaries
// share one implementation instead of three divergent copies.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hacktoolchain/internal/asm"
	"hacktoolchain/internal/asmgen"
	"hacktoolchain/internal/codegen"
	"hacktoolchain/internal/diag"
	"hacktoolchain/internal/lint"
	"hacktoolchain/internal/logger"
	"hacktoolchain/internal/parser"
	"hacktoolchain/internal/token"
	"hacktoolchain/internal/vm"
)

// filesWithExt lists, in lexical order, the files under path with the given
// extension. If path is itself a file, it is returned alone (regardless of
// extension) matching spec.md §4.6's "if a file, translate in isolation."
func filesWithExt(path, ext string) ([]string, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, &diag.IoError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return []string{path}, false, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, false, &diag.IoError{Path: path, Err: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, true, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompileJack translates every .jack file under path (or path itself, if
// it is a single file) into a sibling .vm file. lintOn runs the optional
// unused-variable/redefinition pass; its diagnostics are warnings printed
// to stderr, never a unit failure. Returns true if every unit succeeded.
func CompileJack(path string, lintOn bool) bool {
	files, _, err := filesWithExt(path, ".jack")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	ok := true
	for _, f := range files {
		logger.Printf("jackc: compiling %s\n", f)
		if !compileOne(f, lintOn) {
			ok = false
		}
	}
	return ok
}

func compileOne(path string, lintOn bool) bool {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, &diag.IoError{Path: path, Err: err})
		return false
	}
	toks, err := token.Tokenize(path, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	cls, err := parser.Parse(path, toks)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if lintOn {
		for _, w := range lint.Check(cls).Diagnostics() {
			fmt.Fprintln(os.Stderr, w)
		}
	}
	insns, reporter := codegen.Emit(cls)
	if reporter.HasErrors() {
		for _, e := range reporter.Diagnostics() {
			fmt.Fprintln(os.Stderr, e)
		}
		return false
	}
	logger.Println("jackc: emitted", len(insns), "instructions for", path)
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".vm"
	if err := os.WriteFile(out, []byte(vm.Print(insns)), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, &diag.IoError{Path: out, Err: err})
		return false
	}
	return true
}

// TranslateVM lowers every .vm file under path into one Hack assembly file
// written to out. The bootstrap (SP=256, call Sys.init 0) is emitted when
// translating a directory, or when a lone file defines Sys.init, unless
// noBootstrap is set — spec.md §9's stated default policy.
func TranslateVM(path, out string, noBootstrap bool) bool {
	files, isDir, err := filesWithExt(path, ".vm")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}

	var all []vm.Insn
	ok := true
	for _, f := range files {
		logger.Printf("hackvm: parsing %s\n", f)
		src, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, &diag.IoError{Path: f, Err: err})
			return false
		}
		insns, err := vm.Parse(stem(f), strings.NewReader(string(src)))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			ok = false
			continue
		}
		all = append(all, insns...)
	}
	if !ok {
		return false
	}

	hasSysInit := false
	for _, in := range all {
		if in.Op == vm.Function && in.Name == "Sys.init" {
			hasSysInit = true
		}
	}

	g := asmgen.New()
	if (isDir || hasSysInit) && !noBootstrap {
		g.Bootstrap()
	}
	// Group by originating file to respect the "file seeds the static
	// namespace" rule (spec.md §4.4) even when multiple files are translated
	// together into one assembly output.
	byFile := map[string][]vm.Insn{}
	var order []string
	for _, in := range all {
		f := in.Span.File
		if _, seen := byFile[f]; !seen {
			order = append(order, f)
		}
		byFile[f] = append(byFile[f], in)
	}
	for _, f := range order {
		if err := g.Generate(f, byFile[f]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			ok = false
		}
	}
	if !ok {
		return false
	}
	if err := os.WriteFile(out, []byte(g.Output()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, &diag.IoError{Path: out, Err: err})
		return false
	}
	return true
}

// AssembleFile lowers one Hack assembly file into machine code, written to
// out, one 16-bit binary word per line.
func AssembleFile(path, out string) bool {
	logger.Printf("hackasm: assembling %s\n", path)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, &diag.IoError{Path: path, Err: err})
		return false
	}
	code, err := asm.Assemble(path, string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, &diag.IoError{Path: out, Err: err})
		return false
	}
	return true
}
