// Package logger is a toggleable stage-progress logger modeled on
// bitmaybewise-jack-compiler-go/logger and the bare println stage markers in
// compiler/internal/compiler.go ("compiler: start parser at path: ...").
// Silent by default; a CLI's -v flag flips it on.
package logger

import "fmt"

var verbose = false

func SetVerbose(v bool) {
	verbose = v
}

func Printf(format string, args ...any) {
	if !verbose {
		return
	}
	fmt.Printf(format, args...)
}

func Println(args ...any) {
	if !verbose {
		return
	}
	fmt.Println(args...)
}
