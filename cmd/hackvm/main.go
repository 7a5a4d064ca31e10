// hackvm translates VM instructions into Hack assembly. Flags follow the
// teacher's vmtranslator/main.go idiom, extended with -o and -no-bootstrap.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"hacktoolchain/internal/driver"
	"hacktoolchain/internal/logger"
)

func main() {
	path := flag.String("path", "", "path to a .vm file or a directory of .vm files")
	out := flag.String("o", "", "output .asm path (default: sibling of -path)")
	noBootstrap := flag.Bool("no-bootstrap", false, "skip the SP=256 / call Sys.init 0 preamble")
	verbose := flag.Bool("v", false, "verbose stage logging")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	logger.SetVerbose(*verbose)

	outPath := *out
	if outPath == "" {
		outPath = defaultAsmPath(*path)
	}

	if !driver.TranslateVM(*path, outPath, *noBootstrap) {
		os.Exit(1)
	}
}

func defaultAsmPath(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		base := filepath.Base(filepath.Clean(path))
		return filepath.Join(path, base+".asm")
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".asm"
}
