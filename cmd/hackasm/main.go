// hackasm assembles Hack assembly into machine code. Supplements the
// two-stage spec pipeline with the third stage the original system and the
// teacher's assembler/ package both implement.
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
	path := flag.String("path", "", "path to a .asm file")
	out := flag.String("o", "", "output .hack path (default: sibling of -path)")
	verbose := flag.Bool("v", false, "verbose stage logging")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	logger.SetVerbose(*verbose)

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(*path, filepath.Ext(*path)) + ".hack"
	}

	if !driver.AssembleFile(*path, outPath) {
		os.Exit(1)
	}
}
