// jackc compiles Jack source into VM instructions. Flags follow the
// teacher's compiler/main.go ("-path", bool toggles) idiom.
package main

import (
	"flag"
	"os"

	"hacktoolchain/internal/driver"
	"hacktoolchain/internal/logger"
)

func main() {
	path := flag.String("path", "", "path to a .jack file or a directory of .jack files")
	lint := flag.Bool("lint", false, "report unused-variable and redefinition warnings")
	verbose := flag.Bool("v", false, "verbose stage logging")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	logger.SetVerbose(*verbose)

	if !driver.CompileJack(*path, *lint) {
		os.Exit(1)
	}
}
