// Command logdata is a small interactive pager that exercises the
// log-data facade end to end: attach, live tailing via the file watcher,
// and encoding forcing. It holds no indexing logic of its own.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/user/logdata/internal/pager"
)

func main() {
	encodingFlag := flag.String("e", "", "Force a display encoding (UTF-8, UTF-16LE, UTF-16BE, UTF-32LE, UTF-32BE, Latin-1)")
	noColorFlag := flag.Bool("no-color", false, "Disable log-level colouring")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: logdata [-e encoding] [-no-color] <file>\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	opts := pager.Options{
		Filepath:      flag.Arg(0),
		ForceEncoding: *encodingFlag,
		NoColor:       *noColorFlag,
	}

	if err := pager.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
