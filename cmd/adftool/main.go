// adftool inspects and creates the disk images used by the emulator.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "*** %s\n", err)
		os.Exit(1)
	}
}
