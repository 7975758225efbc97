// Command whitelistgen builds the whitelist resource the integrity detector
// loads at startup.
//
//	whitelistgen hash github.com/google/uuid 0123456789abcdef
//	whitelistgen encode --binary ./guardd --out whitelist.bin
//	whitelistgen decode whitelist.bin
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
