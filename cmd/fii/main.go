// Command fii recommends Brazilian real-estate funds and keeps a local
// ledger of the positions bought.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
