// Command searchctl runs queries against a corpus file without starting the
// HTTP service.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/embedded-search/cmd/searchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
