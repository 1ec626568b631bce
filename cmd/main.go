package main

import (
	"os"

	"github.com/kgraph-io/kgraph/cmd/kgraph"
)

func main() {
	if err := kgraph.Execute(); err != nil {
		os.Exit(1)
	}
}
