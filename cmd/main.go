package main

import (
	"fmt"
	"os"

	"reading-hero-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reading-hero: %v\n", err)
		os.Exit(1)
	}
}
