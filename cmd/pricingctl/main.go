package main

import (
	"os"

	"github.com/noah-isme/toko-margin/cmd/pricingctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
