package main

import (
	"os"

	"github.com/soundprediction/go-domainprompts/cmd/domainprompts"
)

func main() {
	if err := domainprompts.Execute(); err != nil {
		os.Exit(1)
	}
}
