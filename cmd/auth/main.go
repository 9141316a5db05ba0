// Command auth runs the gatekeeper authentication service.
package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gatekeeper: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return application.Run()
}
