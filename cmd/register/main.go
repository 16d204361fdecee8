// Command register adds one user to the blog's credential file. It asks for a
// username until an unused one is given, then for a password.
package main

import (
	"bufio"
	"fmt"
	"os"

	"minicms/internal/config"
	"minicms/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't load config: %s\n", err)
		os.Exit(1)
	}

	users := store.NewCredentials(cfg.UsersFile, cfg.HashPasswords)
	if err := run(bufio.NewReader(os.Stdin), os.Stdout, users); err != nil {
		fmt.Fprintf(os.Stderr, "Registration failed: %s\n", err)
		os.Exit(1)
	}
}
