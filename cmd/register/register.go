package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"minicms/internal/store"
)

const (
	promptUsername = "Enter a username: "
	promptPassword = "Enter a password: "
	msgTaken       = "Username already exists. Please choose a different one."
	msgSuccess     = "Registration successful!"
)

// readLine prints prompt and returns one input line without its line ending.
// A final line without a newline is accepted; EOF with nothing read is an
// error.
func readLine(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// run drives the prompts and stores the new user.
func run(reader *bufio.Reader, w io.Writer, users *store.Credentials) error {
	var username string
	for {
		name, err := readLine(reader, w, promptUsername)
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
		taken, err := users.Exists(name)
		if err != nil {
			return err
		}
		if !taken {
			username = name
			break
		}
		fmt.Fprintln(w, msgTaken)
	}

	password, err := readLine(reader, w, promptPassword)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	if err := users.Register(username, password); err != nil {
		return err
	}
	fmt.Fprintln(w, msgSuccess)
	return nil
}
