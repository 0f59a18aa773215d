package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Users(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	  - help           - show available commands
//	  - register       - create an account
//	  - login          - authenticate with username or email
//	  - forgot         - reset a forgotten password
//	  - users          - list registered accounts
//	  - logout         - log out (when logged in)
//	  - exit | quit    - leave the program
//
// Handler errors are reported and the loop continues, except for storage
// failures, which end the loop and are returned. EOF ends the loop with nil.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) error {
	for {
		printlnFn(fmt.Sprintf("ak%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return nil
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: users, logout, exit")
			} else {
				printlnFn("Available commands: register, login, forgot, users, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "forgot":
			cmdErr = a.Forgot(ctx)

		case "users":
			cmdErr = a.Users(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return nil

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			if fatal(cmdErr) {
				printlnFn("Cannot save users file, exiting:", cmdErr)
				return cmdErr
			}
			if errors.Is(cmdErr, io.EOF) {
				return nil
			}
			printlnFn("Error:", cmdErr)
		}
	}
}
