package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a stub.
type execIface interface {
	signedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error
	Profile(ctx context.Context) error
	Posts(ctx context.Context) error
	Reload(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
	Bio(ctx context.Context, sub, text string) error
	Post(ctx context.Context, path, caption string) error
	Upload(ctx context.Context, path string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Signed out:
//	  help, signin, signup, upload <file>, exit
//
//	Signed in:
//	  help, profile, posts, reload, avatar <file>,
//	  bio edit | bio set <text> | bio save | bio cancel,
//	  post <file> [caption], upload <file>, signout, exit
//
// Handler errors are dropped here; handlers log them and print state.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "social %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.signedIn() {
				fmt.Fprintln(w, "Available commands: profile, posts, reload, avatar <file>, bio edit|set <text>|save|cancel, post <file> [caption], upload <file>, signout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: signin, signup, upload <file>, exit")
			}

		case "signin":
			_ = a.SignIn(ctx)

		case "signup":
			_ = a.SignUp(ctx)

		case "signout":
			_ = a.SignOut(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "posts":
			_ = a.Posts(ctx)

		case "reload":
			_ = a.Reload(ctx)

		case "avatar":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: avatar <file>")
				continue
			}
			_ = a.Avatar(ctx, args[0])

		case "bio":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: bio edit | bio set <text> | bio save | bio cancel")
				continue
			}
			_ = a.Bio(ctx, args[0], afterFields(line, 2))

		case "post":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: post <file> [caption]")
				continue
			}
			_ = a.Post(ctx, args[0], afterFields(line, 2))

		case "upload":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: upload <file>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}

// afterFields returns line with its first n whitespace-separated fields and
// the blanks that follow them removed. Whitespace inside the rest is kept.
func afterFields(line string, n int) string {
	rest := strings.TrimRight(line, "\r\n")
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		j := strings.IndexAny(rest, " \t")
		if j < 0 {
			return ""
		}
		rest = rest[j:]
	}
	return strings.TrimLeft(rest, " \t")
}
