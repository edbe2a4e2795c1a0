//go:build !windows
// +build !windows

package flags

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

// askPassword prompts for the password of user on the controlling
// terminal, falling back to /dev/tty when stdin is redirected.
func askPassword(user string) (string, error) {
	fd := syscall.Stdin
	if !terminal.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return "", errors.Wrap(err, "opening terminal for password prompt")
		}
		defer tty.Close()
		fd = int(tty.Fd())
	}
	return readPassword(fd, user)
}

func readPassword(fd int, user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	password, err := terminal.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(password), nil
}
