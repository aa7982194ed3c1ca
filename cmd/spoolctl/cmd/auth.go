package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify and save the edit passcode",
	Long: `Ask for the edit passcode, check it with the server and save it for
later runs. Entering nothing signs out.

When stdin is not a terminal the passcode is read from its first line.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()

		passcode, err := readPasscode(cmd.InOrStdin(), out)
		if err != nil {
			return fmt.Errorf("read passcode: %w", err)
		}

		if err := ctrl.SavePasscode(cmd.Context(), passcode); err != nil {
			return describeError(err, nil)
		}
		if !ctrl.State().Authorized() {
			fmt.Fprintln(out, "Signed out.")
			return nil
		}
		okMark.Fprintf(out, "Passcode verified and saved to %s\n", store.Path())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved passcode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ctrl.SignOut(); err != nil {
			return fmt.Errorf("clear passcode: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

// readPasscode prompts without echo on a terminal and reads one line
// otherwise.
func readPasscode(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Passcode: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
