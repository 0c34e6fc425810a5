package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/branchd-dev/authgate/internal/auth"
)

type hashPasswordOptions struct {
	password string
	cost     int
	input    io.Reader
	output   io.Writer
	prompt   func() (string, error)
}

// HashPasswordOption configures runHashPassword
type HashPasswordOption func(*hashPasswordOptions)

// WithHashInput reads the password from r when none is given
func WithHashInput(r io.Reader) HashPasswordOption {
	return func(o *hashPasswordOptions) {
		o.input = r
		o.prompt = nil
	}
}

// WithHashOutput writes the hash to w
func WithHashOutput(w io.Writer) HashPasswordOption {
	return func(o *hashPasswordOptions) {
		o.output = w
	}
}

// NewHashPasswordCmd creates the hash-password command
func NewHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Long: `Prints a salted bcrypt hash suitable for the password_hash column.
The password is read from the argument, from a terminal prompt, or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []HashPasswordOption{WithHashOutput(cmd.OutOrStdout())}
			if len(args) == 1 {
				opts = append(opts, withPassword(args[0]))
			}
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				opts = append(opts, WithHashInput(cmd.InOrStdin()))
			}
			return runHashPassword(cost, opts...)
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost factor")

	return cmd
}

func withPassword(password string) HashPasswordOption {
	return func(o *hashPasswordOptions) {
		o.password = password
	}
}

func runHashPassword(cost int, opts ...HashPasswordOption) error {
	o := &hashPasswordOptions{
		cost:   cost,
		output: os.Stdout,
		prompt: promptPassword,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.cost < bcrypt.MinCost || o.cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	password := o.password
	if password == "" {
		var err error
		if o.prompt != nil {
			password, err = o.prompt()
		} else {
			password, err = readPassword(o.input)
		}
		if err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	hash, err := auth.NewHasher(o.cost).Hash(password)
	if err != nil {
		return err
	}

	fmt.Fprintln(o.output, hash)
	return nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
