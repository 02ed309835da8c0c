// Package snake holds interactive prompts for the CLI.
package snake

import (
	"errors"
	"io"
	"strconv"

	"github.com/manifoldco/promptui"
)

// Confirm asks a yes/no question on in/out. An answer other than yes, or an
// interrupted prompt, is a no.
func Confirm(in io.Reader, out io.Writer, label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(in),
		Stdout:    NopCloser(out),
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return false, nil
	default:
		return false, err
	}
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch str {
	case "1", "t", "T", "true", "TRUE", "True", "y", "Y", "yes", "YES", "Yes", "on":
		return true, nil
	case "0", "f", "F", "false", "FALSE", "False", "n", "N", "no", "NO", "No", "off":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopWriteCloser{w}
}
