package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrClearCancelled is returned when the operator declines clearing.
	ErrClearCancelled = errors.New("clearing cancelled by operator")
	// ErrConfirmationRequired is returned when clearing was requested without
	// a terminal to ask and without a confirmation token.
	ErrConfirmationRequired = errors.New("clearing requires -confirm yes when stdin is not a terminal")
)

// ConfirmFunc asks whether destructive clearing may proceed.
type ConfirmFunc func(ctx context.Context) (bool, error)

func isYes(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "yes"
}

// TokenConfirm confirms from a value given on the command line.
func TokenConfirm(token string) ConfirmFunc {
	return func(context.Context) (bool, error) {
		return isYes(token), nil
	}
}

// RefuseConfirm is used when nobody can be asked.
func RefuseConfirm() ConfirmFunc {
	return func(context.Context) (bool, error) {
		return false, ErrConfirmationRequired
	}
}

// PromptConfirm asks on out and reads one line from in. Cancelling ctx
// (Ctrl-C) abandons the prompt.
func PromptConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	return func(ctx context.Context) (bool, error) {
		fmt.Fprint(out, "\nAre you sure you want to clear all data? (yes/no): ")

		type reply struct {
			line string
			err  error
		}
		replies := make(chan reply, 1)
		go func() {
			line, err := bufio.NewReader(in).ReadString('\n')
			replies <- reply{line: line, err: err}
		}()

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case r := <-replies:
			if r.err != nil && r.line == "" {
				return false, fmt.Errorf("read confirmation: %w", r.err)
			}
			return isYes(r.line), nil
		}
	}
}
