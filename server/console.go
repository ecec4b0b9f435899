package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fransk/guessing-game/server/games"
)

// readLines sends every line of in on the returned channel, then the read
// error (nil at EOF) on errc. It stops early once ctx is done.
// lines is closed only after errc holds a value.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// playConsole plays games against lines read from in until quit, EOF or ctx is done.
// The "> " prompt is only written when interactive.
func playConsole(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, errc := readLines(ctx, in)

	s := games.NewSession()
	fmt.Fprintln(out, games.Prompt)
	fmt.Fprintln(out, s.Message())

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				return <-errc
			}
			line = l
		}

		var err error
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "h", "higher":
			err = s.Higher()
		case "l", "lower":
			err = s.Lower()
		case "c", "correct":
			err = s.Correct()
		case "n", "new":
			s = games.NewSession()
			fmt.Fprintln(out, games.Prompt)
		case "q", "quit":
			return nil
		default:
			fmt.Fprintln(out, "Answer higher, lower or correct.")
			continue
		}

		switch {
		case errors.Is(err, games.ErrSolved):
			fmt.Fprintln(out, "Game over. Type new to play again or quit to exit.")
		case errors.Is(err, games.ErrRangeExhausted):
			fmt.Fprintf(out, "There is nothing left to guess. Is it %d?\n", s.Snapshot().Guess)
		case err != nil:
			return err
		default:
			fmt.Fprintln(out, s.Message())
			if s.Solved() {
				fmt.Fprintln(out, "Type new to play again or quit to exit.")
			}
		}
	}
}
