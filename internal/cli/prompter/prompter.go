// Package prompter reads interactive input for puffctl.
package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// In is the source of answers; tests replace it
var In io.Reader = os.Stdin

// one buffered reader per source so consecutive prompts do not lose input
var (
	reader    *bufio.Reader
	readerSrc io.Reader
)

func lineReader() *bufio.Reader {
	if reader == nil || readerSrc != In {
		reader = bufio.NewReader(In)
		readerSrc = In
	}
	return reader
}

// PromptString prompts for a line of input
func PromptString(label string) (string, error) {
	fmt.Print(label)
	input, err := lineReader().ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword prompts for a password without echo when stdin is a terminal
func PromptPassword(label string) (string, error) {
	if f, ok := In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Print(label)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return PromptString(label)
}

// PromptConfirm prompts for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	answer, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
