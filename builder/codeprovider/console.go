package codeprovider

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"opencsg.com/auth-exerciser/common/errorx"
)

type consoleProvider struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleProvider asks a human for the code: it prompts on out and reads one line from in.
func NewConsoleProvider(in io.Reader, out io.Writer) Provider {
	return &consoleProvider{in: bufio.NewReader(in), out: out}
}

type readResult struct {
	line string
	err  error
}

func (p *consoleProvider) ObtainCode(ctx context.Context, email string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "enter the verification code sent to %s: ", email)

	// the read cannot be interrupted, so it is left behind if ctx ends first
	ch := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", fmt.Errorf("failed to read verification code: %w", r.err)
		}
		code := strings.TrimSpace(r.line)
		if code == "" {
			return "", errorx.ErrEmptyCode
		}
		return code, nil
	}
}
