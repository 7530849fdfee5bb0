package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/inventory/internal/core/domain"
)

const (
	DefaultPrompt = "% "

	// MaxLineLen caps a command line; longer lines are rejected whole.
	MaxLineLen = 4096
)

var ErrSaveOnEOF = errors.New("save at end of input failed")

// REPL reads one command per line, dispatches it and writes the response.
type REPL struct {
	in         io.Reader
	out        io.Writer
	dispatcher *Dispatcher
	prompt     string
	saveOnEOF  bool
	logger     *zap.Logger
}

type REPLOption func(*REPL)

func WithPrompt(prompt string) REPLOption {
	return func(r *REPL) {
		r.prompt = prompt
	}
}

// WithSaveOnEOF makes a closed input stream behave like quit.
func WithSaveOnEOF(save bool) REPLOption {
	return func(r *REPL) {
		r.saveOnEOF = save
	}
}

func WithREPLLogger(logger *zap.Logger) REPLOption {
	return func(r *REPL) {
		r.logger = logger
	}
}

func NewREPL(in io.Reader, out io.Writer, dispatcher *Dispatcher, opts ...REPLOption) *REPL {
	r := &REPL{
		in:         in,
		out:        out,
		dispatcher: dispatcher,
		prompt:     DefaultPrompt,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loops until quit succeeds, the input ends, or ctx is canceled.
func (r *REPL) Run(ctx context.Context) error {
	br := bufio.NewReaderSize(r.in, MaxLineLen)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := io.WriteString(r.out, r.prompt); err != nil {
			return fmt.Errorf("write prompt: %w", err)
		}

		line, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			return r.handleEOF(ctx)
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var resp Response
		if tooLong {
			r.logger.Warn("command line too long", zap.Int("max_len", MaxLineLen))
			resp = r.dispatcher.Reject(line)
		} else {
			resp = r.dispatcher.Dispatch(ctx, line)
		}
		if err := r.write(resp); err != nil {
			return err
		}
		if resp.Quit {
			return nil
		}
	}
}

// readLine returns the next line without its terminator. A line that does
// not fit the reader's buffer is drained; its first MaxLineLen bytes are
// returned with tooLong set.
func readLine(br *bufio.Reader) (string, bool, error) {
	chunk, isPrefix, err := br.ReadLine()
	if err != nil {
		return "", false, err
	}
	line := string(chunk)
	if !isPrefix {
		return line, false, nil
	}

	for isPrefix {
		_, isPrefix, err = br.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, err
		}
	}
	return line, true, nil
}

func (r *REPL) handleEOF(ctx context.Context) error {
	if _, err := io.WriteString(r.out, "\n"); err != nil {
		return fmt.Errorf("write response: %w", err)
	}

	if !r.saveOnEOF {
		r.logger.Warn("input closed without quit, changes discarded")
		return nil
	}

	r.logger.Info("input closed, saving")
	resp := r.dispatcher.Dispatch(ctx, string(domain.VerbQuit))
	if err := r.write(resp); err != nil {
		return err
	}
	if !resp.Quit {
		return ErrSaveOnEOF
	}
	return nil
}

func (r *REPL) write(resp Response) error {
	if _, err := io.WriteString(r.out, resp.Output+resp.Message+"\n"); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
