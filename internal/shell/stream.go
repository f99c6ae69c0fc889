package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatdeck/internal/logging"
)

const (
	defaultShell  = "/bin/sh"
	maxLineBytes  = 1 << 20
	waitDelayTime = 2 * time.Second
)

// Result describes a finished command.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell sets the shell binary invoked as "<shell> -c <command>".
func WithShell(shell string) Option {
	return func(r *Runner) {
		if shell = strings.TrimSpace(shell); shell != "" {
			r.shell = shell
		}
	}
}

// WithDir sets the working directory of spawned commands.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv appends KEY=VALUE entries to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.NewComponentLogger(logger, "shell")
	}
}

// Runner spawns shell commands.
type Runner struct {
	shell  string
	dir    string
	env    []string
	logger *slog.Logger
}

// NewRunner constructs a Runner using /bin/sh unless configured otherwise.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		shell:  defaultShell,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check validates command with the grammar of the runner's shell.
func (r *Runner) Check(command string) ([]string, error) {
	return CheckFor(r.shell, command)
}

// Start validates command, spawns it and returns the stream of its output.
// Cancelling ctx kills the command and every process it started.
func (r *Runner) Start(ctx context.Context, command string) (*Stream, error) {
	programs, err := r.Check(command)
	if err != nil {
		return nil, err
	}

	reader, writer, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.shell, "-c", command) //nolint:gosec
	cmd.Dir = r.dir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.WaitDelay = waitDelayTime
	configureProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("start command: %w", err)
	}
	// The child holds its own copy of the write end; closing ours lets the
	// reader see EOF once the child exits.
	_ = writer.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Debug("command started",
		logging.Int("pid", cmd.Process.Pid),
		logging.String("programs", strings.Join(programs, ",")),
	)

	return &Stream{
		id:      runID,
		cmd:     cmd,
		reader:  reader,
		scanner: scanner,
		started: time.Now(),
		logger:  logger,
	}, nil
}

// Stream is the output of one running command. It is not safe for
// concurrent use.
type Stream struct {
	id      string
	cmd     *exec.Cmd
	reader  *os.File
	scanner *bufio.Scanner
	started time.Time
	logger  *slog.Logger

	line string
	done bool

	closeOnce sync.Once
	result    Result
	closeErr  error
}

// ID identifies the run in logs.
func (s *Stream) ID() string {
	return s.id
}

// Next advances to the next line, blocking until the command writes one or
// exits. It returns false at end of output.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	if s.scanner.Scan() {
		s.line = s.scanner.Text()
		return true
	}
	s.done = true
	s.line = ""
	return false
}

// Text returns the current line without its line terminator.
func (s *Stream) Text() string {
	return s.line
}

// Err returns the first read error, if any. Reads that fail because the
// stream was closed early are not reported.
func (s *Stream) Err() error {
	err := s.scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Lines yields the remaining lines. Breaking out of the loop leaves the
// stream open; Close must still be called.
func (s *Stream) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.Next() {
			if !yield(s.Text()) {
				return
			}
		}
	}
}

// Close releases the output pipe and waits for the command to exit. It is
// safe to call more than once; later calls return the first outcome. A
// command that exits with a non-zero status, or is killed, is reported
// through Result.ExitCode (-1 when terminated by a signal) without an error.
func (s *Stream) Close() (Result, error) {
	s.closeOnce.Do(func() {
		s.done = true
		_ = s.reader.Close()
		err := s.cmd.Wait()
		s.result = Result{ExitCode: s.cmd.ProcessState.ExitCode(), Duration: time.Since(s.started)}

		var exitErr *exec.ExitError
		switch {
		case err == nil, errors.As(err, &exitErr):
		case errors.Is(err, exec.ErrWaitDelay):
		default:
			s.closeErr = fmt.Errorf("wait for command: %w", err)
		}
		s.logger.Debug("command finished",
			logging.Int("exit_code", s.result.ExitCode),
			logging.Duration("duration", s.result.Duration),
		)
	})
	return s.result, s.closeErr
}

// Run executes command to completion, handing every output line to onLine.
func (r *Runner) Run(ctx context.Context, command string, onLine func(string)) (Result, error) {
	stream, err := r.Start(ctx, command)
	if err != nil {
		return Result{}, err
	}
	for line := range stream.Lines() {
		if onLine != nil {
			onLine(line)
		}
	}
	result, err := stream.Close()
	if err != nil {
		return result, err
	}
	if scanErr := stream.Err(); scanErr != nil {
		return result, fmt.Errorf("read output: %w", scanErr)
	}
	return result, nil
}
