// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package runmanager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// maxStderrSize bounds the captured standard error per task.
const maxStderrSize = 1 << 20 // 1MB

// ErrStderrOverflow is returned when a task writes more stderr than is captured.
var ErrStderrOverflow = fmt.Errorf("stderr exceeds max size of %d bytes", maxStderrSize)

// Task wraps one external command invocation. The command is an argv vector,
// never a shell line; stdout goes to StdoutPath when set, otherwise it is
// inherited. A Task owns at most one live process: Start may be called once.
//
// ProgressPct is derived from the size of the file at OutputPath relative to
// ExpectedSize. It is purely observational; the task never opens or
// validates the output file's contents.
type Task struct {
	Title        string   // Descriptive title used in reports
	Path         string   // Executable; looked up on PATH when not absolute
	Args         []string // Arguments, excluding the executable name
	StdoutPath   string   // Optional file to receive stdout, relative to the working directory
	OutputPath   string   // Expected output artifact, relative to the working directory
	ExpectedSize int64    // Size hint for OutputPath, bytes; 0 disables percent reporting
	Fs           afero.Fs // Filesystem for progress stats; defaults to the OS filesystem

	mu         sync.Mutex
	proc       *os.Process
	started    bool
	terminated bool
	startedAt  time.Time
	outputPath string // OutputPath resolved against the working directory
	res        *Result
	done       chan struct{}
}

// Start spawns the process in dir with env merged over the inherited
// environment. A spawn failure (executable not found, permission denied) is
// recorded as a finished, failed result so that polling loops observe it the
// same way as a non-zero exit; the error is also returned for callers that
// want it immediately. Starting a task twice is a precondition violation and
// returns ErrAlreadyStarted without touching the first process.
func (t *Task) Start(dir string, env map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrAlreadyStarted
	}

	t.started = true
	t.startedAt = time.Now()
	t.done = make(chan struct{})

	t.outputPath = t.OutputPath
	if t.outputPath != "" && dir != "" && !filepath.IsAbs(t.outputPath) {
		t.outputPath = filepath.Join(dir, t.outputPath)
	}

	path := t.Path
	if !filepath.IsAbs(path) {
		resolved, err := exec.LookPath(path)
		if err != nil {
			return t.finishFailedLocked(errors.Join(ErrCouldNotStartProcess, err))
		}

		path = resolved
	}

	procEnv := os.Environ()
	for k, v := range env {
		procEnv = append(procEnv, fmt.Sprintf("%s=%s", k, v))
	}

	stdout := os.Stdout

	var stdoutFile *os.File

	if t.StdoutPath != "" {
		p := t.StdoutPath
		if dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}

		f, err := os.Create(p)
		if err != nil {
			return t.finishFailedLocked(errors.Join(ErrCouldNotStartProcess, err))
		}

		stdoutFile = f
		stdout = f
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		if stdoutFile != nil {
			stdoutFile.Close() //nolint:errcheck
		}

		return t.finishFailedLocked(errors.Join(ErrCouldNotStartProcess, err))
	}

	args := slices.Concat([]string{filepath.Base(path)}, t.Args)

	ps, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   dir,
		Env:   procEnv,
		Files: []*os.File{os.Stdin, stdout, wErr},
		Sys:   sysProcAttr(),
	})

	// The child owns the write end now.
	wErr.Close() //nolint:errcheck

	if err != nil {
		rErr.Close() //nolint:errcheck

		if stdoutFile != nil {
			stdoutFile.Close() //nolint:errcheck
		}

		return t.finishFailedLocked(errors.Join(ErrCouldNotStartProcess, err))
	}

	t.proc = ps

	go t.wait(ps, rErr, stdoutFile)

	return nil
}

// wait records the exit state of the process. It is the only writer of the
// result after a successful spawn; pollers read it without ever blocking on
// process exit.
func (t *Task) wait(ps *os.Process, stderr *os.File, stdoutFile *os.File) {
	// Drain stderr before waiting so the child never blocks on a full pipe.
	errOut, readErr := readAllUpToMax(stderr, maxStderrSize)

	state, waitErr := ps.Wait()

	stderr.Close() //nolint:errcheck

	if stdoutFile != nil {
		stdoutFile.Close() //nolint:errcheck
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	res := &Result{
		Label:    t.Title,
		Stderr:   errOut,
		Duration: time.Since(t.startedAt),
	}

	switch {
	case waitErr != nil:
		res.Status = StatusFailed
		res.ExitCode = -1
		res.Err = waitErr
	case t.terminated:
		res.Status = StatusFailed
		res.ExitCode = state.ExitCode()
		res.Err = ErrTerminated
	case state.ExitCode() == 0:
		res.Status = StatusSuccess
	default:
		res.Status = StatusFailed
		res.ExitCode = state.ExitCode()
		res.Err = fmt.Errorf("%w: %d", ErrNonZeroExit, state.ExitCode())
	}

	if readErr != nil {
		res.Err = errors.Join(res.Err, readErr)
	}

	t.res = res
	close(t.done)
}

// finishFailedLocked records a spawn failure as a finished, failed result.
// The caller must hold t.mu.
func (t *Task) finishFailedLocked(err error) error {
	t.res = &Result{
		Label:    t.Title,
		Status:   StatusFailed,
		ExitCode: -1,
		Err:      err,
	}
	close(t.done)

	return err
}

// Started reports whether a process has ever been spawned (or a spawn attempt
// failed) for this task.
func (t *Task) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.started
}

// Running reports whether the process has been started and has not exited.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.started && t.res == nil
}

// Finished reports whether the process was started and has exited,
// regardless of exit code.
func (t *Task) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.res != nil
}

// Succeeded reports whether the process exited with code zero and no
// spawn or termination error. Finished and succeeded are independent.
func (t *Task) Succeeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.res != nil && t.res.Status == StatusSuccess
}

// Result returns the task result, or nil while the task has not finished.
func (t *Task) Result() *Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.res
}

// Done returns a channel closed when the task finishes, or nil if the task
// has not been started.
func (t *Task) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.done
}

// Terminate kills the process if it is running. It is idempotent: calling it
// on a task that has not started or has already finished is a no-op.
func (t *Task) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.res != nil || t.proc == nil || t.terminated {
		return
	}

	t.terminated = true

	killProcess(t.proc)
}

// ProgressPct returns completion as a percentage derived from the expected
// output size: 0 before start, -1 when no size hint is available or the
// output file does not exist yet, otherwise min(100, 100*size/expected).
func (t *Task) ProgressPct() float64 {
	t.mu.Lock()
	outputPath := t.outputPath
	started := t.started
	t.mu.Unlock()

	if !started {
		return 0
	}

	if outputPath == "" || t.ExpectedSize <= 0 {
		return -1
	}

	fi, err := t.fs().Stat(outputPath)
	if err != nil {
		return -1
	}

	return min(100, 100*float64(fi.Size())/float64(t.ExpectedSize))
}

// ProgressReport returns a human-readable one-line status for the task.
// The exact wording carries no contract.
func (t *Task) ProgressReport() string {
	t.mu.Lock()
	res := t.res
	started := t.started
	startedAt := t.startedAt
	t.mu.Unlock()

	switch {
	case !started:
		return fmt.Sprintf("%s is not started", t.Title)
	case res != nil && res.Status == StatusSuccess:
		return fmt.Sprintf("Finished %s successfully in %s", t.Title, res.Duration.Round(time.Millisecond))
	case res != nil:
		return fmt.Sprintf("%s failed: %v", t.Title, res.Err)
	}

	elapsed := time.Since(startedAt).Round(time.Second)

	if pct := t.ProgressPct(); pct >= 0 {
		return fmt.Sprintf("%s is %.1f%% complete (%s)", t.Title, pct, elapsed)
	}

	return fmt.Sprintf("%s is still running (%s)", t.Title, elapsed)
}

func (t *Task) fs() afero.Fs {
	if t.Fs == nil {
		return afero.NewOsFs()
	}

	return t.Fs
}

// readAllUpToMax reads r until EOF, retaining at most maxSize bytes.
func readAllUpToMax(r io.Reader, maxSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxSize+1)
	if err != nil && err != io.EOF {
		return buf.Bytes(), err
	}

	if n > maxSize {
		// Keep draining so the child is never blocked on the pipe.
		_, _ = io.Copy(io.Discard, r)

		return buf.Bytes()[:maxSize], ErrStderrOverflow
	}

	return buf.Bytes(), nil
}
