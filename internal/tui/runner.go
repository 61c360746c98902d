// Copyright (c) daylight-tools 2026. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/daylight-tools/radrun/internal/progress"
	"github.com/daylight-tools/radrun/internal/runmanager"
)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
	mutex    sync.Mutex
}

// Reporter implements progress.Reporter and forwards events to the TUI.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a new TUI progress reporter.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter. Events reported after Close are dropped.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	tr.closed = true
}

// NewRunner creates a new TUI runner.
func NewRunner(ctx context.Context) *Runner {
	model := NewModel(ctx)
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewReporter(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// Reporter returns the progress reporter for this TUI runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

// Run starts the TUI and executes the runner with progress reporting. It
// returns when the user exits the TUI; the run keeps its result either way.
func (r *Runner) Run(ctx context.Context, run *runmanager.Runner, opts runmanager.Options) (*runmanager.RunResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	opts.Reporter = r.reporter

	resultChan := make(chan *runmanager.RunResult, 1)

	go func() {
		defer close(resultChan)
		resultChan <- run.Execute(ctx, opts)
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		result *runmanager.RunResult
		tuiErr error
	)

	select {
	case result = <-resultChan:
		// Run finished first; leave the TUI up until the user exits.
		r.program.Send(RunCompletedMsg{Result: result})

		tuiErr = <-tuiDone

		r.reporter.Close()

	case err := <-tuiDone:
		// User quit while the run was still going: stop reporting and wait
		// for the run to wind down.
		tuiErr = err

		r.reporter.Close()

		select {
		case result = <-resultChan:
		case <-ctx.Done():
			result = <-resultChan
		}

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()

		result = <-resultChan

		<-tuiDone
	}

	return result, tuiErr
}
