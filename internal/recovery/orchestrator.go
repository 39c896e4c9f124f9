package recovery

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codetrail/typeweave/internal/graph"
)

// ProgressReporter reports progress during a recovery pass.
type ProgressReporter interface {
	OnRecoveryStart(totalUnits int)
	OnUnitRecovered(processedUnits, totalUnits int, file string)
	OnRecoveryComplete(unitCount, editCount int, duration time.Duration)
}

// Orchestrator discovers compilation units and runs one recovery task per
// unit. Units are fully independent: the only shared mutable resource is the
// mutation batch, applied atomically after every unit has finished.
type Orchestrator struct {
	program     *graph.Program
	hooks       map[string]LanguageHooks // language -> hooks
	parallelism int
	progress    ProgressReporter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithParallelism caps the number of concurrently recovered units.
func WithParallelism(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(o *Orchestrator) {
		o.progress = progress
	}
}

// NewOrchestrator creates an orchestrator over the given program. The hooks
// map provides one LanguageHooks implementation per source language; units
// of an unregistered language are skipped.
func NewOrchestrator(program *graph.Program, hooks map[string]LanguageHooks, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		program:     program,
		hooks:       hooks,
		parallelism: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run recovers types for every compilation unit and applies the accumulated
// edits in one batch. A failed unit aborts the whole pass: no edits are
// applied and the error is returned.
func (o *Orchestrator) Run(ctx context.Context) (int, error) {
	startTime := time.Now()

	var units []*graph.CompilationUnit
	for _, unit := range o.program.Units() {
		if _, ok := o.hooks[unit.Language()]; !ok {
			log.Printf("Skipping %s: no recovery hooks for language %q", unit.File(), unit.Language())
			continue
		}
		units = append(units, unit)
	}

	if o.progress != nil {
		o.progress.OnRecoveryStart(len(units))
	}

	batch := graph.NewMutations()
	processed := make(chan string, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for _, unit := range units {
		unit := unit
		g.Go(func() error {
			task := newUnitTask(unit, o.hooks[unit.Language()], batch)
			if err := task.Run(gctx); err != nil {
				return err
			}
			processed <- unit.File()
			return nil
		})
	}

	// Drain progress updates while units run.
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		count := 0
		for file := range processed {
			count++
			if o.progress != nil {
				o.progress.OnUnitRecovered(count, len(units), file)
			}
		}
	}()

	err := g.Wait()
	close(processed)
	<-reporterDone

	if err != nil {
		// No partial commits: the batch is dropped with the error.
		return 0, fmt.Errorf("recovery pass aborted: %w", err)
	}

	applied, err := batch.Apply(o.program)
	if err != nil {
		return 0, fmt.Errorf("failed to apply recovered types: %w", err)
	}

	if o.progress != nil {
		o.progress.OnRecoveryComplete(len(units), applied, time.Since(startTime))
	}

	return applied, nil
}
