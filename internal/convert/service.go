package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Run-level failures surfaced to the caller.
var (
	ErrNoFilesFound = errors.New("convert: no convertible files found in repository")
	ErrNoOutput     = errors.New("convert: conversion produced no files")
)

// TreeLister resolves a branch to its flat tree listing. Implemented by
// the GitHub client.
type TreeLister interface {
	GetTree(ctx context.Context, token, owner, repo, branch string) ([]TreeEntry, error)
}

// ProgressFunc receives run lifecycle events. May be nil.
type ProgressFunc func(event string, batchIndex, batchTotal int, detail string)

// Throttle is the cooperative rate-shaping policy for a run. Zero values
// disable all pacing, which is what unit tests want.
type Throttle struct {
	// BatchDelay is inserted between successive batch conversions.
	BatchDelay time.Duration
	// FetchWindow bounds concurrent file downloads.
	FetchWindow int
	// FetchDelay is inserted between fetch windows.
	FetchDelay time.Duration
}

// Options configures a conversion service.
type Options struct {
	Policy      Policy
	SizeLimit   int // cumulative batch content budget
	MaxFileSize int // per-file fetch ceiling
	Throttle    Throttle
}

// Service drives the full pipeline: select, fetch, plan, convert batch
// by batch with fallback, then aggregate.
type Service struct {
	trees    TreeLister
	contents ContentGetter
	engine   *Engine
	fallback Fallback
	opts     Options
	progress ProgressFunc
}

func NewService(trees TreeLister, contents ContentGetter, engine *Engine, opts Options) *Service {
	if opts.SizeLimit <= 0 {
		opts.SizeLimit = 40_000
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 100_000
	}
	if opts.Policy.MaxFiles == 0 {
		opts.Policy = DefaultPolicy()
	}
	return &Service{trees: trees, contents: contents, engine: engine, opts: opts}
}

// OnProgress registers a lifecycle event callback.
func (s *Service) OnProgress(fn ProgressFunc) { s.progress = fn }

// Convert runs the whole pipeline for one repository branch. Batches run
// strictly sequentially; a failed batch degrades to fallback stubs and
// the run keeps going.
func (s *Service) Convert(ctx context.Context, token, owner, repo, branch string, target TargetSpec) (Result, error) {
	entries, err := s.trees.GetTree(ctx, token, owner, repo, branch)
	if err != nil {
		return Result{}, fmt.Errorf("list repository tree: %w", err)
	}

	selected := NewSelector(s.opts.Policy).Select(entries)
	if len(selected) == 0 {
		return Result{}, ErrNoFilesFound
	}

	s.emit("fetching", 0, 0, fmt.Sprintf("%d files selected", len(selected)))
	fetcher := NewFetcher(s.contents, s.opts.MaxFileSize, s.opts.Throttle.FetchWindow, s.opts.Throttle.FetchDelay)
	files, err := fetcher.Fetch(ctx, token, owner, repo, branch, selected)
	if err != nil {
		return Result{}, fmt.Errorf("fetch repository files: %w", err)
	}
	if len(files) == 0 {
		return Result{}, ErrNoFilesFound
	}

	batches := Planner{SizeLimit: s.opts.SizeLimit, GroupByPriority: true}.Plan(files)
	s.emit("planning", 0, len(batches), fmt.Sprintf("%d files in %d batches", len(files), len(batches)))

	result := Result{
		Summary: Summary{
			OriginalFileCount: len(files),
			BatchCount:        len(batches),
		},
	}
	for i, batch := range batches {
		if i > 0 && s.opts.Throttle.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(s.opts.Throttle.BatchDelay):
			}
		}

		converted, err := s.engine.ConvertBatch(ctx, batch, target, i)
		outcome := BatchOutcome{BatchIndex: i, Status: StatusSuccess}
		if err != nil {
			log.Printf("convert: batch %d failed, generating fallback: %v", i, err)
			converted = s.fallback.Generate(batch, target)
			outcome.Status = StatusFallback
			outcome.Error = err.Error()
			for _, f := range batch.Files {
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s requires manual conversion", f.Path))
			}
		}
		outcome.FileCount = len(converted)
		result.Files = append(result.Files, converted...)
		result.Summary.Outcomes = append(result.Summary.Outcomes, outcome)
		s.emit("batch", i, len(batches), outcome.Status)
	}

	result.Summary.ConvertedFileCount = len(result.Files)
	if result.Summary.ConvertedFileCount == 0 {
		// Fallback is total, so this only fires with zero batches; kept as
		// a last-line invariant check.
		return Result{}, ErrNoOutput
	}
	s.emit("done", len(batches), len(batches), "")
	return result, nil
}

func (s *Service) emit(event string, batchIndex, batchTotal int, detail string) {
	if s.progress != nil {
		s.progress(event, batchIndex, batchTotal, detail)
	}
}
