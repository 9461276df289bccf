package engine

import (
	"context"
	"log/slog"
	"time"
)

// Outcome classifies what happened to one record during a pass.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeReverted  Outcome = "reverted"
	OutcomeFailed    Outcome = "failed"
)

// RecordOutcome is one record's result within a pass.
type RecordOutcome struct {
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// PassReport summarizes one complete pass over all applicable records.
type PassReport struct {
	Pass       string          `json:"pass"`
	Token      string          `json:"token"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Records    []RecordOutcome `json:"records"`

	// Err is set when the pass aborted with a pass-fatal error, e.g.
	// the initial fetch failed. Per-record failures do not set it.
	Err string `json:"error,omitempty"`
}

// Outcome returns "ok" or "failed" for the pass as a whole.
func (r *PassReport) Outcome() string {
	if r.Err != "" {
		return "failed"
	}
	return "ok"
}

// Processed counts records that were created, updated or unchanged.
func (r *PassReport) Processed() int {
	n := 0
	for _, rec := range r.Records {
		switch rec.Outcome {
		case OutcomeCreated, OutcomeUpdated, OutcomeUnchanged:
			n++
		}
	}
	return n
}

// Skipped counts records that were skipped or reverted for attention.
func (r *PassReport) Skipped() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeSkipped || rec.Outcome == OutcomeReverted {
			n++
		}
	}
	return n
}

// Failed counts records whose processing failed.
func (r *PassReport) Failed() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// beginPass opens a report and its journal run.
func (e *Engine) beginPass(ctx context.Context, name string) *PassReport {
	r := &PassReport{
		Pass:      name,
		Token:     e.tokens.Generate(),
		StartedAt: e.now(),
	}
	if err := e.journal.BeginRun(ctx, r.Token, r.Pass, r.StartedAt); err != nil {
		e.log.Warn("journal begin failed", "pass", name, "error", err)
	}
	return r
}

// record appends one record outcome to the report and the journal.
func (e *Engine) record(ctx context.Context, r *PassReport, key string, outcome Outcome, detail string) {
	r.Records = append(r.Records, RecordOutcome{Key: key, Outcome: outcome, Detail: detail})
	if err := e.journal.RecordOutcome(ctx, r.Token, len(r.Records), key, string(outcome), detail); err != nil {
		e.log.Warn("journal record failed", "pass", r.Pass, "key", key, "error", err)
	}
	level := slog.LevelDebug
	if outcome == OutcomeFailed || outcome == OutcomeReverted {
		level = slog.LevelWarn
	}
	e.log.Log(ctx, level, "record processed",
		"pass", r.Pass, "key", key, "outcome", string(outcome), "detail", detail)
}

// finishPass closes the report and its journal run. err, when non-nil,
// marks the pass as aborted.
func (e *Engine) finishPass(ctx context.Context, r *PassReport, err error) *PassReport {
	r.FinishedAt = e.now()
	if err != nil {
		r.Err = err.Error()
		e.log.Error("pass aborted", "pass", r.Pass, "error", err)
	} else {
		e.log.Info("pass finished",
			"pass", r.Pass, "processed", r.Processed(), "skipped", r.Skipped(), "failed", r.Failed())
	}
	if jerr := e.journal.FinishRun(ctx, r.Token, r.FinishedAt, r.Outcome(), r.Processed(), r.Skipped(), r.Failed()); jerr != nil {
		e.log.Warn("journal finish failed", "pass", r.Pass, "error", jerr)
	}
	return r
}
