// Package job provides cooperative, resumable step tasks. A job is
// polled once per tick, performs at most one bus command and reports
// its progress. Many jobs, one per drive, can this way be advanced in
// lock step from a single driving loop without threads.
package job

import (
	"errors"
	"time"
)

// ErrTimeout marks a job that exceeded its deadline. Callers may retry
// a timed out job, protocol errors must not be retried blindly.
var ErrTimeout = errors.New("job deadline exceeded")

type Status int

const (
	StatusOngoing Status = iota
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOngoing:
		return "ONGOING"
	case StatusDone:
		return "DONE"
	case StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Progress is the result of a single poll.
type Progress struct {
	Status Status
	Err    error
}

func Ongoing() Progress         { return Progress{Status: StatusOngoing} }
func Done() Progress            { return Progress{Status: StatusDone} }
func Fail(err error) Progress   { return Progress{Status: StatusFailed, Err: err} }

func (p Progress) Settled() bool { return p.Status != StatusOngoing }

// Job is a resumable task. Poll must not block, the only time spent
// inside a poll is the explicit deadline check.
type Job interface {
	Poll(now time.Time) Progress
}

// Runner advances multiple independent jobs in lock step. A slow job
// never blocks the others, every ongoing job is polled exactly once per
// PollAll call.
type Runner struct {
	jobs    map[uint8]Job
	results map[uint8]Progress
}

func NewRunner() *Runner {
	return &Runner{
		jobs:    map[uint8]Job{},
		results: map[uint8]Progress{},
	}
}

func (r *Runner) Add(id uint8, j Job) {
	r.jobs[id] = j
	r.results[id] = Ongoing()
}

// PollAll advances every unsettled job once and reports whether all
// jobs have settled.
func (r *Runner) PollAll(now time.Time) bool {
	allSettled := true
	for id, j := range r.jobs {
		if r.results[id].Settled() {
			continue
		}
		r.results[id] = j.Poll(now)
		if !r.results[id].Settled() {
			allSettled = false
		}
	}
	return allSettled
}

// Result returns the last progress reported for a job.
func (r *Runner) Result(id uint8) Progress {
	return r.results[id]
}

// Results returns all job results keyed by id.
func (r *Runner) Results() map[uint8]Progress {
	out := make(map[uint8]Progress, len(r.results))
	for id, p := range r.results {
		out[id] = p
	}
	return out
}
