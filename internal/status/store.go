// Package status holds the state shared between download workers and the
// display: the job table, a bounded log and the outcome counters. Every
// mutation goes through a single mutex owned by Store.
package status

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/tanq16/forgemods/internal/utils"
)

const DefaultMaxLogs = 15

type Status int

const (
	Pending Status = iota
	Searching
	Downloading
	Success
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Searching:
		return "searching"
	case Downloading:
		return "downloading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label is the default display text for s.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pending"
	case Searching:
		return "Searching..."
	case Downloading:
		return "Downloading..."
	case Success:
		return "✓ Success"
	case Failed:
		return "✗ Failed"
	case Skipped:
		return "- Skipped"
	default:
		return s.String()
	}
}

func (s Status) Terminal() bool {
	return s == Success || s == Failed || s == Skipped
}

// Job tracks one mod's download. Its status fields are only reachable
// through Store.
type Job struct {
	ID         string
	Mod        utils.ModDescriptor
	TargetPath string

	status   Status
	label    string
	provider string
	reason   string
}

func NewJob(mod utils.ModDescriptor, dir string) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Mod:        mod,
		TargetPath: filepath.Join(dir, mod.Filename),
		status:     Pending,
		label:      Pending.Label(),
	}
}

// JobView is a point-in-time copy of a Job.
type JobView struct {
	ID         string
	Mod        utils.ModDescriptor
	TargetPath string
	Status     Status
	Label      string
	Provider   string
	Reason     string
}

type Counters struct {
	Success int
	Failed  int
	Skipped int
}

func (c Counters) Total() int {
	return c.Success + c.Failed + c.Skipped
}

type Snapshot struct {
	Jobs     []JobView
	Logs     []string
	Counters Counters
	Done     int
	Total    int
}

type Store struct {
	mu       sync.Mutex
	jobs     []*Job
	logs     []string
	maxLogs  int
	counters Counters
	done     int
}

func NewStore(jobs []*Job) *Store {
	return &Store{
		jobs:    jobs,
		logs:    make([]string, 0, DefaultMaxLogs+1),
		maxLogs: DefaultMaxLogs,
	}
}

func (s *Store) Append(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, message)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
}

func (s *Store) Log(format string, args ...any) {
	s.Append(fmt.Sprintf(format, args...))
}

func (s *Store) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logs...)
}

// SetStatus moves job to a non-terminal status. It returns false when the job
// has already finished or when status is terminal; those go through Finish.
func (s *Store) SetStatus(job *Job, status Status, label string) bool {
	if status.Terminal() {
		return false
	}
	if label == "" {
		label = status.Label()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.status.Terminal() {
		return false
	}
	job.status, job.label = status, label
	return true
}

// Finish moves job to a terminal status and bumps the matching counter. Only
// the first call for a job has any effect.
func (s *Store) Finish(job *Job, status Status, provider, reason string) bool {
	if !status.Terminal() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.status.Terminal() {
		return false
	}
	job.status, job.label = status, status.Label()
	job.provider, job.reason = provider, reason
	switch status {
	case Success:
		s.counters.Success++
	case Failed:
		s.counters.Failed++
	case Skipped:
		s.counters.Skipped++
	}
	return true
}

func viewOf(job *Job) JobView {
	return JobView{
		ID:         job.ID,
		Mod:        job.Mod,
		TargetPath: job.TargetPath,
		Status:     job.status,
		Label:      job.label,
		Provider:   job.provider,
		Reason:     job.reason,
	}
}

// MarkDone records that a worker has finished with a job.
func (s *Store) MarkDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done < len(s.jobs) {
		s.done++
	}
}

func (s *Store) Progress() (done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, len(s.jobs)
}

func (s *Store) Complete() bool {
	done, total := s.Progress()
	return done == total
}

func (s *Store) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// JobList returns the jobs in manifest order for workers to pick up.
func (s *Store) JobList() []*Job {
	return s.jobs
}

func (s *Store) Jobs() []JobView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]JobView, len(s.jobs))
	for i, job := range s.jobs {
		views[i] = viewOf(job)
	}
	return views
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]JobView, len(s.jobs))
	for i, job := range s.jobs {
		views[i] = viewOf(job)
	}
	return Snapshot{
		Jobs:     views,
		Logs:     append([]string(nil), s.logs...),
		Counters: s.counters,
		Done:     s.done,
		Total:    len(s.jobs),
	}
}
