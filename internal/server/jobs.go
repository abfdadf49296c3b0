package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flowsmith/flowsmith/pkg/observability"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// JobStatus is the lifecycle state of an asynchronous conversion job.
type JobStatus string

// Job lifecycle states. Jobs move pending -> running -> succeeded/failed
// and never leave a terminal state.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Event is one progress update published to job subscribers.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Status  JobStatus `json:"status"`
	Time    time.Time `json:"time"`
}

// Job is one asynchronous conversion. All fields behind mu; use snapshot
// for reads.
type Job struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	status      JobStatus
	result      *convertResponse
	err         string
	subscribers map[chan Event]struct{}
}

// jobSnapshot is the read-only JSON view of a job.
type jobSnapshot struct {
	ID        string           `json:"jobId"`
	Status    JobStatus        `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	Result    *convertResponse `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// snapshot returns a consistent view of the job.
func (j *Job) snapshot() jobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jobSnapshot{
		ID:        j.ID,
		Status:    j.status,
		CreatedAt: j.CreatedAt,
		Result:    j.result,
		Error:     j.err,
	}
}

// publish sends an event to every subscriber without blocking: a slow
// subscriber misses intermediate events rather than stalling the job.
func (j *Job) publish(stage, message string) {
	j.mu.Lock()
	ev := Event{Stage: stage, Message: message, Status: j.status, Time: time.Now()}
	for ch := range j.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
	j.mu.Unlock()
}

// subscribe registers a progress channel. The returned cancel function
// must be called exactly once; it closes the channel.
func (j *Job) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	j.mu.Lock()
	j.subscribers[ch] = struct{}{}
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		if _, ok := j.subscribers[ch]; ok {
			delete(j.subscribers, ch)
			close(ch)
		}
		j.mu.Unlock()
	}
	return ch, cancel
}

// setRunning transitions the job to running.
func (j *Job) setRunning() {
	j.mu.Lock()
	j.status = JobRunning
	j.mu.Unlock()
	j.publish("job", "started")
}

// finish transitions the job to its terminal state and closes all
// subscriber channels after a final event.
func (j *Job) finish(result *convertResponse, err error) {
	j.mu.Lock()
	if err != nil {
		j.status = JobFailed
		j.err = err.Error()
	} else {
		j.status = JobSucceeded
		j.result = result
	}
	j.mu.Unlock()

	j.publish("job", "finished")

	j.mu.Lock()
	for ch := range j.subscribers {
		delete(j.subscribers, ch)
		close(ch)
	}
	j.mu.Unlock()
}

// done reports whether the job reached a terminal state.
func (j *Job) done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status == JobSucceeded || j.status == JobFailed
}

// jobStore is a bounded in-memory job registry. Eviction only drops
// bookkeeping; a running job keeps executing and simply becomes
// unqueryable, which is acceptable for a cache-backed pipeline.
type jobStore struct {
	jobs *lru.Cache[string, *Job]
}

// newJobStore creates a store bounded to capacity jobs.
func newJobStore(capacity int) (*jobStore, error) {
	cache, err := lru.New[string, *Job](capacity)
	if err != nil {
		return nil, err
	}
	return &jobStore{jobs: cache}, nil
}

// create registers a new pending job with a fresh id.
func (s *jobStore) create() *Job {
	job := &Job{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		status:      JobPending,
		subscribers: make(map[chan Event]struct{}),
	}
	s.jobs.Add(job.ID, job)
	observability.Server().OnJobCreated(context.Background(), job.ID)
	return job
}

// get looks up a job by id.
func (s *jobStore) get(id string) (*Job, bool) {
	return s.jobs.Get(id)
}

// runJob executes the pipeline stage by stage, publishing progress
// events between stages.
func (s *Server) runJob(job *Job, raw []byte, opts pipeline.Options) {
	ctx := context.Background()
	start := time.Now()
	job.setRunning()

	resp, err := s.executeStaged(ctx, job, raw, opts)
	job.finish(resp, err)

	observability.Server().OnJobFinished(ctx, job.ID, time.Since(start), err)
	if err != nil {
		s.logger.Warnf("Job %s failed: %v", job.ID, err)
	} else {
		s.logger.Infof("Job %s finished (%s)", job.ID, time.Since(start).Round(time.Millisecond))
	}
}

// executeStaged runs parse, analyze, convert, and emit separately so
// subscribers see per-stage progress.
func (s *Server) executeStaged(ctx context.Context, job *Job, raw []byte, opts pipeline.Options) (*convertResponse, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	job.publish("parse", "parsing flow export")
	g, parseHit, err := s.runner.ParseWithCacheInfo(ctx, raw, opts)
	if err != nil {
		return nil, err
	}

	job.publish("analyze", "analyzing flow structure")
	report := s.runner.Analyze(ctx, g)

	job.publish("convert", "converting nodes")
	conv, convertHit, err := s.runner.ConvertWithCacheInfo(ctx, g, "", opts)
	if err != nil {
		return nil, err
	}

	job.publish("emit", "emitting artifacts")
	name, _ := g.Meta()["name"].(string)
	gctx := opts.GenerationContext(name)
	artifacts, err := s.runner.Emit(ctx, conv, gctx)
	if err != nil {
		return nil, err
	}

	return newConvertResponse(report, conv, artifacts, parseHit, convertHit), nil
}
