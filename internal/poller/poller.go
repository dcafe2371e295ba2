package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/tidwall/gjson"
)

// Config controls the polling schedule.
type Config struct {
	// StatusURL is the base of the status endpoint; the job id is appended as a path segment.
	StatusURL    string
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
	QueryTimeout time.Duration
}

// DefaultConfig returns the standard schedule: first check after 2s, then
// every 5s for at most 60 checks.
func DefaultConfig(statusURL string) Config {
	return Config{
		StatusURL:    statusURL,
		InitialDelay: 2 * time.Second,
		Interval:     5 * time.Second,
		MaxAttempts:  60,
		QueryTimeout: 15 * time.Second,
	}
}

// Recorder receives poll metrics. The monitoring collector implements it.
type Recorder interface {
	RecordPollAttempt(outcome string)
	RecordJobOutcome(mode types.Mode, status types.JobStatus)
}

// UpdateFunc is called with a copy of a record whenever its status changes.
type UpdateFunc func(ctx context.Context, record *types.JobRecord)

type activeJob struct {
	sessionID string
	cancel    context.CancelFunc
	done      chan struct{}
}

// Poller runs one poll loop per active job. Loops run under the poller's own
// base context, so they outlive the request that started them.
type Poller struct {
	cfg      Config
	client   *http.Client
	store    JobStore
	recorder Recorder
	onUpdate UpdateFunc

	base   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[string]*activeJob
	now    func() time.Time
}

// New creates a poller. A nil store selects an in-memory store.
func New(cfg Config, client *http.Client, store JobStore) *Poller {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if client == nil {
		client = http.DefaultClient
	}
	if store == nil {
		store = NewMemoryStore(DefaultTerminalTTL)
	}
	base, stop := context.WithCancel(context.Background())
	return &Poller{
		cfg:    cfg,
		client: client,
		store:  store,
		base:   base,
		stop:   stop,
		active: make(map[string]*activeJob),
		now:    time.Now,
	}
}

// OnUpdate registers the status change callback. Call before Start.
func (p *Poller) OnUpdate(fn UpdateFunc) {
	p.onUpdate = fn
}

// SetRecorder registers a metrics recorder. Call before Start.
func (p *Poller) SetRecorder(r Recorder) {
	p.recorder = r
}

// Store returns the backing job store.
func (p *Poller) Store() JobStore {
	return p.store
}

// Start begins polling record's job. It returns false when the job is
// already being polled, the record has no job id, or the poller is shut down.
func (p *Poller) Start(ctx context.Context, record *types.JobRecord) bool {
	if record == nil || record.JobID == "" {
		return false
	}
	rec := record.Clone()
	now := p.now().UTC()
	if rec.Status == "" {
		rec.Status = types.JobPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	p.mu.Lock()
	if p.base.Err() != nil {
		p.mu.Unlock()
		return false
	}
	if _, running := p.active[rec.JobID]; running {
		p.mu.Unlock()
		return false
	}
	jobCtx, cancel := context.WithCancel(p.base)
	job := &activeJob{sessionID: rec.SessionID, cancel: cancel, done: make(chan struct{})}
	p.active[rec.JobID] = job
	p.wg.Add(1)
	p.mu.Unlock()

	if err := p.store.Save(ctx, rec); err != nil {
		logger.Error(ctx, "Failed to store new job record", err, "job_id", rec.JobID)
	}

	logCtx := logger.WithComponent(p.base, logger.ComponentNames.JobPoller)
	logCtx = logger.WithRequestID(logCtx, rec.RequestID)
	if rec.SessionID != "" {
		logCtx = logger.WithSessionID(logCtx, rec.SessionID)
	}
	logger.Info(logger.WithStage(logCtx, logger.LogStages.PollScheduled), "Job polling scheduled",
		"job_id", rec.JobID,
		"mode", rec.Mode,
		"initial_delay", p.cfg.InitialDelay.String(),
		"interval", p.cfg.Interval.String(),
		"max_attempts", p.cfg.MaxAttempts)

	go p.loop(jobCtx, logCtx, job, rec)
	return true
}

// isActive reports whether jobID currently has a poll loop.
func (p *Poller) isActive(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[jobID]
	return ok
}

// Get returns the current record of jobID.
func (p *Poller) Get(ctx context.Context, jobID string) (*types.JobRecord, error) {
	return p.store.Get(ctx, jobID)
}

// CancelSession stops every poll loop of sessionID, waits for them to exit
// and removes the session's records. It returns the number of loops stopped.
func (p *Poller) CancelSession(sessionID string) int {
	if sessionID == "" {
		return 0
	}
	p.mu.Lock()
	var stopped []*activeJob
	for id, job := range p.active {
		if job.sessionID == sessionID {
			job.cancel()
			stopped = append(stopped, job)
			delete(p.active, id)
		}
	}
	p.mu.Unlock()

	for _, job := range stopped {
		<-job.done
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := p.store.ListBySession(ctx, sessionID)
	if err != nil {
		logger.Error(ctx, "Failed to list session jobs", err, "session_id", sessionID)
		return len(stopped)
	}
	for _, rec := range records {
		if err := p.store.Delete(ctx, rec.JobID); err != nil {
			logger.Error(ctx, "Failed to delete job record", err, "job_id", rec.JobID)
		}
	}
	return len(stopped)
}

// Run blocks until ctx is done, then shuts the poller down.
func (p *Poller) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-p.base.Done():
	}
	p.Shutdown()
	return nil
}

// Shutdown cancels every loop and waits for them to exit. Later Start calls
// are refused.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	p.stop()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) loop(ctx, logCtx context.Context, job *activeJob, rec *types.JobRecord) {
	defer p.wg.Done()
	defer close(job.done)
	defer func() {
		p.mu.Lock()
		if p.active[rec.JobID] == job {
			delete(p.active, rec.JobID)
		}
		p.mu.Unlock()
	}()

	if !sleep(ctx, p.cfg.InitialDelay) {
		return
	}

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		report, err := p.query(ctx, rec.JobID)
		if ctx.Err() != nil {
			return
		}
		rec.Attempts = attempt

		if err != nil {
			p.recordAttempt("error")
			logger.Warn(logger.WithStage(logCtx, logger.LogStages.PollAttempt), "Job status check failed",
				"job_id", rec.JobID,
				"attempt", attempt,
				"error", err.Error())
		} else {
			p.recordAttempt("ok")
			changed, err := Apply(rec, report)
			if err != nil {
				logger.Warn(logger.WithStage(logCtx, logger.LogStages.PollAttempt), "Ignoring invalid job status",
					"job_id", rec.JobID,
					"status", report.Status,
					"error", err.Error())
			}
			logger.Debug(logger.WithStage(logCtx, logger.LogStages.PollAttempt), "Job status checked",
				"job_id", rec.JobID,
				"attempt", attempt,
				"status", rec.Status)
			if changed {
				p.commit(ctx, logCtx, rec)
				if rec.Status.IsTerminal() {
					p.finish(logCtx, rec)
					return
				}
			}
		}

		if attempt < p.cfg.MaxAttempts && !sleep(ctx, p.cfg.Interval) {
			return
		}
	}

	if err := Expire(rec, p.cfg.MaxAttempts); err != nil {
		return
	}
	p.commit(ctx, logCtx, rec)
	logger.Warn(logger.WithStage(logCtx, logger.LogStages.PollTimeout), "Job polling timed out",
		"job_id", rec.JobID,
		"attempts", p.cfg.MaxAttempts)
	if p.recorder != nil {
		p.recorder.RecordJobOutcome(rec.Mode, rec.Status)
	}
}

func (p *Poller) commit(ctx, logCtx context.Context, rec *types.JobRecord) {
	if ctx.Err() != nil {
		return
	}
	rec.UpdatedAt = p.now().UTC()
	if err := p.store.Save(ctx, rec); err != nil {
		logger.Error(logCtx, "Failed to store job record", err, "job_id", rec.JobID)
	}
	if p.onUpdate != nil {
		p.onUpdate(logCtx, rec.Clone())
	}
}

func (p *Poller) finish(logCtx context.Context, rec *types.JobRecord) {
	if rec.Status == types.JobCompleted {
		logger.Info(logger.WithStage(logCtx, logger.LogStages.PollCompleted), "Job completed",
			"job_id", rec.JobID,
			"attempts", rec.Attempts,
			"result_url", rec.ResultURL)
	} else {
		logger.Warn(logger.WithStage(logCtx, logger.LogStages.PollFailed), "Job failed",
			"job_id", rec.JobID,
			"attempts", rec.Attempts,
			"error", rec.Error)
	}
	if p.recorder != nil {
		p.recorder.RecordJobOutcome(rec.Mode, rec.Status)
	}
}

func (p *Poller) recordAttempt(outcome string) {
	if p.recorder != nil {
		p.recorder.RecordPollAttempt(outcome)
	}
}

// query performs one status check.
func (p *Poller) query(ctx context.Context, jobID string) (types.JobStatusReport, error) {
	if p.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.QueryTimeout)
		defer cancel()
	}

	endpoint := strings.TrimRight(p.cfg.StatusURL, "/") + "/" + url.PathEscape(jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.JobStatusReport{}, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return types.JobStatusReport{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.JobStatusReport{}, fmt.Errorf("failed to read status response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.JobStatusReport{}, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	return ParseStatusReport(body)
}

// ErrMalformedStatus is returned for status bodies that are not JSON objects.
var ErrMalformedStatus = errors.New("malformed job status response")

// ParseStatusReport extracts {status, url, assetId|asset_id, error} from a
// status query body. The error field may be a string or an object with a message.
func ParseStatusReport(body []byte) (types.JobStatusReport, error) {
	if !gjson.ValidBytes(body) {
		return types.JobStatusReport{}, ErrMalformedStatus
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return types.JobStatusReport{}, ErrMalformedStatus
	}

	report := types.JobStatusReport{
		Status: doc.Get("status").String(),
		URL:    doc.Get("url").String(),
	}
	if asset := doc.Get("assetId"); asset.Exists() {
		report.AssetID = asset.String()
	} else {
		report.AssetID = doc.Get("asset_id").String()
	}
	if e := doc.Get("error"); e.IsObject() {
		report.Error = e.Get("message").String()
	} else {
		report.Error = e.String()
	}
	return report, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
