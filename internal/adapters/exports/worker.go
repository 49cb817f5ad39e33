// Package exports materializes reporting query results into immutable
// artifacts (CSV, JSON) stored in a blob store. Export requests run
// asynchronously on a single worker goroutine; callers poll the record by id.
package exports

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	blobcore "labregistry/internal/infra/blob/core"
	"labregistry/internal/report"
)

// Format identifies an artifact encoding.
type Format string

// Supported artifact formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Status describes the lifecycle stage of an export request.
type Status string

// Export request lifecycle states.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Report slugs accepted by the worker.
const (
	ReportMostPublished   = "most_published"
	ReportMajorAverages   = "average_publications_by_major"
	ReportFundedProjects  = "funded_projects_in_period"
	ReportTopContributors = "top_contributors_by_grant"
)

// Params carries the report-specific arguments of an export request.
type Params struct {
	Start   time.Time `json:"start,omitempty"`
	End     time.Time `json:"end,omitempty"`
	GrantID string    `json:"grant_id,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

// Request enqueues a report export.
type Request struct {
	Report      string
	Params      Params
	Formats     []Format
	RequestedBy string
	Reason      string
}

// Artifact captures a stored export artifact.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	Rows        int       `json:"rows"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export request and its resulting artifacts.
type Record struct {
	ID          string     `json:"id"`
	Report      string     `json:"report"`
	Params      Params     `json:"params"`
	Formats     []Format   `json:"formats"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Artifacts   []Artifact `json:"artifacts,omitempty"`
	RequestedBy string     `json:"requested_by"`
	Reason      string     `json:"reason,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	return dup
}

// AuditEntry captures audit trail metadata for export activity.
type AuditEntry struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Report     string    `json:"report"`
	Status     Status    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// MemoryAuditLog captures audit entries in memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Worker executes report exports asynchronously.
type Worker struct {
	reports *report.Engine
	blobs   blobcore.Store
	audit   AuditLogger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id      string
	request Request
}

// NewWorker constructs an export worker over the reporting engine and blob
// store.
func NewWorker(reports *report.Engine, blobs blobcore.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		reports: reports,
		blobs:   blobs,
		audit:   audit,
		queue:   make(chan task, 32),
		jobs:    make(map[string]*Record),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an export and returns the queued record.
func (w *Worker) Enqueue(ctx context.Context, req Request) (Record, error) {
	if err := validateRequest(req); err != nil {
		return Record{}, err
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		if f != FormatJSON && f != FormatCSV {
			return Record{}, fmt.Errorf("unsupported export format %s", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := newID()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		Report:      req.Report,
		Params:      req.Params,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, id, StatusQueued, "")

	select {
	case w.queue <- task{id: id, request: req}:
	default:
		return Record{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

func validateRequest(req Request) error {
	switch req.Report {
	case ReportMostPublished, ReportMajorAverages:
		return nil
	case ReportFundedProjects:
		if req.Params.Start.IsZero() || req.Params.End.IsZero() {
			return fmt.Errorf("report %s requires start and end", req.Report)
		}
		return nil
	case ReportTopContributors:
		if strings.TrimSpace(req.Params.GrantID) == "" {
			return fmt.Errorf("report %s requires grant_id", req.Report)
		}
		return nil
	default:
		return fmt.Errorf("unknown report %s", req.Report)
	}
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")

	table, err := w.runReport(t.request)
	if err != nil {
		w.fail(t.id, err.Error())
		return
	}

	var artifacts []Artifact
	for _, format := range w.formatsFor(t.id) {
		artifact, err := w.materialize(t.id, t.request.Report, format, table)
		if err != nil {
			w.fail(t.id, err.Error())
			return
		}
		artifacts = append(artifacts, artifact)
	}
	w.complete(t.id, artifacts)
}

// resultTable is the report output in tabular form shared by all encoders.
type resultTable struct {
	Columns []string
	Rows    []map[string]any
}

func (w *Worker) runReport(req Request) (resultTable, error) {
	switch req.Report {
	case ReportMostPublished:
		rows, err := w.reports.MostPublished(w.ctx)
		if err != nil {
			return resultTable{}, err
		}
		return memberCountTable(rows), nil
	case ReportMajorAverages:
		rows, err := w.reports.AveragePublicationsByMajor(w.ctx)
		if err != nil {
			return resultTable{}, err
		}
		table := resultTable{Columns: []string{"major", "students", "publications", "average"}}
		for _, r := range rows {
			table.Rows = append(table.Rows, map[string]any{
				"major":        r.Major,
				"students":     r.Students,
				"publications": r.Publications,
				"average":      r.Average,
			})
		}
		return table, nil
	case ReportFundedProjects:
		projects, err := w.reports.FundedProjectsInPeriod(w.ctx, req.Params.Start, req.Params.End)
		if err != nil {
			return resultTable{}, err
		}
		table := resultTable{Columns: []string{"project_id", "title", "start_date", "end_date", "status", "grant_sources"}}
		for _, p := range projects {
			end := ""
			if p.EndDate != nil {
				end = p.EndDate.Format(time.RFC3339)
			}
			table.Rows = append(table.Rows, map[string]any{
				"project_id":    p.ProjectID,
				"title":         p.Title,
				"start_date":    p.StartDate.Format(time.RFC3339),
				"end_date":      end,
				"status":        p.Status,
				"grant_sources": strings.Join(p.GrantSources, ", "),
			})
		}
		return table, nil
	case ReportTopContributors:
		rows, err := w.reports.TopContributorsByGrant(w.ctx, req.Params.GrantID, req.Params.Limit)
		if err != nil {
			return resultTable{}, err
		}
		return memberCountTable(rows), nil
	default:
		return resultTable{}, fmt.Errorf("unknown report %s", req.Report)
	}
}

func memberCountTable(rows []report.MemberPublicationCount) resultTable {
	table := resultTable{Columns: []string{"member_id", "name", "publications"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, map[string]any{
			"member_id":    r.MemberID,
			"name":         r.Name,
			"publications": r.Publications,
		})
	}
	return table
}

func (w *Worker) materialize(recordID, reportName string, format Format, table resultTable) (Artifact, error) {
	var payload []byte
	var contentType string
	switch format {
	case FormatJSON:
		b, err := json.Marshal(table.Rows)
		if err != nil {
			return Artifact{}, fmt.Errorf("encode json: %w", err)
		}
		payload, contentType = b, "application/json"
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(table.Columns); err != nil {
			return Artifact{}, err
		}
		for _, row := range table.Rows {
			rec := make([]string, len(table.Columns))
			for i, col := range table.Columns {
				rec[i] = formatValue(row[col])
			}
			if err := writer.Write(rec); err != nil {
				return Artifact{}, err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return Artifact{}, err
		}
		payload, contentType = buf.Bytes(), "text/csv"
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %s", format)
	}

	key := fmt.Sprintf("exports/%s/%s.%s", recordID, reportName, format)
	info, err := w.blobs.Put(w.ctx, key, bytes.NewReader(payload), blobcore.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"report": reportName, "rows": strconv.Itoa(len(table.Rows))},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store artifact: %w", err)
	}
	return Artifact{
		Key:         info.Key,
		Format:      format,
		ContentType: contentType,
		SizeBytes:   info.Size,
		URL:         info.URL,
		Rows:        len(table.Rows),
		CreatedAt:   info.LastModified,
	}, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (w *Worker) formatsFor(id string) []Format {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if record, ok := w.jobs[id]; ok {
		return append([]Format(nil), record.Formats...)
	}
	return nil
}

func (w *Worker) setStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, status, message)
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, StatusSucceeded, "")
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, StatusFailed, reason)
}

func (w *Worker) recordAudit(ctx context.Context, id string, status Status, note string) {
	if w.audit == nil {
		return
	}
	w.mu.RLock()
	var actor, reportName, reason string
	if record, ok := w.jobs[id]; ok {
		actor = record.RequestedBy
		reportName = record.Report
		reason = record.Reason
	}
	w.mu.RUnlock()
	w.audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Actor:      actor,
		Report:     reportName,
		Status:     status,
		Reason:     reason,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	})
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}
