package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/enum"
	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/executor"
	"github.com/dharsanguruparan/rreport/internal/logger"
	pdfutil "github.com/dharsanguruparan/rreport/internal/pdf"
	"github.com/dharsanguruparan/rreport/internal/queue"
	"github.com/dharsanguruparan/rreport/internal/repository"
)

// JobStore is the part of the job repository the worker needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*repository.ReportJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, msg string, messages []string) error
	MarkCompleted(ctx context.Context, id, outputKey string, pages int, messages []string) error
}

// ReportStore receives rendered reports.
type ReportStore interface {
	UploadReport(ctx context.Context, objectKey string, data []byte, contentType string) error
}

var contentTypes = map[enum.Format]string{
	enum.FormatPDF:  "application/pdf",
	enum.FormatCSV:  "text/csv; charset=utf-8",
	enum.FormatXML:  "application/xml",
	enum.FormatHTML: "text/html; charset=utf-8",
	enum.FormatXLS:  "application/vnd.ms-excel",
	enum.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	enum.FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	enum.FormatODS:  "application/vnd.oasis.opendocument.spreadsheet",
	enum.FormatODT:  "application/vnd.oasis.opendocument.text",
	enum.FormatPPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	enum.FormatRTF:  "application/rtf",
	enum.FormatTEXT: "text/plain; charset=utf-8",
	enum.FormatJSON: "application/json",
}

// ContentType returns the MIME type of a rendered format.
func ContentType(f enum.Format) string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectKey is where the rendered report of a job is stored.
func ObjectKey(jobID string, f enum.Format) string {
	return fmt.Sprintf("reports/%s/report.%s", jobID, f)
}

// Processor is plugged into the asynq worker loop.
type Processor struct {
	jobs   JobStore
	store  ReportStore
	exec   executor.Executor
	loader *descriptor.Loader
	outDir string
	log    logger.Logger
}

// NewProcessor constructs a worker processor. Rendered files are written to
// outDir before upload.
func NewProcessor(jobs JobStore, store ReportStore, exec executor.Executor, loader *descriptor.Loader, outDir string, log logger.Logger) *Processor {
	return &Processor{
		jobs:   jobs,
		store:  store,
		exec:   exec,
		loader: loader,
		outDir: outDir,
		log:    logger.Component(log, "worker"),
	}
}

// Handler registers the render job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.RenderReportTask, p.HandleRender)
	return mux
}

// HandleRender renders one queued job. Descriptor problems are not retried.
func (p *Processor) HandleRender(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.DecodeRender(task)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	log := p.log.WithField("job_id", payload.JobID)
	var messages []string
	failure := func(err error) error {
		log.Errorf("render failed: %v", err)
		if markErr := p.jobs.MarkFailed(ctx, payload.JobID, err.Error(), messages); markErr != nil {
			log.Warnf("mark failed: %v", markErr)
		}
		if errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrSerialization) ||
			errors.Is(err, errs.ErrEnum) || errors.Is(err, executor.ErrExecution) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	if err := p.jobs.MarkRunning(ctx, payload.JobID); err != nil {
		return failure(err)
	}
	job, err := p.jobs.Get(ctx, payload.JobID)
	if err != nil {
		return failure(err)
	}
	r, err := p.loader.Parse([]byte(job.Descriptor), "")
	if err != nil {
		return failure(err)
	}
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return failure(fmt.Errorf("create output dir: %w", err))
	}
	output := filepath.Join(p.outDir, fmt.Sprintf("%s.%s", payload.JobID, r.Format()))
	if err := r.SetOutputFile(output); err != nil {
		return failure(err)
	}
	defer os.Remove(output)

	res, err := p.exec.Execute(ctx, r)
	if res != nil {
		messages = res.Messages
	}
	if err != nil {
		return failure(err)
	}
	data := res.Report
	if len(data) == 0 {
		if data, err = os.ReadFile(output); err != nil {
			return failure(fmt.Errorf("read rendered report: %w", err))
		}
	}

	key := ObjectKey(payload.JobID, r.Format())
	if err := p.store.UploadReport(ctx, key, data, ContentType(r.Format())); err != nil {
		return failure(err)
	}
	pages := 0
	if r.Format() == enum.FormatPDF {
		if pages, err = pdfutil.PageCount(data); err != nil {
			log.Warnf("count pages: %v", err)
			pages = 0
		}
	}
	if err := p.jobs.MarkCompleted(ctx, payload.JobID, key, pages, messages); err != nil {
		return failure(err)
	}
	log.WithFields(map[string]interface{}{
		"bytes":    len(data),
		"pages":    pages,
		"duration": res.Duration.String(),
	}).Infof("report %s rendered", key)
	return nil
}
