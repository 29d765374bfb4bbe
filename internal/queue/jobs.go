package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// RenderReportTask is scheduled each time a report job is submitted.
	RenderReportTask = "report:render"

	maxRetry = 3
)

// RenderPayload is serialized into the task payload so the worker knows
// which job row to load.
type RenderPayload struct {
	JobID  string `json:"job_id"`
	Format string `json:"format"`
}

// Enqueuer is the part of *asynq.Client used to schedule work.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewRenderTask builds the task for payload.
func NewRenderTask(payload RenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(RenderReportTask, data), nil
}

// EnqueueRender enqueues a report render job. The job id doubles as the
// task id so a job cannot be queued twice.
func EnqueueRender(ctx context.Context, client Enqueuer, payload RenderPayload) error {
	task, err := NewRenderTask(payload)
	if err != nil {
		return err
	}
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(maxRetry), asynq.TaskID(payload.JobID)); err != nil {
		return fmt.Errorf("enqueue render task: %w", err)
	}
	return nil
}

// DecodeRender reads the payload of a render task.
func DecodeRender(task *asynq.Task) (RenderPayload, error) {
	var payload RenderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode payload: %w", err)
	}
	if payload.JobID == "" {
		return payload, fmt.Errorf("decode payload: missing job id")
	}
	return payload, nil
}
