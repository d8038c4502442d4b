package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRequestFollowUp = "requests.followup"

const TaskStaleRequestSweep = "requests.stale_sweep"

type RequestFollowUpPayload struct {
	RequestID string `json:"requestId"`
}

func NewRequestFollowUpTask(payload RequestFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRequestFollowUp, data), nil
}

func ParseRequestFollowUpPayload(task *asynq.Task) (RequestFollowUpPayload, error) {
	var payload RequestFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RequestFollowUpPayload{}, err
	}
	return payload, nil
}

func NewStaleRequestSweepTask() *asynq.Task {
	return asynq.NewTask(TaskStaleRequestSweep, nil)
}
