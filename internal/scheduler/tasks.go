package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskAutomationRun triggers one automation engine run.
const TaskAutomationRun = "leads.automation.run"

type AutomationRunPayload struct {
	// Trigger names the producer: "periodic" or "manual".
	Trigger string `json:"trigger"`
}

func NewAutomationRunTask(payload AutomationRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	// No automatic retries: the next tick is the retry.
	return asynq.NewTask(TaskAutomationRun, data, asynq.MaxRetry(0)), nil
}

func ParseAutomationRunPayload(task *asynq.Task) (AutomationRunPayload, error) {
	var payload AutomationRunPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AutomationRunPayload{}, err
	}
	return payload, nil
}
