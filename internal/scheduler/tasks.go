package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadEnrichmentRun = "enrichment:lead:run"

const TaskDealMarginCheck = "enrichment:deal:margin"

type LeadEnrichmentRunPayload struct {
	LeadID string `json:"leadId"`
}

type DealMarginCheckPayload struct {
	DealID string `json:"dealId"`
}

func NewLeadEnrichmentRunTask(payload LeadEnrichmentRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadEnrichmentRun, data), nil
}

func ParseLeadEnrichmentRunPayload(task *asynq.Task) (LeadEnrichmentRunPayload, error) {
	var payload LeadEnrichmentRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadEnrichmentRunPayload{}, err
	}
	return payload, nil
}

func NewDealMarginCheckTask(payload DealMarginCheckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDealMarginCheck, data), nil
}

func ParseDealMarginCheckPayload(task *asynq.Task) (DealMarginCheckPayload, error) {
	var payload DealMarginCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DealMarginCheckPayload{}, err
	}
	return payload, nil
}
