package models

import "time"

// PredictionStatus is the audit state of a prediction record.
type PredictionStatus string

const (
	StatusPending   PredictionStatus = "pending"
	StatusCompleted PredictionStatus = "completed"
	StatusFailed    PredictionStatus = "failed"
)

// PredictionRecord is one issued forecast and, once matured, its realized
// outcome. Records form an immutable audit trail: they are scored exactly
// once by the audit job and never deleted.
//
// ActualPrice and AccuracyScore are both nil while Status is pending and
// both set once Status is completed.
type PredictionRecord struct {
	ID              int64            `json:"id"`
	Ticker          string           `json:"ticker"`
	PredictionPrice float64          `json:"predictionPrice"`
	StartingPrice   float64          `json:"startingPrice"`
	TargetTime      time.Time        `json:"targetTime"`
	ActualPrice     *float64         `json:"actualPrice"`
	AccuracyScore   *float64         `json:"accuracyScore"`
	Status          PredictionStatus `json:"status"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// AuditSummary is the audit-log view: recent completed records plus the
// mean accuracy across them.
type AuditSummary struct {
	Logs             []PredictionRecord `json:"logs"`
	GlobalScore      float64            `json:"globalScore"`
	TotalPredictions int                `json:"totalPredictions"`
}
