package models

import "time"

// PointKind marks a timeline point as realized history or projected future.
type PointKind string

const (
	PointPast   PointKind = "past"
	PointFuture PointKind = "future"
)

// TimelinePoint is one sample of the unified history+forecast price path.
// Sequences are strictly increasing in time, with all past points before
// all future points.
type TimelinePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Kind      PointKind `json:"kind"`
}
