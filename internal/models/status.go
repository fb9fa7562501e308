package models

import "time"

// AcquisitionStatus is a snapshot of the background reader.
type AcquisitionStatus struct {
	Running   bool      `json:"running"`
	Port      string    `json:"port"`
	Chunks    uint64    `json:"chunks"`
	Samples   uint64    `json:"samples"`
	Rejected  uint64    `json:"rejected"`
	LastError string    `json:"last_error,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}
