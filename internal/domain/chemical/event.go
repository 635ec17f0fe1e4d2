package chemical

import "time"

// ReloadEvent announces that an instance rebuilt its graph snapshot and
// alias rows. Other replicas react by reloading themselves.
type ReloadEvent struct {
	EventID         string    `json:"event_id"`
	Origin          string    `json:"origin"`
	Source          string    `json:"source"`
	SnapshotVersion uint64    `json:"snapshot_version"`
	Entities        int       `json:"entities"`
	AliasRows       int       `json:"alias_rows"`
	OccurredAt      time.Time `json:"occurred_at"`
}
