package model

import "time"

const (
	CollectionPending  = "pending"
	CollectionApproved = "approved"
)

// Collection is the envelope persisted for each event list.
type Collection struct {
	Events      []*Event           `json:"events" bson:"events"`
	LastUpdated time.Time          `json:"lastUpdated" bson:"lastUpdated"`
	Count       int                `json:"count" bson:"count"`
	Version     string             `json:"version" bson:"version"`
	Metadata    CollectionMetadata `json:"metadata" bson:"metadata"`
}

type CollectionMetadata struct {
	Description     string    `json:"description,omitempty" bson:"description,omitempty"`
	UpdatedBy       string    `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdateTimestamp time.Time `json:"updateTimestamp" bson:"updateTimestamp"`
	RecordCount     int       `json:"recordCount" bson:"recordCount"`
}

// NewCollection wraps events in a freshly stamped envelope.
func NewCollection(events []*Event, description string, now time.Time) *Collection {
	if events == nil {
		events = []*Event{}
	}
	return &Collection{
		Events:      events,
		LastUpdated: now,
		Count:       len(events),
		Version:     SchemaVersion,
		Metadata: CollectionMetadata{
			Description:     description,
			UpdatedBy:       "AQEvent System",
			UpdateTimestamp: now,
			RecordCount:     len(events),
		},
	}
}

// EmptyCollection is what a store reports for a list that does not exist yet.
func EmptyCollection() *Collection {
	return &Collection{
		Events:  []*Event{},
		Version: SchemaVersion,
	}
}
