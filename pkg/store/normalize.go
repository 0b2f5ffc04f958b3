package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"aqevent/internal/timerange"
	"aqevent/pkg/model"
)

var numericKeys = []string{"estimatedAttendees", "totalPerformers", "estimatedBudget", "seriesIndex", "seriesTotalCount"}

var boolKeys = []string{"staffingSupportRequired", "isPartOfSeries"}

// DecodeCollection parses a stored list. It accepts the current envelope,
// a bare array of events, and the older {id, eventData:{...}} item shape.
func DecodeCollection(data []byte) (*model.Collection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return model.EmptyCollection(), nil
	}

	var items []json.RawMessage
	coll := model.EmptyCollection()
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse event list: %w", err)
		}
	} else {
		var envelope struct {
			model.Collection
			Events []json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse collection: %w", err)
		}
		coll = &envelope.Collection
		items = envelope.Events
	}

	coll.Events = make([]*model.Event, 0, len(items))
	for i, raw := range items {
		ev, err := DecodeEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		coll.Events = append(coll.Events, ev)
	}
	coll.Count = len(coll.Events)
	if coll.Version == "" {
		coll.Version = model.SchemaVersion
	}
	return coll, nil
}

// DecodeEvent flattens a legacy nested item and normalizes its date. Keys of
// the nested payload win; top-level keys only fill gaps.
func DecodeEvent(raw json.RawMessage) (*model.Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	if nested, ok := fields["eventData"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(nested, &inner); err == nil && inner != nil {
			delete(fields, "eventData")
			for k, v := range fields {
				if cur, exists := inner[k]; !exists || isBlank(cur) {
					inner[k] = v
				}
			}
			fields = inner
		}
	}
	coerce(fields)

	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var ev model.Event
	if err := json.Unmarshal(merged, &ev); err != nil {
		return nil, err
	}
	ev.EventDate = timerange.NormalizeDate(ev.EventDate)
	return &ev, nil
}

func isBlank(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	return s == "" || s == "null" || s == `""`
}

// coerce converts form-encoded strings such as "50" or "yes" into the JSON
// types the event model expects.
func coerce(fields map[string]json.RawMessage) {
	for _, k := range numericKeys {
		var s string
		if v, ok := fields[k]; !ok || json.Unmarshal(v, &s) != nil {
			continue
		}
		s = strings.TrimSpace(s)
		if k == "estimatedBudget" {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				fields[k] = json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))
				continue
			}
		} else if n, err := strconv.Atoi(s); err == nil {
			fields[k] = json.RawMessage(strconv.Itoa(n))
			continue
		}
		delete(fields, k)
	}
	for _, k := range boolKeys {
		var s string
		if v, ok := fields[k]; !ok || json.Unmarshal(v, &s) != nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "on", "1":
			fields[k] = json.RawMessage("true")
		default:
			fields[k] = json.RawMessage("false")
		}
	}
}

// EncodeCollection renders a collection the way it is written to disk and GitHub.
func EncodeCollection(c *model.Collection) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
