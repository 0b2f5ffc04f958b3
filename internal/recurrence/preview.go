package recurrence

import (
	"fmt"
	"time"
)

const DefaultPreviewLimit = 100

type Preview struct {
	Dates     []string `json:"dates"`
	Total     int      `json:"total"`
	Remaining int      `json:"remaining"`
	More      string   `json:"more,omitempty"`
}

// NewPreview caps a generated series for display. The full series stays with the caller.
func NewPreview(dates []time.Time, limit int) Preview {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	shown := dates
	if len(shown) > limit {
		shown = shown[:limit]
	}

	p := Preview{
		Dates: make([]string, 0, len(shown)),
		Total: len(dates),
	}
	for _, d := range shown {
		p.Dates = append(p.Dates, d.Format("2006-01-02"))
	}
	if len(dates) > limit {
		p.Remaining = len(dates) - limit
		p.More = fmt.Sprintf("... and %d more dates", p.Remaining)
	}
	return p
}
