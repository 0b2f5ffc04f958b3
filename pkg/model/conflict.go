package model

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type IssueType string

const (
	IssueRoom       IssueType = "room"
	IssueTime       IssueType = "time"
	IssueDate       IssueType = "date"
	IssueLocation   IssueType = "location"
	IssueAcademic   IssueType = "academic"
	IssueHoliday    IssueType = "holiday"
	IssueValidation IssueType = "validation"
	IssueSystem     IssueType = "system"
)

// Issue is a single conflict or warning produced by a check.
type Issue struct {
	Type             IssueType         `json:"type"`
	Severity         Severity          `json:"severity"`
	Message          string            `json:"message"`
	Field            string            `json:"field,omitempty"`
	ConflictingEvent *ConflictingEvent `json:"conflictingEvent,omitempty"`
}

type ConflictingEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
	Source    Source `json:"source"`
}

type SuggestionType string

const (
	SuggestLocation       SuggestionType = "location"
	SuggestTime           SuggestionType = "time"
	SuggestDate           SuggestionType = "date"
	SuggestTimeAdjustment SuggestionType = "time_adjustment"
)

type SuggestionAction string

const (
	ActionChangeLocation  SuggestionAction = "change_location"
	ActionChangeTime      SuggestionAction = "change_time"
	ActionChangeDate      SuggestionAction = "change_date"
	ActionAdjustStartTime SuggestionAction = "adjust_start_time"
)

// Suggestion is advisory; exactly one of the option lists or SuggestedValue is set.
type Suggestion struct {
	Type           SuggestionType   `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Action         SuggestionAction `json:"action"`
	Locations      []string         `json:"locations,omitempty"`
	TimeSlots      []TimeSlot       `json:"timeSlots,omitempty"`
	Dates          []DateOption     `json:"dates,omitempty"`
	SuggestedValue string           `json:"suggestedValue,omitempty"`
}

type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Display   string `json:"display"`
}

type DateOption struct {
	Date      string `json:"date"`
	Formatted string `json:"formatted"`
	DayOfWeek string `json:"dayOfWeek"`
}

type ConflictResult struct {
	HasConflicts bool         `json:"hasConflicts"`
	HasWarnings  bool         `json:"hasWarnings"`
	Conflicts    []Issue      `json:"conflicts"`
	Warnings     []Issue      `json:"warnings"`
	Suggestions  []Suggestion `json:"suggestions"`
	Summary      string       `json:"summary"`
}

// HasConflictType reports whether any conflict of the given type was recorded.
func (r *ConflictResult) HasConflictType(t IssueType) bool {
	for _, c := range r.Conflicts {
		if c.Type == t {
			return true
		}
	}
	return false
}
