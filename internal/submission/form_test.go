package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isoDates(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("2006-01-02"))
	}
	return out
}

func TestRecurrenceForm_ExpandDatesUsesExplicitDates(t *testing.T) {
	form := RecurrenceForm{
		Frequency: "multiple",
		Dates:     []string{"2026-10-27", "2026-10-20", "2026-10-27"},
	}

	got, err := form.ExpandDates("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-20", "2026-10-27"}, isoDates(got))
}

func TestRecurrenceForm_ExpandDatesFallsBackToEventDate(t *testing.T) {
	form := RecurrenceForm{Frequency: "weekly", EndDate: "2026-11-03", Weekdays: []string{"tue"}}

	got, err := form.ExpandDates("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-10-20", "2026-10-27", "2026-11-03"}, isoDates(got))
}

func TestRecurrenceForm_ExpandDatesRejectsBadDate(t *testing.T) {
	form := RecurrenceForm{Frequency: "multiple", Dates: []string{"not-a-date"}}

	_, err := form.ExpandDates("2026-10-20")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
