package validator

import (
	"errors"
	"strings"
	"testing"

	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

func validEvent() *model.Event {
	return &model.Event{
		Name:                 "Fall Recital",
		Location:             "Concert Hall (Room 132)",
		EventType:            "Recital",
		EventDate:            "2026-10-20",
		ReservationStartTime: "18:00",
		ReservationEndTime:   "22:00",
		EventStartTime:       "19:00",
		EventEndTime:         "21:00",
		ContactPerson:        "Sam Lee",
		ContactEmail:         "sam@example.edu",
	}
}

func TestValidate(t *testing.T) {
	v := NewEventValidator(logger.Discard())

	tests := []struct {
		name      string
		modify    func(*model.Event)
		wantField string
	}{
		{name: "valid event", modify: func(*model.Event) {}},
		{name: "missing name", modify: func(e *model.Event) { e.Name = "" }, wantField: "name"},
		{name: "missing location", modify: func(e *model.Event) { e.Location = "" }, wantField: "location"},
		{name: "bad date", modify: func(e *model.Event) { e.EventDate = "10/20/2026" }, wantField: "eventDate"},
		{name: "bad email", modify: func(e *model.Event) { e.ContactEmail = "sam@" }, wantField: "contactEmail"},
		{name: "bad clock", modify: func(e *model.Event) { e.EventStartTime = "25:00" }, wantField: "eventStartTime"},
		{name: "negative budget", modify: func(e *model.Event) { e.EstimatedBudget = -5 }, wantField: "estimatedBudget"},
		{name: "reservation ends before start", modify: func(e *model.Event) { e.ReservationEndTime = "17:00" }, wantField: "reservationEndTime"},
		{name: "empty clocks are allowed", modify: func(e *model.Event) {
			e.ReservationStartTime, e.ReservationEndTime = "", ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.modify(ev)

			err := v.Validate(ev)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateFiles(t *testing.T) {
	v := NewEventValidator(logger.Discard())

	if err := v.ValidateFiles([]model.FileUpload{{Name: "a.pdf", Content: "aGk="}}); err != nil {
		t.Errorf("expected valid files, got %v", err)
	}

	err := v.ValidateFiles([]model.FileUpload{{Name: "a.pdf"}})
	if err == nil || !strings.Contains(err.Error(), "files[0].content") {
		t.Errorf("expected content error, got %v", err)
	}

	tooMany := make([]model.FileUpload, MaxFilesPerEvent+1)
	if err := v.ValidateFiles(tooMany); err == nil {
		t.Error("expected error for too many files")
	}
}

func TestValidateIDs(t *testing.T) {
	v := NewEventValidator(logger.Discard())

	if err := v.ValidateIDs([]string{"EVT_1", "EVT_2"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := v.ValidateIDs(nil); err == nil {
		t.Error("expected error for empty ids")
	}
	if err := v.ValidateIDs([]string{"EVT_1", ""}); err == nil {
		t.Error("expected error for blank id")
	}
}
