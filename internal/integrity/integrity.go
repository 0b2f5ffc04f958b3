// Package integrity inspects the pending and approved collections for
// states that no single write should produce, and probes the health of the
// event store.
package integrity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"aqevent/internal/timerange"
	"aqevent/pkg/logger"
	"aqevent/pkg/model"
)

type IssueType string

const (
	IssueDuplicateID  IssueType = "duplicate_id"
	IssueInvalidDate  IssueType = "invalid_date"
	IssueMissingField IssueType = "missing_field"
	IssueSystem       IssueType = "system"
)

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "HEALTHY"
	StatusDegraded  HealthStatus = "DEGRADED"
	StatusUnhealthy HealthStatus = "UNHEALTHY"
)

const manualIntervention = "Requires manual intervention"

// Source is the read side of the event repository.
type Source interface {
	FindPending(ctx context.Context) ([]*model.Event, error)
	FindApproved(ctx context.Context) ([]*model.Event, error)
	Ping(ctx context.Context) error
}

type Issue struct {
	Type     IssueType      `json:"type"`
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
	EventID  string         `json:"eventId,omitempty"`
	Field    string         `json:"field,omitempty"`
	Lists    []model.Source `json:"lists,omitempty"`
}

type Report struct {
	Healthy       bool      `json:"healthy"`
	Issues        []Issue   `json:"issues"`
	Summary       string    `json:"summary"`
	PendingCount  int       `json:"pendingCount"`
	ApprovedCount int       `json:"approvedCount"`
	CheckedAt     time.Time `json:"checkedAt"`
}

type UnrepairedIssue struct {
	Issue
	Reason string `json:"reason"`
}

type RepairResult struct {
	Repaired   []Issue           `json:"repaired"`
	Unrepaired []UnrepairedIssue `json:"unrepaired"`
	Summary    string            `json:"summary"`
}

type HealthCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

type HealthReport struct {
	Status    HealthStatus  `json:"status"`
	Checks    []HealthCheck `json:"checks"`
	Summary   string        `json:"summary"`
	CheckedAt time.Time     `json:"checkedAt"`
}

type Checker struct {
	source          Source
	adminConfigured bool
	log             *logger.Logger
	now             func() time.Time
}

func NewChecker(source Source, adminConfigured bool, log *logger.Logger) *Checker {
	return &Checker{
		source:          source,
		adminConfigured: adminConfigured,
		log:             log,
		now:             time.Now,
	}
}

// Check reads both collections and reports every issue found. A read
// failure is reported as a single system issue rather than an error.
func (c *Checker) Check(ctx context.Context) *Report {
	report := &Report{Issues: []Issue{}, CheckedAt: c.now().UTC()}

	pending, approved, err := c.load(ctx)
	if err != nil {
		c.log.Error("Integrity check could not read events", "error", err)
		report.Issues = append(report.Issues, Issue{
			Type:     IssueSystem,
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("Failed to check data integrity: %v", err),
		})
		report.Summary = summary(len(report.Issues))
		return report
	}

	report.PendingCount = len(pending)
	report.ApprovedCount = len(approved)
	report.Issues = append(report.Issues, duplicates(pending, approved)...)
	for _, list := range []struct {
		source model.Source
		events []*model.Event
	}{
		{model.SourcePending, pending},
		{model.SourceApproved, approved},
	} {
		for _, ev := range list.events {
			report.Issues = append(report.Issues, eventIssues(ev, list.source)...)
		}
	}

	report.Healthy = len(report.Issues) == 0
	report.Summary = summary(len(report.Issues))
	return report
}

// Repair runs a check and attempts to fix what it finds. No issue type can
// be fixed automatically yet, so every issue comes back unrepaired.
func (c *Checker) Repair(ctx context.Context) *RepairResult {
	report := c.Check(ctx)
	result := &RepairResult{Repaired: []Issue{}, Unrepaired: make([]UnrepairedIssue, 0, len(report.Issues))}
	for _, issue := range report.Issues {
		result.Unrepaired = append(result.Unrepaired, UnrepairedIssue{Issue: issue, Reason: manualIntervention})
	}
	result.Summary = fmt.Sprintf("Repaired %d of %d issues", len(result.Repaired), len(report.Issues))

	c.log.Info("Integrity repair finished",
		"repaired", len(result.Repaired),
		"unrepaired", len(result.Unrepaired),
	)
	return result
}

// Health probes the store and configuration. Overall status is HEALTHY when
// every probe passes and UNHEALTHY once failures reach the number of passes.
func (c *Checker) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{CheckedAt: c.now().UTC()}

	report.Checks = append(report.Checks, probe("store connectivity", "Event store is reachable", c.source.Ping(ctx)))

	pending, err := c.source.FindPending(ctx)
	report.Checks = append(report.Checks, probe("pending events", fmt.Sprintf("%d pending events readable", len(pending)), err))

	approved, err := c.source.FindApproved(ctx)
	report.Checks = append(report.Checks, probe("approved events", fmt.Sprintf("%d approved events readable", len(approved)), err))

	auth := HealthCheck{Name: "admin authentication", Passed: c.adminConfigured, Message: "Admin token configured"}
	if !c.adminConfigured {
		auth.Message = "Admin token is not configured"
	}
	report.Checks = append(report.Checks, auth)

	passed, failed := 0, 0
	for _, check := range report.Checks {
		if check.Passed {
			passed++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		report.Status = StatusHealthy
	case failed >= passed:
		report.Status = StatusUnhealthy
	default:
		report.Status = StatusDegraded
	}
	report.Summary = fmt.Sprintf("%d passed, %d failed", passed, failed)
	return report
}

func (c *Checker) load(ctx context.Context) ([]*model.Event, []*model.Event, error) {
	var (
		wg                    sync.WaitGroup
		pending, approved     []*model.Event
		pendingErr, approvErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pending, pendingErr = c.source.FindPending(ctx)
	}()
	go func() {
		defer wg.Done()
		approved, approvErr = c.source.FindApproved(ctx)
	}()
	wg.Wait()

	if pendingErr != nil {
		return nil, nil, fmt.Errorf("pending events: %w", pendingErr)
	}
	if approvErr != nil {
		return nil, nil, fmt.Errorf("approved events: %w", approvErr)
	}
	return pending, approved, nil
}

func probe(name, okMessage string, err error) HealthCheck {
	if err != nil {
		return HealthCheck{Name: name, Passed: false, Message: err.Error()}
	}
	return HealthCheck{Name: name, Passed: true, Message: okMessage}
}

func duplicates(pending, approved []*model.Event) []Issue {
	seen := map[string][]model.Source{}
	order := []string{}
	record := func(events []*model.Event, source model.Source) {
		for _, ev := range events {
			if ev == nil || ev.ID == "" {
				continue
			}
			if _, ok := seen[ev.ID]; !ok {
				order = append(order, ev.ID)
			}
			seen[ev.ID] = append(seen[ev.ID], source)
		}
	}
	record(pending, model.SourcePending)
	record(approved, model.SourceApproved)

	var issues []Issue
	for _, id := range order {
		lists := seen[id]
		if len(lists) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Type:     IssueDuplicateID,
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("Event ID %s appears %d times (%s)", id, len(lists), joinSources(lists)),
			EventID:  id,
			Lists:    lists,
		})
	}
	return issues
}

func eventIssues(ev *model.Event, source model.Source) []Issue {
	if ev == nil {
		return nil
	}
	var issues []Issue
	required := []struct{ field, value string }{
		{"name", ev.Name},
		{"eventDate", ev.EventDate},
		{"location", ev.Location},
		{"contactEmail", ev.ContactEmail},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			issues = append(issues, Issue{
				Type:     IssueMissingField,
				Severity: model.SeverityMedium,
				Message:  fmt.Sprintf("Event %s is missing required field %s", label(ev), r.field),
				EventID:  ev.ID,
				Field:    r.field,
				Lists:    []model.Source{source},
			})
		}
	}
	if ev.EventDate != "" {
		if _, ok := timerange.ParseDate(ev.EventDate, time.UTC); !ok {
			issues = append(issues, Issue{
				Type:     IssueInvalidDate,
				Severity: model.SeverityHigh,
				Message:  fmt.Sprintf("Event %s has invalid date %q", label(ev), ev.EventDate),
				EventID:  ev.ID,
				Field:    "eventDate",
				Lists:    []model.Source{source},
			})
		}
	}
	return issues
}

func label(ev *model.Event) string {
	if ev.ID == "" {
		return "(no id)"
	}
	return ev.ID
}

func joinSources(sources []model.Source) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func summary(n int) string {
	if n == 0 {
		return "No data integrity issues found"
	}
	return fmt.Sprintf("Found %d data integrity issue(s)", n)
}
