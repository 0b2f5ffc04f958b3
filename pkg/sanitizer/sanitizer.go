package sanitizer

import (
	"regexp"
	"strings"

	"aqevent/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reUnsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)
	reMultiUnderscore = regexp.MustCompile(`_+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func collapseUnderscores(s string) string {
	s = reMultiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeFileName makes an uploaded file name safe to use as a storage path segment.
func SanitizeFileName(name string) string {
	p := Pipeline{
		trim,
		func(s string) string { return reUnsafeFileChars.ReplaceAllString(s, "_") },
		collapseUnderscores,
		lower,
	}
	return p.Apply(name)
}

// LocationKey is the comparison key for venue names.
func LocationKey(location string) string {
	p := Pipeline{
		TrimAndNormalize,
		lower,
	}
	return p.Apply(location)
}

// SameLocation reports whether two venue names refer to the same room.
// An empty name never matches.
func SameLocation(a, b string) bool {
	ka, kb := LocationKey(a), LocationKey(b)
	return ka != "" && ka == kb
}

// SanitizeEvent normalizes the free-text fields of a submission in place.
// Times and dates are left untouched; they are validated, not rewritten.
func SanitizeEvent(ev *model.Event) {
	if ev == nil {
		return
	}
	ev.Name = NormalizeName(ev.Name)
	ev.Location = TrimAndNormalize(ev.Location)
	ev.EventType = TrimAndNormalize(ev.EventType)
	ev.ContactPerson = NormalizeName(ev.ContactPerson)
	ev.ContactEmail = lower(trim(ev.ContactEmail))
	ev.ContactNumber = trim(ev.ContactNumber)
	if e164 := NormalizePhone(ev.ContactNumber); e164 != "" {
		ev.ContactNumber = e164
	}
	ev.GroupCompanyName = TrimAndNormalize(ev.GroupCompanyName)
	ev.GroupCompanyType = TrimAndNormalize(ev.GroupCompanyType)
	ev.Description = trim(ev.Description)
	if ev.WebsiteAddress != "" {
		ev.WebsiteAddress = NormalizeURL(ev.WebsiteAddress)
	}
	if ev.OrganizationTypes != nil {
		ev.OrganizationTypes = NormalizeOrganizationTypes(ev.OrganizationTypes)
	}
	ev.EventDate = trim(ev.EventDate)
	ev.ReservationStartTime = trim(ev.ReservationStartTime)
	ev.ReservationEndTime = trim(ev.ReservationEndTime)
	ev.EventStartTime = trim(ev.EventStartTime)
	ev.EventEndTime = trim(ev.EventEndTime)
}
