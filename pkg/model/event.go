package model

import (
	"time"
)

type EventStatus string

const (
	StatusPending  EventStatus = "pending"
	StatusApproved EventStatus = "approved"
	StatusRejected EventStatus = "rejected"
)

// Source tags which collection a corpus event was read from.
type Source string

const (
	SourcePending  Source = "pending"
	SourceApproved Source = "approved"
)

const SchemaVersion = "2.0"

type Event struct {
	ID     string      `json:"id,omitempty" bson:"id,omitempty"`
	Status EventStatus `json:"status,omitempty" bson:"status,omitempty"`

	Name                    string   `json:"name" bson:"name" validate:"required,max=200"`
	Location                string   `json:"location" bson:"location" validate:"required"`
	EventType               string   `json:"eventType" bson:"eventType" validate:"required"`
	EstimatedAttendees      int      `json:"estimatedAttendees,omitempty" bson:"estimatedAttendees,omitempty" validate:"gte=0"`
	TotalPerformers         int      `json:"totalPerformers,omitempty" bson:"totalPerformers,omitempty" validate:"gte=0"`
	StaffingSupportRequired bool     `json:"staffingSupportRequired,omitempty" bson:"staffingSupportRequired,omitempty"`
	EstimatedBudget         float64  `json:"estimatedBudget,omitempty" bson:"estimatedBudget,omitempty" validate:"gte=0"`
	Description             string   `json:"description,omitempty" bson:"description,omitempty"`
	EventDate               string   `json:"eventDate" bson:"eventDate" validate:"required,event_date"`
	ReservationStartTime    string   `json:"reservationStartTime" bson:"reservationStartTime" validate:"omitempty,event_clock"`
	ReservationEndTime      string   `json:"reservationEndTime" bson:"reservationEndTime" validate:"omitempty,event_clock"`
	EventStartTime          string   `json:"eventStartTime" bson:"eventStartTime" validate:"omitempty,event_clock"`
	EventEndTime            string   `json:"eventEndTime" bson:"eventEndTime" validate:"omitempty,event_clock"`
	ContactPerson           string   `json:"contactPerson" bson:"contactPerson" validate:"required"`
	GroupCompanyName        string   `json:"groupCompanyName,omitempty" bson:"groupCompanyName,omitempty"`
	GroupCompanyType        string   `json:"groupCompanyType,omitempty" bson:"groupCompanyType,omitempty"`
	OrganizationTypes       []string `json:"organizationTypes,omitempty" bson:"organizationTypes,omitempty"`
	ContactNumber           string   `json:"contactNumber,omitempty" bson:"contactNumber,omitempty"`
	ContactEmail            string   `json:"contactEmail" bson:"contactEmail" validate:"required,event_email"`
	WebsiteAddress          string   `json:"websiteAddress,omitempty" bson:"websiteAddress,omitempty"`
	EventFrequency          string   `json:"eventFrequency,omitempty" bson:"eventFrequency,omitempty"`

	Acknowledgements *Acknowledgements `json:"acknowledgements,omitempty" bson:"acknowledgements,omitempty"`

	IsPartOfSeries   bool   `json:"isPartOfSeries,omitempty" bson:"isPartOfSeries,omitempty"`
	SeriesID         string `json:"seriesId,omitempty" bson:"seriesId,omitempty"`
	SeriesIndex      int    `json:"seriesIndex,omitempty" bson:"seriesIndex,omitempty"`
	SeriesTotalCount int    `json:"seriesTotalCount,omitempty" bson:"seriesTotalCount,omitempty"`
	SeriesFrequency  string `json:"seriesFrequency,omitempty" bson:"seriesFrequency,omitempty"`

	SubmittedAt        *time.Time          `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	ApprovedAt         *time.Time          `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	Version            string              `json:"version,omitempty" bson:"version,omitempty"`
	SubmissionMetadata *SubmissionMetadata `json:"submissionMetadata,omitempty" bson:"submissionMetadata,omitempty"`
	ApprovalMetadata   *ApprovalMetadata   `json:"approvalMetadata,omitempty" bson:"approvalMetadata,omitempty"`
	UploadedFiles      *UploadedFiles      `json:"uploadedFiles,omitempty" bson:"uploadedFiles,omitempty"`
}

type Acknowledgements struct {
	BookingUnderstanding  bool `json:"bookingUnderstanding" bson:"bookingUnderstanding"`
	ExpenseResponsibility bool `json:"expenseResponsibility" bson:"expenseResponsibility"`
}

type SubmissionMetadata struct {
	UserAgent        string    `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	SubmissionSource string    `json:"submissionSource,omitempty" bson:"submissionSource,omitempty"`
	IPTimestamp      time.Time `json:"ipTimestamp" bson:"ipTimestamp"`
	FormVersion      string    `json:"formVersion" bson:"formVersion"`
}

type ApprovalMetadata struct {
	ApprovedBy        string    `json:"approvedBy" bson:"approvedBy"`
	ApprovalTimestamp time.Time `json:"approvalTimestamp" bson:"approvalTimestamp"`
	SystemVersion     string    `json:"systemVersion" bson:"systemVersion"`
}

type UploadedFiles struct {
	Count        int            `json:"count" bson:"count"`
	SuccessCount int            `json:"successCount" bson:"successCount"`
	Files        []StoredFile   `json:"files" bson:"files"`
	FailedFiles  []FailedUpload `json:"failedFiles,omitempty" bson:"failedFiles,omitempty"`
}

type StoredFile struct {
	OriginalName string    `json:"originalName" bson:"originalName"`
	StoredPath   string    `json:"storedPath" bson:"storedPath"`
	DownloadURL  string    `json:"downloadUrl" bson:"downloadUrl"`
	UploadedAt   time.Time `json:"uploadedAt" bson:"uploadedAt"`
	Size         int64     `json:"size" bson:"size"`
	Ref          string    `json:"sha,omitempty" bson:"sha,omitempty"`
}

type FailedUpload struct {
	FileName string `json:"fileName" bson:"fileName"`
	Error    string `json:"error" bson:"error"`
}

// FileUpload is an attachment as it arrives with a submission, before it is stored.
type FileUpload struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
	Size    int64  `json:"size,omitempty"`
}

// CorpusEvent is an existing event together with the collection it came from.
type CorpusEvent struct {
	*Event
	Source Source `json:"source"`
}

// HasFiles reports whether at least one attachment was stored for the event.
func (e *Event) HasFiles() bool {
	return e.UploadedFiles != nil && e.UploadedFiles.Count > 0
}

// Clone returns a deep copy that can be mutated independently.
func (e *Event) Clone() *Event {
	c := *e
	if e.OrganizationTypes != nil {
		c.OrganizationTypes = append([]string(nil), e.OrganizationTypes...)
	}
	if e.Acknowledgements != nil {
		ack := *e.Acknowledgements
		c.Acknowledgements = &ack
	}
	if e.SubmissionMetadata != nil {
		meta := *e.SubmissionMetadata
		c.SubmissionMetadata = &meta
	}
	if e.ApprovalMetadata != nil {
		meta := *e.ApprovalMetadata
		c.ApprovalMetadata = &meta
	}
	if e.UploadedFiles != nil {
		files := *e.UploadedFiles
		files.Files = append([]StoredFile(nil), e.UploadedFiles.Files...)
		files.FailedFiles = append([]FailedUpload(nil), e.UploadedFiles.FailedFiles...)
		c.UploadedFiles = &files
	}
	if e.SubmittedAt != nil {
		t := *e.SubmittedAt
		c.SubmittedAt = &t
	}
	if e.ApprovedAt != nil {
		t := *e.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
