package models

import "time"

// ApplicationStatus tracks a job application through admin review.
type ApplicationStatus string

const (
	ApplicationStatusReceived  ApplicationStatus = "received"
	ApplicationStatusReviewing ApplicationStatus = "reviewing"
	ApplicationStatusShortlist ApplicationStatus = "shortlisted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusHired     ApplicationStatus = "hired"
)

// JobApplication is a candidate submission for an open position. The resume
// file lives on disk; ResumePath is the storage-relative location served via
// signed download URLs.
type JobApplication struct {
	ID         string            `db:"id" json:"id"`
	FullName   string            `db:"full_name" json:"full_name"`
	Email      string            `db:"email" json:"email"`
	Phone      *string           `db:"phone" json:"phone,omitempty"`
	Position   string            `db:"position" json:"position"`
	CoverNote  *string           `db:"cover_note" json:"cover_note,omitempty"`
	ResumePath *string           `db:"resume_path" json:"-"`
	Status     ApplicationStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// JobApplicationFilter captures filtering options for admin review listings.
type JobApplicationFilter struct {
	Status   *ApplicationStatus
	Position string
	Search   string
	Page     int
	PageSize int
}
