package models

import "time"

// Consultant is a staff member who can be assigned to service requests.
type Consultant struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Email          *string   `db:"email" json:"email,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ConsultantFilter captures filtering options for listing consultants.
type ConsultantFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// ConsultantDirectory is an id-keyed snapshot of consultants used by the
// display mapper. An empty directory is valid: lookups simply miss and the
// mapper falls back to embedded or placeholder names.
type ConsultantDirectory map[string]Consultant

// Directory builds a ConsultantDirectory from a consultant slice.
func Directory(consultants []Consultant) ConsultantDirectory {
	dir := make(ConsultantDirectory, len(consultants))
	for _, consultant := range consultants {
		dir[consultant.ID] = consultant
	}
	return dir
}
