package models

import "time"

// ServiceCategory is an entry of the service catalog with localized titles.
type ServiceCategory struct {
	ID            string    `db:"id" json:"id"`
	Slug          string    `db:"slug" json:"slug"`
	TitleAr       string    `db:"title_ar" json:"title_ar"`
	TitleEn       string    `db:"title_en" json:"title_en"`
	TitleFr       string    `db:"title_fr" json:"title_fr"`
	DescriptionAr *string   `db:"description_ar" json:"description_ar,omitempty"`
	DescriptionEn *string   `db:"description_en" json:"description_en,omitempty"`
	DescriptionFr *string   `db:"description_fr" json:"description_fr,omitempty"`
	Published     bool      `db:"published" json:"published"`
	SortOrder     int       `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryFilter captures filtering options for listing categories.
type CategoryFilter struct {
	Published *bool
	Search    string
	Page      int
	PageSize  int
}
