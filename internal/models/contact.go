package models

import "time"

// ContactInfo is a keyed piece of company contact data (phone, email, address,
// social links). The set is small and read overwhelmingly more than written.
type ContactInfo struct {
	ID        string    `db:"id" json:"id"`
	Key       string    `db:"key" json:"key"`
	ValueAr   string    `db:"value_ar" json:"value_ar"`
	ValueEn   string    `db:"value_en" json:"value_en"`
	ValueFr   string    `db:"value_fr" json:"value_fr"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
