package models

import "time"

// FAQ is a published question/answer pair with localized content.
type FAQ struct {
	ID         string    `db:"id" json:"id"`
	QuestionAr string    `db:"question_ar" json:"question_ar"`
	QuestionEn string    `db:"question_en" json:"question_en"`
	QuestionFr string    `db:"question_fr" json:"question_fr"`
	AnswerAr   string    `db:"answer_ar" json:"answer_ar"`
	AnswerEn   string    `db:"answer_en" json:"answer_en"`
	AnswerFr   string    `db:"answer_fr" json:"answer_fr"`
	CategoryID *string   `db:"category_id" json:"category_id,omitempty"`
	Published  bool      `db:"published" json:"published"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FAQFilter captures filtering options for listing FAQs.
type FAQFilter struct {
	Published  *bool
	CategoryID *string
	Search     string
	Page       int
	PageSize   int
}
