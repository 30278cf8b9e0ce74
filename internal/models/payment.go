package models

import "time"

// PaymentStatus is the financial-settlement state of a request's fee. It is
// displayed alongside the workflow status but never conflated with it.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// PaymentMethod enumerates the settlement channels accepted in Algeria.
type PaymentMethod string

const (
	PaymentMethodCCP          PaymentMethod = "ccp"
	PaymentMethodBaridiMob    PaymentMethod = "baridimob"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

// Payment is the 0..1 settlement record attached to a service request.
type Payment struct {
	ID            string        `db:"id" json:"payment_id"`
	RequestID     string        `db:"request_id" json:"request_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Currency      string        `db:"currency" json:"currency"`
	Method        PaymentMethod `db:"method" json:"payment_method"`
	Status        PaymentStatus `db:"status" json:"payment_status"`
	Reference     string        `db:"reference" json:"payment_reference"`
	TransactionID *string       `db:"transaction_id" json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	DueDate       *time.Time    `db:"due_date" json:"due_date,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter captures filtering options for the admin payments listing.
type PaymentFilter struct {
	Status    *PaymentStatus
	Method    *PaymentMethod
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PaymentDetails bundles a payment with its request and paying client for the
// payment-details lookup endpoint.
type PaymentDetails struct {
	Payment        Payment         `json:"payment"`
	ServiceRequest *ServiceRequest `json:"service_request,omitempty"`
	Client         *UserInfo       `json:"client,omitempty"`
}
