package models

import "time"

// RequestStatus tracks a service request through its workflow.
type RequestStatus string

const (
	RequestStatusPending        RequestStatus = "pending"
	RequestStatusPendingPayment RequestStatus = "pending_payment"
	RequestStatusInProgress     RequestStatus = "in_progress"
	RequestStatusCompleted      RequestStatus = "completed"
	RequestStatusRejected       RequestStatus = "rejected"
)

// Urgency is informational only and never gates workflow transitions.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// ReplyRole identifies who authored a reply on a request thread.
type ReplyRole string

const (
	ReplyRoleAdmin      ReplyRole = "admin"
	ReplyRoleConsultant ReplyRole = "consultant"
	ReplyRoleSupport    ReplyRole = "support"
)

// ServiceRequest is a client's submission asking for a specific legal service.
// Workflow status and payment status are orthogonal: a request may be
// in_progress while its payment is already completed, or completed while the
// payment is still pending.
type ServiceRequest struct {
	ID                 string        `db:"id" json:"id"`
	ClientID           string        `db:"client_id" json:"client_id"`
	CategoryID         *string       `db:"category_id" json:"category_id,omitempty"`
	Status             RequestStatus `db:"status" json:"status"`
	Urgency            Urgency       `db:"urgency" json:"urgency"`
	ServiceDescription string        `db:"service_description" json:"service_description"`
	AssignedTo         *string       `db:"assigned_to" json:"assigned_to,omitempty"`
	// AssignedConsultantName is denormalised at assignment time so the display
	// layer still has a name when the consultant record is gone or unloaded.
	AssignedConsultantName *string        `db:"assigned_consultant_name" json:"assigned_consultant_name,omitempty"`
	PaymentRequired        bool           `db:"payment_required" json:"payment_required"`
	PaymentAmount          *float64       `db:"payment_amount" json:"payment_amount,omitempty"`
	PaymentCurrency        *string        `db:"payment_currency" json:"payment_currency,omitempty"`
	PaymentStatus          PaymentStatus  `db:"payment_status" json:"payment_status"`
	Viewed                 bool           `db:"viewed" json:"viewed"`
	Replies                []RequestReply `db:"-" json:"replies,omitempty"`
	CreatedAt              time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time      `db:"updated_at" json:"updated_at"`
}

// RequestReply is an append-only staff message on a request thread.
type RequestReply struct {
	ID        string    `db:"id" json:"id"`
	RequestID string    `db:"request_id" json:"request_id"`
	Author    string    `db:"author" json:"author"`
	Role      ReplyRole `db:"role" json:"role"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ServiceRequestFilter captures the server-side filter stage for listings.
// Free-text search is applied in memory after the database stage.
type ServiceRequestFilter struct {
	ClientID  string
	Status    *RequestStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
