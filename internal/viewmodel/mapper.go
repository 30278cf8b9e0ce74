// Package viewmodel turns raw service-request records into display-ready,
// fully localized view models. Mapping is pure: it never mutates its inputs
// and never fails, resolving every absent or malformed field to a documented
// default instead.
package viewmodel

import (
	"strings"
	"time"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/vocab"
)

// PaymentAction is the single payment affordance exposed for a request.
type PaymentAction string

const (
	ActionNone        PaymentAction = "none"
	ActionPayNow      PaymentAction = "pay_now"
	ActionViewPayment PaymentAction = "view_payment"
)

// dateLayout is locale-independent on purpose so the same string renders in
// every language.
const dateLayout = "02 Jan 2006"

// DisplayRequest is the localized projection of a service request. Labels are
// carried in all three languages at once so the client can switch language
// without another round trip.
type DisplayRequest struct {
	ID          string              `json:"id"`
	ServiceName vocab.LocalizedText `json:"service_name"`

	Status      models.RequestStatus `json:"status"`
	StatusText  vocab.LocalizedText  `json:"status_text"`
	StatusBadge vocab.Badge          `json:"status_badge"`

	Urgency      models.Urgency      `json:"urgency"`
	UrgencyText  vocab.LocalizedText `json:"urgency_text"`
	UrgencyBadge vocab.Badge         `json:"urgency_badge"`

	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	PaymentStatusText  vocab.LocalizedText  `json:"payment_status_text"`
	PaymentStatusBadge vocab.Badge          `json:"payment_status_badge"`

	Consultant vocab.LocalizedText `json:"consultant"`
	CreatedAt  vocab.LocalizedText `json:"created_at"`

	PaymentRequired bool          `json:"payment_required"`
	PaymentAmount   *float64      `json:"payment_amount,omitempty"`
	PaymentCurrency *string       `json:"payment_currency,omitempty"`
	PaymentAction   PaymentAction `json:"payment_action"`

	Replies []models.RequestReply `json:"replies,omitempty"`
}

// MapServiceRequest builds the display projection for one raw record. The
// consultant directory may be empty or stale; the category may be nil. Both
// are resolved through the fallback chains below rather than reported as
// errors.
func MapServiceRequest(raw models.ServiceRequest, directory models.ConsultantDirectory, category *models.ServiceCategory) DisplayRequest {
	display := DisplayRequest{
		ID:          raw.ID,
		ServiceName: resolveServiceName(raw, category),

		Status:      raw.Status,
		StatusText:  vocab.RequestStatusText(raw.Status),
		StatusBadge: vocab.RequestStatusBadge(raw.Status),

		Urgency:      raw.Urgency,
		UrgencyText:  vocab.UrgencyText(raw.Urgency),
		UrgencyBadge: vocab.UrgencyBadge(raw.Urgency),

		PaymentStatus:      raw.PaymentStatus,
		PaymentStatusText:  vocab.PaymentStatusText(raw.PaymentStatus),
		PaymentStatusBadge: vocab.PaymentStatusBadge(raw.PaymentStatus),

		Consultant: resolveConsultant(raw, directory),
		CreatedAt:  formatCreatedAt(raw.CreatedAt),

		PaymentRequired: raw.PaymentRequired,
		PaymentAction:   PaymentActionFor(raw.PaymentRequired, raw.PaymentStatus),

		Replies: raw.Replies,
	}

	// Payment figures are carried over only when a payment is expected; a
	// request without one is complete without these fields.
	if raw.PaymentRequired {
		display.PaymentAmount = raw.PaymentAmount
		display.PaymentCurrency = raw.PaymentCurrency
	}

	return display
}

// MapServiceRequests maps a page of raw records against a shared directory
// and catalog snapshot.
func MapServiceRequests(raws []models.ServiceRequest, directory models.ConsultantDirectory, catalog map[string]models.ServiceCategory) []DisplayRequest {
	displays := make([]DisplayRequest, 0, len(raws))
	for _, raw := range raws {
		var category *models.ServiceCategory
		if raw.CategoryID != nil {
			if entry, ok := catalog[*raw.CategoryID]; ok {
				category = &entry
			}
		}
		displays = append(displays, MapServiceRequest(raw, directory, category))
	}
	return displays
}

// PaymentActionFor selects the payment affordance: a pending required payment
// can be paid now, any other required payment can only be viewed, and a
// request without payment exposes no payment action at all.
func PaymentActionFor(paymentRequired bool, status models.PaymentStatus) PaymentAction {
	if !paymentRequired {
		return ActionNone
	}
	if status == models.PaymentStatusPending {
		return ActionPayNow
	}
	return ActionViewPayment
}

// MatchesSearch is the pure in-memory stage of list filtering, applied after
// the database stage. It matches the term case-insensitively against the id,
// every localized service name, and the resolved consultant name.
func MatchesSearch(display DisplayRequest, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	candidates := []string{
		display.ID,
		display.ServiceName.AR,
		display.ServiceName.EN,
		display.ServiceName.FR,
		display.Consultant.AR,
		display.Consultant.EN,
		display.Consultant.FR,
	}
	for _, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate), term) {
			return true
		}
	}
	return false
}

// FilterBySearch keeps only the displays matching the term. A blank term
// returns the input unchanged.
func FilterBySearch(displays []DisplayRequest, term string) []DisplayRequest {
	if strings.TrimSpace(term) == "" {
		return displays
	}
	filtered := make([]DisplayRequest, 0, len(displays))
	for _, display := range displays {
		if MatchesSearch(display, term) {
			filtered = append(filtered, display)
		}
	}
	return filtered
}

// resolveServiceName prefers the catalog's localized titles, then the request
// free-text description, then the generic placeholder.
func resolveServiceName(raw models.ServiceRequest, category *models.ServiceCategory) vocab.LocalizedText {
	if category != nil && strings.TrimSpace(category.TitleEn) != "" {
		return vocab.LocalizedText{AR: category.TitleAr, EN: category.TitleEn, FR: category.TitleFr}
	}
	if description := strings.TrimSpace(raw.ServiceDescription); description != "" {
		return uniform(description)
	}
	return vocab.GenericService
}

// resolveConsultant walks the chain: directory hit by assigned id, then the
// name denormalised onto the request, then the fixed placeholder.
func resolveConsultant(raw models.ServiceRequest, directory models.ConsultantDirectory) vocab.LocalizedText {
	if raw.AssignedTo != nil {
		if consultant, ok := directory[*raw.AssignedTo]; ok && strings.TrimSpace(consultant.Name) != "" {
			return uniform(consultant.Name)
		}
	}
	if raw.AssignedConsultantName != nil && strings.TrimSpace(*raw.AssignedConsultantName) != "" {
		return uniform(*raw.AssignedConsultantName)
	}
	return vocab.NotYetAssigned
}

func formatCreatedAt(createdAt time.Time) vocab.LocalizedText {
	if createdAt.IsZero() {
		return vocab.Unspecified
	}
	return uniform(createdAt.UTC().Format(dateLayout))
}

// uniform wraps a language-independent value (a proper name, a date) so it
// slots into localized fields.
func uniform(value string) vocab.LocalizedText {
	return vocab.LocalizedText{AR: value, EN: value, FR: value}
}
