// Package vocab holds the closed status vocabularies of the platform and
// their localized labels. Every lookup is total: unknown codes resolve to a
// defined default entry instead of failing, so display code never has to
// guard against missing translations.
package vocab

import "github.com/mizan-legal/mizan-api/internal/models"

// Lang is a supported interface language.
type Lang string

const (
	LangAr Lang = "ar"
	LangEn Lang = "en"
	LangFr Lang = "fr"
)

// Languages lists every supported language code.
func Languages() []Lang {
	return []Lang{LangAr, LangEn, LangFr}
}

// NormalizeLang maps an arbitrary language code onto a supported one,
// defaulting to English.
func NormalizeLang(code string) Lang {
	switch Lang(code) {
	case LangAr:
		return LangAr
	case LangFr:
		return LangFr
	default:
		return LangEn
	}
}

// LocalizedText carries the same label in all three languages at once so a
// consumer can switch language without refetching.
type LocalizedText struct {
	AR string `json:"ar"`
	EN string `json:"en"`
	FR string `json:"fr"`
}

// In returns the label for the given language.
func (t LocalizedText) In(lang Lang) string {
	switch lang {
	case LangAr:
		return t.AR
	case LangFr:
		return t.FR
	default:
		return t.EN
	}
}

var requestStatusLabels = map[models.RequestStatus]LocalizedText{
	models.RequestStatusPending:        {AR: "قيد الانتظار", EN: "Pending", FR: "En attente"},
	models.RequestStatusPendingPayment: {AR: "بانتظار الدفع", EN: "Awaiting payment", FR: "En attente de paiement"},
	models.RequestStatusInProgress:     {AR: "قيد المعالجة", EN: "In progress", FR: "En cours"},
	models.RequestStatusCompleted:      {AR: "مكتمل", EN: "Completed", FR: "Terminé"},
	models.RequestStatusRejected:       {AR: "مرفوض", EN: "Rejected", FR: "Rejeté"},
}

var urgencyLabels = map[models.Urgency]LocalizedText{
	models.UrgencyLow:    {AR: "منخفضة", EN: "Low", FR: "Faible"},
	models.UrgencyNormal: {AR: "عادية", EN: "Normal", FR: "Normale"},
	models.UrgencyHigh:   {AR: "مرتفعة", EN: "High", FR: "Élevée"},
	models.UrgencyUrgent: {AR: "عاجلة", EN: "Urgent", FR: "Urgente"},
}

var paymentStatusLabels = map[models.PaymentStatus]LocalizedText{
	models.PaymentStatusPending:    {AR: "في انتظار الدفع", EN: "Pending", FR: "En attente"},
	models.PaymentStatusProcessing: {AR: "قيد المعالجة", EN: "Processing", FR: "En cours de traitement"},
	models.PaymentStatusCompleted:  {AR: "مدفوع", EN: "Paid", FR: "Payé"},
	models.PaymentStatusFailed:     {AR: "فشل الدفع", EN: "Failed", FR: "Échoué"},
	models.PaymentStatusCancelled:  {AR: "ملغى", EN: "Cancelled", FR: "Annulé"},
	models.PaymentStatusRefunded:   {AR: "مسترجع", EN: "Refunded", FR: "Remboursé"},
}

var paymentMethodLabels = map[models.PaymentMethod]LocalizedText{
	models.PaymentMethodCCP:          {AR: "الحساب الجاري البريدي", EN: "CCP", FR: "CCP"},
	models.PaymentMethodBaridiMob:    {AR: "بريدي موب", EN: "BaridiMob", FR: "BaridiMob"},
	models.PaymentMethodBankTransfer: {AR: "تحويل بنكي", EN: "Bank transfer", FR: "Virement bancaire"},
	models.PaymentMethodCash:         {AR: "نقدا", EN: "Cash", FR: "Espèces"},
}

// RequestStatusText returns localized labels for a request status. Unknown
// codes resolve to the pending entry.
func RequestStatusText(status models.RequestStatus) LocalizedText {
	if text, ok := requestStatusLabels[status]; ok {
		return text
	}
	return requestStatusLabels[models.RequestStatusPending]
}

// UrgencyText returns localized labels for an urgency level. Unknown codes
// resolve to the normal entry.
func UrgencyText(urgency models.Urgency) LocalizedText {
	if text, ok := urgencyLabels[urgency]; ok {
		return text
	}
	return urgencyLabels[models.UrgencyNormal]
}

// PaymentStatusText returns localized labels for a payment status. Unknown
// codes resolve to the pending entry.
func PaymentStatusText(status models.PaymentStatus) LocalizedText {
	if text, ok := paymentStatusLabels[status]; ok {
		return text
	}
	return paymentStatusLabels[models.PaymentStatusPending]
}

// PaymentMethodText returns localized labels for a payment method. Unknown
// codes resolve to the bank-transfer entry.
func PaymentMethodText(method models.PaymentMethod) LocalizedText {
	if text, ok := paymentMethodLabels[method]; ok {
		return text
	}
	return paymentMethodLabels[models.PaymentMethodBankTransfer]
}

// Badge is a presentation class for status chips.
type Badge string

const (
	BadgeNeutral Badge = "neutral"
	BadgeInfo    Badge = "info"
	BadgeWarning Badge = "warning"
	BadgeSuccess Badge = "success"
	BadgeDanger  Badge = "danger"
)

var requestStatusBadges = map[models.RequestStatus]Badge{
	models.RequestStatusPending:        BadgeWarning,
	models.RequestStatusPendingPayment: BadgeWarning,
	models.RequestStatusInProgress:     BadgeInfo,
	models.RequestStatusCompleted:      BadgeSuccess,
	models.RequestStatusRejected:       BadgeDanger,
}

var urgencyBadges = map[models.Urgency]Badge{
	models.UrgencyLow:    BadgeNeutral,
	models.UrgencyNormal: BadgeInfo,
	models.UrgencyHigh:   BadgeWarning,
	models.UrgencyUrgent: BadgeDanger,
}

var paymentStatusBadges = map[models.PaymentStatus]Badge{
	models.PaymentStatusPending:    BadgeWarning,
	models.PaymentStatusProcessing: BadgeInfo,
	models.PaymentStatusCompleted:  BadgeSuccess,
	models.PaymentStatusFailed:     BadgeDanger,
	models.PaymentStatusCancelled:  BadgeNeutral,
	models.PaymentStatusRefunded:   BadgeInfo,
}

// RequestStatusBadge maps a request status onto a presentation class.
func RequestStatusBadge(status models.RequestStatus) Badge {
	if badge, ok := requestStatusBadges[status]; ok {
		return badge
	}
	return BadgeNeutral
}

// UrgencyBadge maps an urgency level onto a presentation class.
func UrgencyBadge(urgency models.Urgency) Badge {
	if badge, ok := urgencyBadges[urgency]; ok {
		return badge
	}
	return BadgeNeutral
}

// PaymentStatusBadge maps a payment status onto a presentation class.
func PaymentStatusBadge(status models.PaymentStatus) Badge {
	if badge, ok := paymentStatusBadges[status]; ok {
		return badge
	}
	return BadgeNeutral
}

// Fixed placeholder strings used by the display mapper.
var (
	// NotYetAssigned substitutes for a missing consultant.
	NotYetAssigned = LocalizedText{AR: "لم يتم التعيين بعد", EN: "Not yet assigned", FR: "Pas encore assigné"}
	// GenericService substitutes for a request with no catalog entry and no
	// free-text description.
	GenericService = LocalizedText{AR: "خدمة قانونية", EN: "Legal service", FR: "Service juridique"}
	// Unspecified substitutes for an absent or unparseable timestamp.
	Unspecified = LocalizedText{AR: "غير محدد", EN: "Unspecified", FR: "Non spécifié"}
)

// RequestStatuses lists every known request status.
func RequestStatuses() []models.RequestStatus {
	return []models.RequestStatus{
		models.RequestStatusPending,
		models.RequestStatusPendingPayment,
		models.RequestStatusInProgress,
		models.RequestStatusCompleted,
		models.RequestStatusRejected,
	}
}

// Urgencies lists every known urgency level.
func Urgencies() []models.Urgency {
	return []models.Urgency{
		models.UrgencyLow,
		models.UrgencyNormal,
		models.UrgencyHigh,
		models.UrgencyUrgent,
	}
}

// PaymentStatuses lists every known payment status.
func PaymentStatuses() []models.PaymentStatus {
	return []models.PaymentStatus{
		models.PaymentStatusPending,
		models.PaymentStatusProcessing,
		models.PaymentStatusCompleted,
		models.PaymentStatusFailed,
		models.PaymentStatusCancelled,
		models.PaymentStatusRefunded,
	}
}

// PaymentMethods lists every known payment method.
func PaymentMethods() []models.PaymentMethod {
	return []models.PaymentMethod{
		models.PaymentMethodCCP,
		models.PaymentMethodBaridiMob,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodCash,
	}
}
