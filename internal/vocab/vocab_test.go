package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mizan-legal/mizan-api/internal/models"
)

func TestRequestStatusTextCoversAllStatusesAndLanguages(t *testing.T) {
	for _, status := range RequestStatuses() {
		text := RequestStatusText(status)
		for _, lang := range Languages() {
			assert.NotEmpty(t, text.In(lang), "status %s lang %s", status, lang)
		}
	}
}

func TestUrgencyTextCoversAllLevelsAndLanguages(t *testing.T) {
	for _, urgency := range Urgencies() {
		text := UrgencyText(urgency)
		for _, lang := range Languages() {
			assert.NotEmpty(t, text.In(lang), "urgency %s lang %s", urgency, lang)
		}
	}
}

func TestPaymentStatusTextCoversAllStatusesAndLanguages(t *testing.T) {
	for _, status := range PaymentStatuses() {
		text := PaymentStatusText(status)
		for _, lang := range Languages() {
			assert.NotEmpty(t, text.In(lang), "payment status %s lang %s", status, lang)
		}
	}
}

func TestPaymentMethodTextCoversAllMethodsAndLanguages(t *testing.T) {
	for _, method := range PaymentMethods() {
		text := PaymentMethodText(method)
		for _, lang := range Languages() {
			assert.NotEmpty(t, text.In(lang), "payment method %s lang %s", method, lang)
		}
	}
}

func TestUnknownCodesFallBackToDefaults(t *testing.T) {
	assert.Equal(t, RequestStatusText(models.RequestStatusPending), RequestStatusText("archived"))
	assert.Equal(t, UrgencyText(models.UrgencyNormal), UrgencyText("medium"))
	assert.Equal(t, PaymentStatusText(models.PaymentStatusPending), PaymentStatusText("chargeback"))
	assert.Equal(t, PaymentMethodText(models.PaymentMethodBankTransfer), PaymentMethodText("paypal"))
}

func TestBadgesAreTotalWithNeutralDefault(t *testing.T) {
	for _, status := range RequestStatuses() {
		assert.NotEmpty(t, RequestStatusBadge(status))
	}
	for _, urgency := range Urgencies() {
		assert.NotEmpty(t, UrgencyBadge(urgency))
	}
	for _, status := range PaymentStatuses() {
		assert.NotEmpty(t, PaymentStatusBadge(status))
	}

	assert.Equal(t, BadgeNeutral, RequestStatusBadge("archived"))
	assert.Equal(t, BadgeNeutral, UrgencyBadge("medium"))
	assert.Equal(t, BadgeNeutral, PaymentStatusBadge("chargeback"))
}

func TestNormalizeLang(t *testing.T) {
	assert.Equal(t, LangAr, NormalizeLang("ar"))
	assert.Equal(t, LangFr, NormalizeLang("fr"))
	assert.Equal(t, LangEn, NormalizeLang("en"))
	assert.Equal(t, LangEn, NormalizeLang(""))
	assert.Equal(t, LangEn, NormalizeLang("es"))
}
