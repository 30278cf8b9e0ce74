package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mizan-legal/mizan-api/internal/models"
	"github.com/mizan-legal/mizan-api/internal/vocab"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestMapServiceRequestMinimalRecord(t *testing.T) {
	display := MapServiceRequest(models.ServiceRequest{ID: "req-1"}, nil, nil)

	assert.Equal(t, "req-1", display.ID)
	assert.Equal(t, vocab.GenericService, display.ServiceName)
	assert.Equal(t, vocab.NotYetAssigned, display.Consultant)
	assert.Equal(t, vocab.Unspecified, display.CreatedAt)
	assert.Equal(t, ActionNone, display.PaymentAction)
	assert.Nil(t, display.PaymentAmount)
	assert.Nil(t, display.PaymentCurrency)

	// Unknown zero-valued enums resolve to the defined defaults.
	for _, lang := range vocab.Languages() {
		assert.NotEmpty(t, display.StatusText.In(lang))
		assert.NotEmpty(t, display.UrgencyText.In(lang))
		assert.NotEmpty(t, display.PaymentStatusText.In(lang))
	}
}

func TestMapServiceRequestMaximalRecord(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	raw := models.ServiceRequest{
		ID:                     "req-2",
		ClientID:               "client-1",
		CategoryID:             strPtr("cat-1"),
		Status:                 models.RequestStatusInProgress,
		Urgency:                models.UrgencyUrgent,
		ServiceDescription:     "Contract dispute review",
		AssignedTo:             strPtr("cons-7"),
		AssignedConsultantName: strPtr("Embedded Name"),
		PaymentRequired:        true,
		PaymentAmount:          floatPtr(15000),
		PaymentCurrency:        strPtr("DZD"),
		PaymentStatus:          models.PaymentStatusCompleted,
		CreatedAt:              createdAt,
		Replies: []models.RequestReply{
			{ID: "rep-1", Role: models.ReplyRoleAdmin, Message: "We are on it."},
		},
	}
	directory := models.ConsultantDirectory{
		"cons-7": {ID: "cons-7", Name: "A. Benali", Specialization: "Commercial law"},
	}
	category := &models.ServiceCategory{
		ID:      "cat-1",
		TitleAr: "قانون تجاري",
		TitleEn: "Commercial law",
		TitleFr: "Droit commercial",
	}

	display := MapServiceRequest(raw, directory, category)

	assert.Equal(t, "Commercial law", display.ServiceName.EN)
	assert.Equal(t, "Droit commercial", display.ServiceName.FR)
	assert.Equal(t, "A. Benali", display.Consultant.EN)
	assert.Equal(t, "14 Mar 2026", display.CreatedAt.EN)
	assert.Equal(t, ActionViewPayment, display.PaymentAction)
	assert.Equal(t, 15000.0, *display.PaymentAmount)
	assert.Equal(t, "DZD", *display.PaymentCurrency)
	assert.Len(t, display.Replies, 1)

	// Mapping must not mutate the source record.
	assert.Equal(t, "Embedded Name", *raw.AssignedConsultantName)
	assert.Equal(t, models.RequestStatusInProgress, raw.Status)
}

func TestConsultantFallbackChain(t *testing.T) {
	directory := models.ConsultantDirectory{
		"7": {ID: "7", Name: "A. Benali"},
	}

	// Directory hit wins.
	display := MapServiceRequest(models.ServiceRequest{AssignedTo: strPtr("7")}, directory, nil)
	assert.Equal(t, "A. Benali", display.Consultant.EN)

	// Directory miss falls back to the embedded name.
	display = MapServiceRequest(models.ServiceRequest{
		AssignedTo:             strPtr("99"),
		AssignedConsultantName: strPtr("S. Khelifi"),
	}, directory, nil)
	assert.Equal(t, "S. Khelifi", display.Consultant.EN)

	// Embedded name alone is enough.
	display = MapServiceRequest(models.ServiceRequest{
		AssignedConsultantName: strPtr("S. Khelifi"),
	}, nil, nil)
	assert.Equal(t, "S. Khelifi", display.Consultant.EN)

	// Neither source resolves to the fixed placeholder.
	display = MapServiceRequest(models.ServiceRequest{}, directory, nil)
	assert.Equal(t, vocab.NotYetAssigned, display.Consultant)
}

func TestServiceNameFallbackChain(t *testing.T) {
	category := &models.ServiceCategory{TitleAr: "عقود", TitleEn: "Contracts", TitleFr: "Contrats"}

	display := MapServiceRequest(models.ServiceRequest{ServiceDescription: "Anything"}, nil, category)
	assert.Equal(t, "Contracts", display.ServiceName.EN)

	display = MapServiceRequest(models.ServiceRequest{ServiceDescription: "Custom notarial act"}, nil, nil)
	assert.Equal(t, "Custom notarial act", display.ServiceName.EN)

	display = MapServiceRequest(models.ServiceRequest{ServiceDescription: "   "}, nil, nil)
	assert.Equal(t, vocab.GenericService, display.ServiceName)
}

func TestDateFallbackNeverProducesInvalidDate(t *testing.T) {
	display := MapServiceRequest(models.ServiceRequest{}, nil, nil)
	assert.Equal(t, vocab.Unspecified, display.CreatedAt)
	assert.NotContains(t, display.CreatedAt.EN, "Invalid")
}

func TestPaymentActionSelection(t *testing.T) {
	assert.Equal(t, ActionPayNow, PaymentActionFor(true, models.PaymentStatusPending))
	assert.Equal(t, ActionViewPayment, PaymentActionFor(true, models.PaymentStatusCompleted))
	assert.Equal(t, ActionViewPayment, PaymentActionFor(true, models.PaymentStatusProcessing))
	assert.Equal(t, ActionViewPayment, PaymentActionFor(true, models.PaymentStatusFailed))
	assert.Equal(t, ActionNone, PaymentActionFor(false, models.PaymentStatusPending))
	assert.Equal(t, ActionNone, PaymentActionFor(false, models.PaymentStatusCompleted))
}

func TestPaymentFieldsOmittedWhenNotRequired(t *testing.T) {
	display := MapServiceRequest(models.ServiceRequest{
		PaymentRequired: false,
		PaymentAmount:   floatPtr(5000),
		PaymentCurrency: strPtr("DZD"),
	}, nil, nil)

	assert.Nil(t, display.PaymentAmount)
	assert.Nil(t, display.PaymentCurrency)
	assert.Equal(t, ActionNone, display.PaymentAction)
}

func TestMapServiceRequestsResolvesCatalogPerRecord(t *testing.T) {
	catalog := map[string]models.ServiceCategory{
		"cat-1": {ID: "cat-1", TitleAr: "عقود", TitleEn: "Contracts", TitleFr: "Contrats"},
	}
	raws := []models.ServiceRequest{
		{ID: "a", CategoryID: strPtr("cat-1")},
		{ID: "b", CategoryID: strPtr("cat-missing"), ServiceDescription: "Succession file"},
		{ID: "c"},
	}

	displays := MapServiceRequests(raws, nil, catalog)

	assert.Len(t, displays, 3)
	assert.Equal(t, "Contracts", displays[0].ServiceName.EN)
	assert.Equal(t, "Succession file", displays[1].ServiceName.EN)
	assert.Equal(t, vocab.GenericService, displays[2].ServiceName)
}

func TestFilterBySearch(t *testing.T) {
	displays := []DisplayRequest{
		{ID: "req-1", ServiceName: vocab.LocalizedText{AR: "عقود", EN: "Contracts", FR: "Contrats"}},
		{ID: "req-2", ServiceName: vocab.LocalizedText{EN: "Succession"}, Consultant: vocab.LocalizedText{EN: "A. Benali", AR: "A. Benali", FR: "A. Benali"}},
	}

	assert.Len(t, FilterBySearch(displays, ""), 2)
	assert.Len(t, FilterBySearch(displays, "contrat"), 1)
	assert.Len(t, FilterBySearch(displays, "benali"), 1)
	assert.Len(t, FilterBySearch(displays, "عقود"), 1)
	assert.Empty(t, FilterBySearch(displays, "divorce"))
}
