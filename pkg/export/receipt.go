package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Receipt carries the fields printed on a payment receipt.
type Receipt struct {
	Reference   string
	RequestID   string
	ClientName  string
	ServiceName string
	Method      string
	Amount      string
	Status      string
	IssuedAt    string
	PaidAt      string
}

// ReceiptRenderer produces A4 payment receipts.
type ReceiptRenderer struct {
	organization string
}

// NewReceiptRenderer builds a renderer stamped with the organization name.
func NewReceiptRenderer(organization string) *ReceiptRenderer {
	if organization == "" {
		organization = "Mizan Legal Services"
	}
	return &ReceiptRenderer{organization: organization}
}

// Render creates a single-page PDF receipt.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.Reference == "" {
		return nil, fmt.Errorf("receipt requires a reference")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.organization, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Reference: %s", receipt.Reference), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	rows := []struct {
		label string
		value string
	}{
		{"Request", receipt.RequestID},
		{"Client", receipt.ClientName},
		{"Service", receipt.ServiceName},
		{"Payment method", receipt.Method},
		{"Amount", receipt.Amount},
		{"Status", receipt.Status},
		{"Issued", receipt.IssuedAt},
		{"Paid", receipt.PaidAt},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		if row.value == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(120, 8, row.value, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "This receipt was generated electronically and is valid without a signature.", "", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
