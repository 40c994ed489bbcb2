// Package orderform renders procurement orders as printable PDF forms.
package orderform

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/zombor/rx-assistant/internal/prescription"
)

// Renderer produces the "Medicine Order Form" PDF handed to suppliers.
type Renderer struct{}

// NewRenderer creates a Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderOrderForm lays out one numbered block per ordered medicine with
// its quantity and the reason it is being ordered.
func (r *Renderer) RenderOrderForm(order *prescription.Order) ([]byte, error) {
	if order == nil || len(order.Items) == 0 {
		return nil, fmt.Errorf("order has no items to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Medicine Order Form", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	if order.PatientName != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Patient: %s", order.PatientName), "", 1, "L", false, 0, "")
	}
	if order.DoctorName != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Doctor: %s", order.DoctorName), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	for i, item := range order.Items {
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. Medicine Name: %s", i+1, item.Name), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("   Quantity: %d", item.Quantity), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("   Reason: %s", item.Reason), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}
