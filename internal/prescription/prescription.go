package prescription

import "time"

// LineItem is one prescribed medicine parsed from a prescription.
// Name is the only required field; Dosage and Quantity stay empty/zero
// when the text does not spell them out.
type LineItem struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage,omitempty"`
	Quantity int    `json:"quantity,omitempty"` // 0 means unspecified
}

// Record is the structured result of parsing raw prescription text.
// RawText is always retained for audit even when nothing else parsed.
type Record struct {
	PatientName string     `json:"patient_name,omitempty"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	Items       []LineItem `json:"items"`
	RawText     string     `json:"raw_text"`
}

// Prescription is a processed and persisted prescription scan.
type Prescription struct {
	ID          string     `json:"id"`
	PatientName string     `json:"patient_name,omitempty"`
	DoctorName  string     `json:"doctor_name,omitempty"`
	Items       []LineItem `json:"items"`
	RawText     string     `json:"raw_text"`
	Source      string     `json:"source"` // which OCR engine served the text
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	OrderID     string     `json:"order_id,omitempty"` // set when unavailable items raised an order
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Medicine is one inventory entry.
type Medicine struct {
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage,omitempty"`
	Quantity  int       `json:"quantity"` // units on hand
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order statuses, advanced through the order management API.
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// OrderItem is one medicine requested in a procurement order.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// Order is a batched procurement request for medicines the pharmacy
// could not fulfil from stock.
type Order struct {
	ID          string      `json:"id"`
	Items       []OrderItem `json:"items"`
	PatientName string      `json:"patient_name,omitempty"`
	DoctorName  string      `json:"doctor_name,omitempty"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// AvailableItem pairs a prescribed line item with the inventory entry
// that covers it.
type AvailableItem struct {
	Item     LineItem `json:"item"`
	Medicine Medicine `json:"medicine"`
}

// MatchOutcome partitions prescribed items by inventory coverage.
type MatchOutcome struct {
	Available   []AvailableItem `json:"available"`
	Unavailable []LineItem      `json:"unavailable"`
}

// ReportMatch is one hit from a PDF report keyword search.
type ReportMatch struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Context  string `json:"context,omitempty"`
}
