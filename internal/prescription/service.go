package prescription

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zombor/rx-assistant/internal/extraction"
)

// TextExtractor turns an uploaded prescription image into raw text
type TextExtractor interface {
	Extract(ctx context.Context, imageData []byte, contentType string) (*extraction.Result, error)
	Close() error
}

// Advisor suggests alternative medicines from the current inventory
type Advisor interface {
	Recommend(ctx context.Context, medicine string, inventory []string) (string, error)
}

// FormRenderer renders a procurement order as a printable document
type FormRenderer interface {
	RenderOrderForm(order *Order) ([]byte, error)
}

// IDGenerator generates unique IDs for prescriptions and orders
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanResult is everything one processed prescription produced: the
// stored record, the inventory partition, and the order raised for
// unavailable items (nil when stock covered everything).
type ScanResult struct {
	Prescription *Prescription `json:"prescription"`
	Outcome      MatchOutcome  `json:"outcome"`
	Order        *Order        `json:"order,omitempty"`
}

// Service handles prescription, inventory and order operations
type Service struct {
	db          DB
	extractor   TextExtractor
	storage     Storage
	reports     Storage
	renderer    FormRenderer
	advisor     Advisor
	idGenerator IDGenerator
	timeSource  TimeSource
	pdfText     func(data []byte) ([]string, error)
}

// NewService creates a new Service with default ID generator and time
// source. advisor may be nil when no recommendation backend is
// configured.
func NewService(db DB, extractor TextExtractor, storage, reports Storage, renderer FormRenderer, advisor Advisor) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		reports:     reports,
		renderer:    renderer,
		advisor:     advisor,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
		pdfText:     extraction.PDFPageTexts,
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor TextExtractor, storage, reports Storage, renderer FormRenderer, advisor Advisor, idGen IDGenerator, timeSrc TimeSource, pdfText func([]byte) ([]string, error)) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		reports:     reports,
		renderer:    renderer,
		advisor:     advisor,
		idGenerator: idGen,
		timeSource:  timeSrc,
		pdfText:     pdfText,
	}
}

var (
	filenameCharsRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters
// and truncating length; phone cameras produce very long names
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = filenameCharsRe.ReplaceAllString(base, "")
	base = filenameSpaceRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "prescription"
	}

	return base + ext
}

// ProcessPrescription runs the full pipeline on one uploaded image:
// store the upload, extract text, parse it, check the inventory, and
// raise a procurement order for anything out of stock.
func (s *Service) ProcessPrescription(ctx context.Context, filename string, data []byte, contentType string) (*ScanResult, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.extractor.Extract(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to extract prescription text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Remove the stored upload since nothing references it
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("extracting prescription text: %w", err)
	}

	record := ParsePrescription(result.Text)
	if len(record.Items) == 0 {
		slog.Warn("No medicines parsed from prescription", "filename", filename, "source", result.Source.String())
	}

	inventory, err := s.db.ListMedicines()
	if err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("listing medicines: %w", err)
	}
	snapshot := make([]Medicine, 0, len(inventory))
	for _, med := range inventory {
		snapshot = append(snapshot, *med)
	}

	outcome := MatchInventory(record.Items, snapshot)

	order := ComposeOrder(outcome.Unavailable, now)
	if order != nil {
		order.ID = s.idGenerator.Generate()
		order.PatientName = record.PatientName
		order.DoctorName = record.DoctorName
		if err := s.db.SaveOrder(order); err != nil {
			s.storage.Delete(savedPath)
			return nil, fmt.Errorf("saving order: %w", err)
		}
	}

	prescription := &Prescription{
		ID:          id,
		PatientName: record.PatientName,
		DoctorName:  record.DoctorName,
		Items:       record.Items,
		RawText:     record.RawText,
		Source:      result.Source.String(),
		Filename:    savedPath,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if order != nil {
		prescription.OrderID = order.ID
	}

	if err := s.db.SavePrescription(prescription); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving prescription: %w", err)
	}

	return &ScanResult{
		Prescription: prescription,
		Outcome:      outcome,
		Order:        order,
	}, nil
}

// GetPrescription retrieves a prescription by ID
func (s *Service) GetPrescription(id string) (*Prescription, error) {
	prescription, err := s.db.GetPrescription(id)
	if err != nil {
		return nil, fmt.Errorf("getting prescription: %w", err)
	}
	return prescription, nil
}

// ListPrescriptions returns all processed prescriptions
func (s *Service) ListPrescriptions() ([]*Prescription, error) {
	prescriptions, err := s.db.ListPrescriptions()
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return prescriptions, nil
}

// DeletePrescription removes a prescription and its stored image
func (s *Service) DeletePrescription(id string) error {
	prescription, err := s.db.GetPrescription(id)
	if err != nil {
		return fmt.Errorf("getting prescription for deletion: %w", err)
	}

	if err := s.storage.Delete(prescription.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", prescription.Filename, "error", err)
	}

	if err := s.db.DeletePrescription(id); err != nil {
		return fmt.Errorf("deleting prescription from database: %w", err)
	}
	return nil
}

// GetPrescriptionFile retrieves the stored image for a prescription
func (s *Service) GetPrescriptionFile(id string) ([]byte, string, error) {
	prescription, err := s.db.GetPrescription(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting prescription: %w", err)
	}

	data, err := s.storage.Get(prescription.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting prescription file: %w", err)
	}

	return data, prescription.ContentType, nil
}

// AddMedicine inserts or updates an inventory entry
func (s *Service) AddMedicine(medicine *Medicine) error {
	if strings.TrimSpace(medicine.Name) == "" {
		return fmt.Errorf("medicine name is required")
	}
	if medicine.Quantity < 0 {
		return fmt.Errorf("medicine quantity cannot be negative")
	}

	now := s.timeSource.Now()
	if medicine.CreatedAt.IsZero() {
		medicine.CreatedAt = now
	}
	medicine.UpdatedAt = now

	if err := s.db.SaveMedicine(medicine); err != nil {
		return fmt.Errorf("saving medicine: %w", err)
	}
	return nil
}

// ListMedicines returns the current inventory
func (s *Service) ListMedicines() ([]*Medicine, error) {
	medicines, err := s.db.ListMedicines()
	if err != nil {
		return nil, fmt.Errorf("listing medicines: %w", err)
	}
	return medicines, nil
}

// ListOrders returns all procurement orders
func (s *Service) ListOrders() ([]*Order, error) {
	orders, err := s.db.ListOrders()
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (s *Service) GetOrder(id string) (*Order, error) {
	order, err := s.db.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}
	return order, nil
}

var validOrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusCompleted:  true,
	OrderStatusCancelled:  true,
}

// UpdateOrderStatus advances an order through its lifecycle
func (s *Service) UpdateOrderStatus(id, status string) (*Order, error) {
	if !validOrderStatuses[status] {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	order, err := s.db.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	order.Status = status
	order.UpdatedAt = s.timeSource.Now()
	if err := s.db.SaveOrder(order); err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}
	return order, nil
}

// RenderOrderForm produces the printable order form PDF for an order
func (s *Service) RenderOrderForm(id string) ([]byte, error) {
	order, err := s.db.GetOrder(id)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	doc, err := s.renderer.RenderOrderForm(order)
	if err != nil {
		return nil, fmt.Errorf("rendering order form: %w", err)
	}
	return doc, nil
}

// UploadReport stores a PDF report for later keyword search
func (s *Service) UploadReport(filename string, data []byte) (string, error) {
	cleanFilename := sanitizeFilename(filename)
	if !strings.EqualFold(filepath.Ext(cleanFilename), ".pdf") {
		return "", fmt.Errorf("only PDF reports are supported")
	}

	savedPath, err := s.reports.Save(cleanFilename, data)
	if err != nil {
		return "", fmt.Errorf("saving report: %w", err)
	}
	return savedPath, nil
}

// SearchReports scans stored PDF reports for a keyword and returns one
// match per page with a short context snippet. Reports that cannot be
// read are skipped, not fatal.
func (s *Service) SearchReports(keyword string) ([]ReportMatch, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("search keyword is required")
	}

	filenames, err := s.reports.List()
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	matches := []ReportMatch{}
	for _, filename := range filenames {
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			continue
		}

		data, err := s.reports.Get(filename)
		if err != nil {
			slog.Warn("Could not read report", "filename", filename, "error", err)
			continue
		}

		pages, err := s.pdfText(data)
		if err != nil {
			slog.Warn("Could not process report", "filename", filename, "error", err)
			continue
		}

		for i, page := range pages {
			if strings.Contains(strings.ToLower(page), strings.ToLower(keyword)) {
				matches = append(matches, ReportMatch{
					Filename: filename,
					Page:     i + 1,
					Context:  contextSnippet(page, keyword),
				})
			}
		}
	}
	return matches, nil
}

// contextSnippet returns up to 50 characters of surrounding text around
// the first occurrence of keyword.
func contextSnippet(text, keyword string) string {
	pos := strings.Index(strings.ToLower(text), strings.ToLower(keyword))
	if pos < 0 {
		return ""
	}

	start := pos - 50
	if start < 0 {
		start = 0
	}
	end := pos + len(keyword) + 50
	if end > len(text) {
		end = len(text)
	}
	return "..." + text[start:end] + "..."
}

// RecommendAlternatives asks the advisor for inventory alternatives to a
// medicine. Fails when no recommendation backend is configured.
func (s *Service) RecommendAlternatives(ctx context.Context, medicine string) (string, error) {
	if s.advisor == nil {
		return "", fmt.Errorf("recommendations are not available: no advisor configured")
	}

	medicines, err := s.db.ListMedicines()
	if err != nil {
		return "", fmt.Errorf("listing medicines: %w", err)
	}

	inventory := make([]string, 0, len(medicines))
	for _, med := range medicines {
		if med.Dosage != "" {
			inventory = append(inventory, fmt.Sprintf("%s (%s)", med.Name, med.Dosage))
		} else {
			inventory = append(inventory, med.Name)
		}
	}

	recommendation, err := s.advisor.Recommend(ctx, medicine, inventory)
	if err != nil {
		return "", fmt.Errorf("getting recommendations: %w", err)
	}
	return recommendation, nil
}
