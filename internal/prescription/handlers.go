package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/zombor/rx-assistant/internal/extraction"
)

// processTimeout bounds one full pipeline run. Extraction is the only
// blocking step and the recognizers inherit this deadline through the
// request context.
const processTimeout = 2 * time.Minute

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes a JSON error body
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// readUploadedFile pulls the "file" part out of a multipart upload.
// The 50MB cap accommodates high-resolution phone photos.
func readUploadedFile(w http.ResponseWriter, r *http.Request) (filename string, data []byte, contentType string, ok bool) {
	maxFormSize := int64(50 << 20) // 50MB
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return "", nil, "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		jsonError(w, "No file provided", http.StatusBadRequest)
		return "", nil, "", false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading uploaded file", "error", err)
		jsonError(w, "Error reading file", http.StatusBadRequest)
		return "", nil, "", false
	}

	contentType = header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromExtension(header.Filename)
	}

	return header.Filename, data, contentType, true
}

// contentTypeFromExtension guesses a MIME type when the browser sent none
func contentTypeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic", ".heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// handleUploadPrescription accepts a prescription image and runs the
// full scan/parse/match/order pipeline on it
func (s *Server) handleUploadPrescription(w http.ResponseWriter, r *http.Request) {
	filename, data, contentType, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), processTimeout)
	defer cancel()

	result, err := s.service.ProcessPrescription(ctx, filename, data, contentType)
	if err != nil {
		var extractErr *extraction.Error
		if errors.As(err, &extractErr) {
			slog.Warn("Prescription text extraction failed", "filename", filename, "error", err)
			jsonError(w, "Could not read any text from the uploaded prescription", http.StatusUnprocessableEntity)
			return
		}
		slog.Error("Error processing prescription", "filename", filename, "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListPrescriptions returns all processed prescriptions
func (s *Server) handleListPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := s.service.ListPrescriptions()
	if err != nil {
		slog.Error("Error listing prescriptions", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, prescriptions)
}

// handleGetPrescription returns one prescription
func (s *Server) handleGetPrescription(w http.ResponseWriter, r *http.Request) {
	prescription, err := s.service.GetPrescription(r.PathValue("id"))
	if err != nil {
		corsError(w, "Prescription not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, prescription)
}

// handleDeletePrescription removes a prescription and its stored image
func (s *Server) handleDeletePrescription(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePrescription(r.PathValue("id")); err != nil {
		corsError(w, "Prescription not found", http.StatusNotFound)
		return
	}
	setCORSHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPrescriptionFile serves the original uploaded image
func (s *Server) handleGetPrescriptionFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetPrescriptionFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "Prescription file not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleListMedicines returns the current inventory
func (s *Server) handleListMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := s.service.ListMedicines()
	if err != nil {
		slog.Error("Error listing medicines", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, medicines)
}

// handleAddMedicine inserts or updates an inventory entry
func (s *Server) handleAddMedicine(w http.ResponseWriter, r *http.Request) {
	var medicine Medicine
	if err := json.NewDecoder(r.Body).Decode(&medicine); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.AddMedicine(&medicine); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, &medicine)
}

// handleRecommendations returns alternative medicine suggestions
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), processTimeout)
	defer cancel()

	recommendation, err := s.service.RecommendAlternatives(ctx, r.PathValue("name"))
	if err != nil {
		slog.Error("Error getting recommendations", "error", err)
		jsonError(w, "Recommendations are not available", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"recommendation": recommendation})
}

// handleListOrders returns all procurement orders
func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.service.ListOrders()
	if err != nil {
		slog.Error("Error listing orders", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// handleGetOrder returns one order
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.service.GetOrder(r.PathValue("id"))
	if err != nil {
		corsError(w, "Order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleUpdateOrderStatus advances an order through its lifecycle
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := s.service.UpdateOrderStatus(r.PathValue("id"), body.Status)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleOrderForm serves the printable order form PDF
func (s *Server) handleOrderForm(w http.ResponseWriter, r *http.Request) {
	doc, err := s.service.RenderOrderForm(r.PathValue("id"))
	if err != nil {
		slog.Error("Error rendering order form", "error", err)
		corsError(w, "Order not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="Medicine_Order.pdf"`)
	w.Write(doc)
}

// handleUploadReport stores a PDF report for keyword search
func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	filename, data, _, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	savedPath, err := s.service.UploadReport(filename, data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"filename": savedPath})
}

// handleSearchReports searches stored PDF reports for a keyword
func (s *Server) handleSearchReports(w http.ResponseWriter, r *http.Request) {
	matches, err := s.service.SearchReports(r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
