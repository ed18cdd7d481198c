package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fieldops/salesrecon/modules/recon/domain"
	reconservices "github.com/fieldops/salesrecon/modules/recon/services"
	"github.com/fieldops/salesrecon/pkg/application"
	"github.com/fieldops/salesrecon/pkg/configuration"
	"github.com/fieldops/salesrecon/pkg/sheets"
)

type ReconAPIController struct {
	app       application.Application
	recon     *reconservices.ReconService
	apiPrefix string
}

func NewReconAPIController(app application.Application, recon *reconservices.ReconService) application.Controller {
	return &ReconAPIController{
		app:       app,
		recon:     recon,
		apiPrefix: "/recon/api",
	}
}

func (c *ReconAPIController) Key() string {
	return c.apiPrefix
}

func (c *ReconAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/diff", c.Diff).Methods(http.MethodPost)
	api.HandleFunc("/apply", c.Apply).Methods(http.MethodPost)
	api.HandleFunc("/scan", c.Scan).Methods(http.MethodPost)
	api.HandleFunc("/integrity", c.Integrity).Methods(http.MethodPost)
	api.HandleFunc("/roster", c.Roster).Methods(http.MethodGet)
}

// Diff accepts a multipart upload with the "secondary" and "ledger"
// workbooks, reconciles them against the roster and returns the diff report.
func (c *ReconAPIController) Diff(w http.ResponseWriter, r *http.Request) {
	secondaryRows, ledgerRows, ok := c.decodeUploads(w, r)
	if !ok {
		return
	}

	result := c.recon.ExtractDiff(c.recon.Store().Records(), secondaryRows, ledgerRows)
	writeJSON(w, http.StatusOK, result)
}

type applyRequest struct {
	Items []*domain.DiffItem `json:"items"`
}

type applyResponse struct {
	ChangedCount int `json:"changed_count"`
}

// Apply consumes the operator-confirmed items and writes them into the
// roster. A persistence failure fails the batch; memory already reflects the
// applied items and a re-run of the diff is the retry path.
func (c *ReconAPIController) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	changed, err := c.recon.ApplyResolutions(r.Context(), req.Items)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "PERSIST_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, applyResponse{ChangedCount: changed})
}

type scanResponse struct {
	Stats     domain.ScanStats      `json:"stats"`
	Integrity domain.IntegrityAlert `json:"integrity"`
	Rows      []*domain.LedgerRow   `json:"rows"`
}

// Scan runs organic change detection and attribution fill over an uploaded
// ledger and returns the mutated rows together with scan and integrity
// counters. An optional as_of_month form field names the reporting month;
// it defaults to the current month.
func (c *ReconAPIController) Scan(w http.ResponseWriter, r *http.Request) {
	secondaryRows, ledgerRows, ok := c.decodeUploads(w, r)
	if !ok {
		return
	}

	asOfMonth := int(time.Now().Month())
	if v := r.FormValue("as_of_month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeAPIError(w, http.StatusBadRequest, "INVALID_MONTH", "as_of_month must be 1-12")
			return
		}
		asOfMonth = m
	}

	stats, err := c.recon.ScanAndFillLedger(r.Context(), ledgerRows, reconservices.BuildCodeTable(secondaryRows), asOfMonth)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "SCAN_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Stats:     stats,
		Integrity: c.recon.CheckIntegrity(ledgerRows),
		Rows:      ledgerRows,
	})
}

// Integrity reports attribution gaps for an uploaded ledger without mutating
// anything.
func (c *ReconAPIController) Integrity(w http.ResponseWriter, r *http.Request) {
	_, ledgerRows, ok := c.decodeUploads(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.recon.CheckIntegrity(ledgerRows))
}

func (c *ReconAPIController) Roster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.recon.Store().Records())
}

// decodeUploads parses the multipart form. The ledger part is required for
// scan/integrity and diff; the secondary part is optional for scan.
func (c *ReconAPIController) decodeUploads(w http.ResponseWriter, r *http.Request) ([]domain.SecondaryRow, []*domain.LedgerRow, bool) {
	conf := configuration.Use()
	if err := r.ParseMultipartForm(conf.MaxUploadSize); err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_UPLOAD", "expected a multipart upload")
		return nil, nil, false
	}

	var secondaryRows []domain.SecondaryRow
	if f, _, err := r.FormFile("secondary"); err == nil {
		defer func() { _ = f.Close() }()
		rows, err := sheets.ReadSecondary(f)
		if err != nil {
			writeAPIError(w, http.StatusUnprocessableEntity, "BAD_SECONDARY", err.Error())
			return nil, nil, false
		}
		secondaryRows = rows
	}

	var ledgerRows []*domain.LedgerRow
	if f, _, err := r.FormFile("ledger"); err == nil {
		defer func() { _ = f.Close() }()
		rows, err := sheets.ReadLedger(f)
		if err != nil {
			writeAPIError(w, http.StatusUnprocessableEntity, "BAD_LEDGER", err.Error())
			return nil, nil, false
		}
		ledgerRows = rows
	} else {
		writeAPIError(w, http.StatusBadRequest, "MISSING_LEDGER", "ledger workbook is required")
		return nil, nil, false
	}

	return secondaryRows, ledgerRows, true
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
