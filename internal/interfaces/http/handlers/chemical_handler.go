package handlers

import (
	"net/http"
	"strings"

	"github.com/turtacn/chemsafe/internal/application/lookup"
	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
)

// ChemicalHandler serves chemical lookups.
type ChemicalHandler struct {
	svc    lookup.Service
	logger logging.Logger
}

// NewChemicalHandler creates a ChemicalHandler.
func NewChemicalHandler(svc lookup.Service, logger logging.Logger) *ChemicalHandler {
	return &ChemicalHandler{svc: svc, logger: logging.OrNop(logger).Named("chemical_handler")}
}

// SectionsResponse is the body of GET /chemicals/{name}/sections.
type SectionsResponse struct {
	MainName    string             `json:"main_name"`
	DisplayName string             `json:"display_name"`
	Sections    []chemical.Section `json:"sections"`
}

// ProceduresResponse is the body of GET /chemicals/{name}/procedures.
type ProceduresResponse struct {
	MainName      string               `json:"main_name"`
	DisplayName   string               `json:"display_name"`
	EmergencyType string               `json:"emergency_type,omitempty"`
	Procedures    []chemical.StepGroup `json:"procedures"`
}

// AliasesResponse is the body of GET /aliases/{name}.
type AliasesResponse struct {
	Name     string   `json:"name"`
	MainName string   `json:"main_name"`
	Names    []string `json:"names"`
}

func (h *ChemicalHandler) query(r *http.Request) lookup.Query {
	q := r.URL.Query()
	return lookup.Query{
		Name:          pathParam(r, "name"),
		ID:            strings.TrimSpace(q.Get("id")),
		EmergencyType: strings.TrimSpace(q.Get("type")),
	}
}

// Get handles GET /api/v1/chemicals/{name}?id=&type=.
func (h *ChemicalHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Lookup(r.Context(), h.query(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Sections handles GET /api/v1/chemicals/{name}/sections.
func (h *ChemicalHandler) Sections(w http.ResponseWriter, r *http.Request) {
	q := h.query(r)
	q.EmergencyType = ""
	report, err := h.svc.Lookup(r.Context(), q)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SectionsResponse{
		MainName:    report.MainName,
		DisplayName: report.DisplayName,
		Sections:    report.Sections,
	})
}

// Procedures handles GET /api/v1/chemicals/{name}/procedures?type=.
func (h *ChemicalHandler) Procedures(w http.ResponseWriter, r *http.Request) {
	q := h.query(r)
	report, err := h.svc.Lookup(r.Context(), q)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ProceduresResponse{
		MainName:      report.MainName,
		DisplayName:   report.DisplayName,
		EmergencyType: q.EmergencyType,
		Procedures:    report.Procedures,
	})
}

// Aliases handles GET /api/v1/aliases/{name}.
func (h *ChemicalHandler) Aliases(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	writeJSON(w, http.StatusOK, AliasesResponse{
		Name:     name,
		MainName: h.svc.GetMainName(name),
		Names:    h.svc.GetAllPossibleNames(name),
	})
}
