// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/internal/events"
)

// ReportsHandler handles stored-report API requests.
type ReportsHandler struct {
	manager *crashes.Manager
	bus     events.EventBus
}

// NewReportsHandler creates a new reports handler. bus may be nil.
func NewReportsHandler(mgr *crashes.Manager, bus events.EventBus) *ReportsHandler {
	return &ReportsHandler{manager: mgr, bus: bus}
}

// List returns summaries of all stored reports, newest first.
// GET /api/v1/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.manager.List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "failed to list reports: "+err.Error())
		return
	}
	if summaries == nil {
		summaries = []crashes.Summary{}
	}

	WriteJSON(w, http.StatusOK, summaries)
}

// Get returns the text of a stored report.
// GET /api/v1/reports/{id}
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := h.manager.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.Header().Set(ReportIDHeader, report.ID)
	WriteText(w, http.StatusOK, report.Text)
}

// Newest returns the text of the most recent report.
// GET /api/v1/reports/newest
func (h *ReportsHandler) Newest(w http.ResponseWriter, r *http.Request) {
	report, err := h.manager.Newest()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if report == nil {
		WriteError(w, http.StatusNotFound, ErrNotFound, "no reports stored")
		return
	}

	w.Header().Set(ReportIDHeader, report.ID)
	WriteText(w, http.StatusOK, report.Text)
}

// Delete removes a report by ID.
// DELETE /api/v1/reports/{id}
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.manager.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	events.Emit(r.Context(), h.bus, events.SourceAPI, events.EventReportDeleted, map[string]interface{}{"id": id})

	WriteJSON(w, http.StatusOK, map[string]string{"message": "report deleted", "id": id})
}

// Clear removes all reports.
// DELETE /api/v1/reports
func (h *ReportsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Clear(); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "failed to clear reports: "+err.Error())
		return
	}
	events.Emit(r.Context(), h.bus, events.SourceAPI, events.EventReportsCleared, nil)

	WriteJSON(w, http.StatusOK, map[string]string{"message": "all reports cleared"})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, crashes.ErrNotFound) {
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
}
