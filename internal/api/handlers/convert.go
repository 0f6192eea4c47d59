// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/internal/events"
	"github.com/wingedpig/ips2crash/internal/ips"
)

// ReportIDHeader carries the ID of a stored conversion.
const ReportIDHeader = "X-Report-ID"

// ConvertHandler converts uploaded IPS documents.
type ConvertHandler struct {
	store   *crashes.Manager
	bus     events.EventBus
	maxBody int64
	log     zerolog.Logger
}

// NewConvertHandler creates a new convert handler. store may be nil, in which
// case storing is refused. bus may be nil. maxBody <= 0 disables the upload
// limit.
func NewConvertHandler(store *crashes.Manager, bus events.EventBus, maxBody int64, log zerolog.Logger) *ConvertHandler {
	return &ConvertHandler{store: store, bus: bus, maxBody: maxBody, log: log}
}

// Convert returns the crash log for the IPS document in the request body.
// POST /api/v1/convert[?store=1]
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	store, _ := strconv.ParseBool(r.URL.Query().Get("store"))
	if store && h.store == nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "report store not configured")
		return
	}

	doc, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	report, err := ips.Decode(doc)
	if err != nil {
		events.Emit(r.Context(), h.bus, events.SourceAPI, events.EventConversionFailed, map[string]interface{}{
			"error": err.Error(),
		})
		h.writeConvertError(w, err)
		return
	}
	text := report.Render()

	view := report.View()
	events.Emit(r.Context(), h.bus, events.SourceAPI, events.EventReportConverted, map[string]interface{}{
		"incident_id": view.IncidentID,
		"process":     view.Process,
		"size":        len(text),
	})

	if store {
		id, err := h.store.Save(text)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, ErrInternalError, "failed to store report: "+err.Error())
			return
		}
		h.log.Info().Str("id", id).Msg("report stored")
		events.Emit(r.Context(), h.bus, events.SourceAPI, events.EventReportStored, map[string]interface{}{
			"id":          id,
			"incident_id": view.IncidentID,
		})
		w.Header().Set(ReportIDHeader, id)
	}

	WriteText(w, http.StatusOK, text)
}

// Inspect returns the resolved view of the IPS document in the request body.
// POST /api/v1/inspect
func (h *ConvertHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.readDocument(w, r)
	if !ok {
		return
	}

	report, err := ips.Decode(doc)
	if err != nil {
		h.writeConvertError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report.Inspect())
}

// readDocument reads the request body, writing the error response itself
// when it returns false.
func (h *ConvertHandler) readDocument(w http.ResponseWriter, r *http.Request) (string, bool) {
	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, ErrPayloadTooLarge,
				fmt.Sprintf("document exceeds %d bytes", tooLarge.Limit))
			return "", false
		}
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "failed to read body: "+err.Error())
		return "", false
	}

	return string(data), true
}

func (h *ConvertHandler) writeConvertError(w http.ResponseWriter, err error) {
	if errors.Is(err, ips.ErrInvalidFormat) {
		h.log.Debug().Err(err).Msg("rejected document")
		WriteError(w, http.StatusUnprocessableEntity, ErrInvalidFormat, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
}
