package api

import (
	"fmt"
	"net/http"

	"github.com/Sternrassler/glp-lookup/pkg/export"
)

func (a *API) deviceLookup(w http.ResponseWriter, r *http.Request) {
	var body deviceBody
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := a.service.LookupDevices(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoDevices)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) deviceStream(w http.ResponseWriter, r *http.Request) {
	var body deviceBody
	if !decodeBody(w, r, &body) {
		return
	}

	events, err := a.service.StreamDevices(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoDevices)
		return
	}
	a.writeEventStream(w, r, events)
}

func (a *API) deviceExport(w http.ResponseWriter, r *http.Request) {
	var body deviceBody
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := a.service.LookupDevices(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoDevices)
		return
	}

	kind := export.ParseKind(body.Export)
	writeCSVHeaders(w, fmt.Sprintf("%s_devices.csv", kind))
	if kind == export.KindMissing {
		err = export.WriteMissing(w, export.MissingDeviceColumn, result.Missing)
	} else {
		err = export.WriteDevices(w, result.Devices, body.Columns)
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to write device export")
	}
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
}
