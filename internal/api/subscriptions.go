package api

import (
	"fmt"
	"net/http"

	"github.com/Sternrassler/glp-lookup/pkg/export"
)

func (a *API) subscriptionLookup(w http.ResponseWriter, r *http.Request) {
	var body subscriptionBody
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := a.service.LookupSubscriptions(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoKeys)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) subscriptionStream(w http.ResponseWriter, r *http.Request) {
	var body subscriptionBody
	if !decodeBody(w, r, &body) {
		return
	}

	events, err := a.service.StreamSubscriptions(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoKeys)
		return
	}
	a.writeEventStream(w, r, events)
}

func (a *API) subscriptionExport(w http.ResponseWriter, r *http.Request) {
	var body subscriptionBody
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := a.service.LookupSubscriptions(r.Context(), body.request())
	if err != nil {
		a.writeLookupError(w, r, err, msgNoKeys)
		return
	}

	kind := export.ParseKind(body.Export)
	writeCSVHeaders(w, fmt.Sprintf("%s_subscriptions.csv", kind))
	if kind == export.KindMissing {
		err = export.WriteMissing(w, export.MissingSubscriptionColumn, result.Missing)
	} else {
		err = export.WriteSubscriptions(w, result.Subscriptions, body.Columns)
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("Failed to write subscription export")
	}
}
