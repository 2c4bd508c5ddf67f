// ABOUTME: HTTP API handlers for creature records
// ABOUTME: Maps list/get/category/add/update/delete onto the records service

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/2389/bestiary/internal/records"
	"github.com/2389/bestiary/internal/store"
)

// degradedWarning is attached to read responses produced while the store was failing
const degradedWarning = `199 bestiary "store unavailable"`

// registerRecordRoutes wires the records API onto mux
func (g *Gateway) registerRecordRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /records", g.handleListRecords)
	mux.HandleFunc("GET /records/{id}", g.handleGetRecord)
	mux.HandleFunc("GET /records/category/{category}", g.handleListByCategory)
	mux.HandleFunc("POST /records", g.handleAddRecord)
	mux.HandleFunc("PUT /records/{id}", g.handleUpdateRecord)
	mux.HandleFunc("DELETE /records/{id}", g.handleDeleteRecord)
}

// handleListRecords handles GET /records
func (g *Gateway) handleListRecords(w http.ResponseWriter, r *http.Request) {
	listing := g.records.ListAll(r.Context())
	markDegraded(w, listing.Degraded)
	g.writeJSON(w, http.StatusOK, listing.Records)
}

// handleGetRecord handles GET /records/{id}
func (g *Gateway) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := g.parseID(w, r)
	if !ok {
		return
	}

	lookup := g.records.Get(r.Context(), id)
	markDegraded(w, lookup.Degraded)
	if !lookup.Found() {
		g.sendJSONError(w, http.StatusNotFound, "record not found")
		return
	}
	g.writeJSON(w, http.StatusOK, lookup.Record)
}

// handleListByCategory handles GET /records/category/{category}.
// An empty match is a 404 with a message naming the category.
func (g *Gateway) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := norm.NFC.String(r.PathValue("category"))

	listing := g.records.ListByCategory(r.Context(), category)
	markDegraded(w, listing.Degraded)
	if len(listing.Records) == 0 {
		g.sendJSONError(w, http.StatusNotFound, "no records found with type: "+category)
		return
	}
	g.writeJSON(w, http.StatusOK, listing.Records)
}

// handleAddRecord handles POST /records.
// Any id in the body is ignored; the service assigns the next sequential id.
func (g *Gateway) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if err := decodeBody(r, &rec); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := g.records.Add(r.Context(), &rec)
	if errors.Is(err, store.ErrDuplicateID) {
		g.sendJSONError(w, http.StatusConflict, "record id already taken, retry")
		return
	}
	if err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/records/%d", created.ID))
	g.writeJSON(w, http.StatusCreated, created)
}

// handleUpdateRecord handles PUT /records/{id}.
// Only fields present in the body are changed; updating a missing id still succeeds.
// The response echoes only the updatable fields that were present, so an id or
// unknown keys in the body are not returned.
func (g *Gateway) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := g.parseID(w, r)
	if !ok {
		return
	}

	var patch records.Patch
	if err := decodeBody(r, &patch); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := g.records.Update(r.Context(), id, patch); err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	g.writeJSON(w, http.StatusOK, patch)
}

// handleDeleteRecord handles DELETE /records/{id}
func (g *Gateway) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := g.parseID(w, r)
	if !ok {
		return
	}

	if err := g.records.Delete(r.Context(), id); err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseID extracts the {id} path value, writing a 400 when it is not an integer
func (g *Gateway) parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid record id: "+raw)
		return 0, false
	}
	return id, true
}

// decodeBody decodes exactly one JSON value from the request body.
// Anything after it, including a second value, is an error.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func markDegraded(w http.ResponseWriter, degraded bool) {
	if degraded {
		w.Header().Set("Warning", degradedWarning)
	}
}

// writeJSON writes v with the given status
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response with the given status code and message.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
