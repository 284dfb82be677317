// Package httpjson is the JSON request/response layer for API handlers.
//
// It decodes request bodies with a size cap, writes enveloped responses, and
// maps the apperr taxonomy to HTTP statuses in one place. Business-rule
// violations get descriptive messages; internal failures get a generic one.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/littlenest/littlenest/internal/app/system/apperr"
	"go.uber.org/zap"
)

// MaxBodyBytes caps JSON request bodies. Nothing in the API legitimately
// exceeds this.
const MaxBodyBytes = 1 << 20

// Decode reads a JSON body into dst, rejecting unknown fields and oversized
// payloads with a Validation error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid_json", "request body is not valid JSON", err)
	}
	return nil
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write sends a JSON response with the given status.
func Write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a 200 response with {"data": body}.
func OK(w http.ResponseWriter, body any) {
	Write(w, http.StatusOK, map[string]any{"data": body})
}

// Created sends a 201 response with {"data": body}.
func Created(w http.ResponseWriter, body any) {
	Write(w, http.StatusCreated, map[string]any{"data": body})
}

// Error maps err onto the wire. Validation/Conflict/Expired → 400 with the
// error's own code and message, NotFound → 404, everything else → 500 with a
// generic message (internal detail never leaks to clients).
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := StatusOf(err)

	code := apperr.CodeOf(err)
	message := "internal error"
	var ae *apperr.Error
	if status != http.StatusInternalServerError && errors.As(err, &ae) {
		message = ae.Message
	}
	if status == http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.String("code", code), zap.Error(err))
	}

	Write(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// StatusOf returns the HTTP status an error kind maps to.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Conflict, apperr.Expired:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
