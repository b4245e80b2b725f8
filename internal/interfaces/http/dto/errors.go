package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeMalformedKey = "ERR_MALFORMED_KEY"
	ErrCodeBadChecksum  = "ERR_CHECKSUM_MISMATCH"
	ErrCodeMalformedXML = "ERR_MALFORMED_XML"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeDuplicateDocument   = "ERR_DUPLICATE_DOCUMENT"
)

// State machine error codes
const (
	ErrCodeInvalidTransition = "ERR_INVALID_TRANSITION"
	ErrCodeAlreadyTerminal   = "ERR_ALREADY_TERMINAL"
	ErrCodePollInProgress    = "ERR_POLL_IN_PROGRESS"
)

// Business rule error codes
const (
	ErrCodeInvalidDocument       = "ERR_INVALID_DOCUMENT"
	ErrCodeJustificationRequired = "ERR_JUSTIFICATION_REQUIRED"
	ErrCodeReasonRequired        = "ERR_REASON_REQUIRED"
)

// Upstream error codes
const (
	ErrCodeSefazUnavailable = "ERR_SEFAZ_UNAVAILABLE"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeMalformedKey: http.StatusBadRequest,
	ErrCodeBadChecksum:  http.StatusBadRequest,
	ErrCodeMalformedXML: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateDocument:   http.StatusConflict,

	ErrCodeInvalidTransition: http.StatusConflict,
	ErrCodeAlreadyTerminal:   http.StatusConflict,
	ErrCodePollInProgress:    http.StatusConflict,

	ErrCodeInvalidDocument:       http.StatusUnprocessableEntity,
	ErrCodeJustificationRequired: http.StatusUnprocessableEntity,
	ErrCodeReasonRequired:        http.StatusUnprocessableEntity,

	ErrCodeSefazUnavailable: http.StatusBadGateway,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainCodeMapping translates domain error codes to API error codes
var DomainCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"DUPLICATE_DOCUMENT":     ErrCodeDuplicateDocument,
	"MALFORMED_KEY":          ErrCodeMalformedKey,
	"CHECKSUM_MISMATCH":      ErrCodeBadChecksum,
	"MALFORMED_XML":          ErrCodeMalformedXML,
	"INVALID_DOCUMENT":       ErrCodeInvalidDocument,
	"INVALID_TRANSITION":     ErrCodeInvalidTransition,
	"ALREADY_TERMINAL":       ErrCodeAlreadyTerminal,
	"POLL_IN_PROGRESS":       ErrCodePollInProgress,
	"JUSTIFICATION_REQUIRED": ErrCodeJustificationRequired,
	"REASON_REQUIRED":        ErrCodeReasonRequired,
	"SEFAZ_UNAVAILABLE":      ErrCodeSefazUnavailable,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API form. Codes
// without an explicit mapping that look like field validation failures
// (INVALID_CNPJ, INVALID_EVENT_TYPE, ...) collapse to ERR_VALIDATION;
// ALREADY_* state complaints collapse to ERR_CONFLICT. Anything else
// passes through unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainCodeMapping[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	if strings.HasPrefix(code, "ALREADY_") {
		return ErrCodeConflict
	}
	return code
}
