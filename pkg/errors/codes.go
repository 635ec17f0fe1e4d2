package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Short aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Chemical lookup error codes
const (
	ErrCodeChemicalNotFound      ErrorCode = "CHEM_001"
	ErrCodeGraphUnavailable      ErrorCode = "CHEM_002"
	ErrCodeGraphMalformed        ErrorCode = "CHEM_003"
	ErrCodeSnapshotNotReady      ErrorCode = "CHEM_004"
	ErrCodeAliasStoreFailure     ErrorCode = "CHEM_005"
	ErrCodeReloadFailed          ErrorCode = "CHEM_006"
	ErrCodeReloadInProgress      ErrorCode = "CHEM_007"
	ErrCodeUnknownEmergencyType  ErrorCode = "CHEM_008"
	ErrCodeEventPublishFailed    ErrorCode = "CHEM_009"
	ErrCodeStorageObjectNotFound ErrorCode = "CHEM_010"
)

// Infrastructure aliases
const (
	CodeDatabaseError = ErrCodeDatabaseError
	CodeCacheError    = ErrCodeCacheError
	CodeStorageError  = ErrCodeExternalService
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeChemicalNotFound:      http.StatusNotFound,
	ErrCodeGraphUnavailable:      http.StatusServiceUnavailable,
	ErrCodeGraphMalformed:        http.StatusUnprocessableEntity,
	ErrCodeSnapshotNotReady:      http.StatusServiceUnavailable,
	ErrCodeAliasStoreFailure:     http.StatusInternalServerError,
	ErrCodeReloadFailed:          http.StatusConflict,
	ErrCodeReloadInProgress:      http.StatusConflict,
	ErrCodeUnknownEmergencyType:  http.StatusBadRequest,
	ErrCodeEventPublishFailed:    http.StatusInternalServerError,
	ErrCodeStorageObjectNotFound: http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeChemicalNotFound:      "no hazard data for chemical",
	ErrCodeGraphUnavailable:      "knowledge graph document unavailable",
	ErrCodeGraphMalformed:        "knowledge graph document malformed",
	ErrCodeSnapshotNotReady:      "knowledge graph not loaded",
	ErrCodeAliasStoreFailure:     "alias cache failure",
	ErrCodeReloadFailed:          "reload failed, previous data retained",
	ErrCodeReloadInProgress:      "reload already in progress",
	ErrCodeUnknownEmergencyType:  "unknown emergency type",
	ErrCodeEventPublishFailed:    "failed to publish event",
	ErrCodeStorageObjectNotFound: "storage object not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
