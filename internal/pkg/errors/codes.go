package errors

import "net/http"

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes
const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1006
	ErrServiceUnavail  = 1008
	ErrTimeout         = 1009

	// Pipeline errors (2000-2999), one per stage
	ErrQueryGeneration   = 2000
	ErrSearchFailed      = 2001
	ErrCrawlFailed       = 2002
	ErrExtractionFailed  = 2003
	ErrEnrichmentFailed  = 2004
	ErrPersistenceFailed = 2005
	ErrLLMUnavailable    = 2006
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrTimeout:         {ErrTimeout, http.StatusGatewayTimeout, "Request timed out"},

	ErrQueryGeneration:   {ErrQueryGeneration, http.StatusInternalServerError, "Query generation failed"},
	ErrSearchFailed:      {ErrSearchFailed, http.StatusBadGateway, "Search failed"},
	ErrCrawlFailed:       {ErrCrawlFailed, http.StatusBadGateway, "Crawl failed"},
	ErrExtractionFailed:  {ErrExtractionFailed, http.StatusInternalServerError, "Extraction failed"},
	ErrEnrichmentFailed:  {ErrEnrichmentFailed, http.StatusInternalServerError, "Enrichment failed"},
	ErrPersistenceFailed: {ErrPersistenceFailed, http.StatusInternalServerError, "Persistence failed"},
	ErrLLMUnavailable:    {ErrLLMUnavailable, http.StatusServiceUnavailable, "Language model unavailable"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	return GetHTTPStatus(code) >= 500
}
