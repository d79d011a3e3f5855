package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ProblemContentType is the media type every error response is served with.
const ProblemContentType = "application/problem+json"

// DefaultProblemType is used when no upstream type is known.
const DefaultProblemType = "about:blank"

// Problem is the single error shape returned to the browser.
type Problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail"`
	Instance  string `json:"instance"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// NewProblem fills in the defaults for empty fields.
func NewProblem(status int, problemType, title, detail, instance, requestID string, now time.Time) Problem {
	if problemType == "" {
		problemType = DefaultProblemType
	}
	if title == "" {
		title = StatusTitle(status)
	}
	if detail == "" {
		detail = StatusDetail(status)
	}
	return Problem{
		Type:      problemType,
		Title:     title,
		Status:    status,
		Detail:    detail,
		Instance:  instance,
		RequestID: requestID,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// ExtractionRule is a dotted path into an upstream JSON error body.
type ExtractionRule string

// Rules are tried in order; the first non-empty string wins. New upstream error
// shapes are supported by appending rules here.
var (
	TitleRules  = []ExtractionRule{"title", "message", "error", "error.message", "detail"}
	DetailRules = []ExtractionRule{"detail", "message", "error.message", "error", "title"}
	TypeRules   = []ExtractionRule{"type", "error.code"}
)

// ProblemFields are the parts of an upstream error body the bridge keeps.
type ProblemFields struct {
	Type   string
	Title  string
	Detail string
}

// ParseProblemFields applies the extraction rules to an upstream body. Bodies
// that are not JSON objects yield empty fields, so callers fall back to the
// status defaults and the raw upstream text is never echoed.
func ParseProblemFields(body []byte) ProblemFields {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ProblemFields{}
	}
	return ProblemFields{
		Type:   Extract(doc, TypeRules),
		Title:  Extract(doc, TitleRules),
		Detail: Extract(doc, DetailRules),
	}
}

// Extract returns the first non-empty string found by rules in doc.
func Extract(doc map[string]any, rules []ExtractionRule) string {
	for _, rule := range rules {
		if s := lookup(doc, string(rule)); s != "" {
			return s
		}
	}
	return ""
}

func lookup(doc map[string]any, path string) string {
	var cur any = doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}

var statusTitles = map[int]string{
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	409: "Conflict",
	413: "Payload Too Large",
	415: "Unsupported Media Type",
	422: "Unprocessable Entity",
	429: "Too Many Requests",
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
}

var statusDetails = map[int]string{
	400: "The request could not be processed",
	401: "Authentication is required",
	403: "You are not allowed to perform this action",
	404: "The requested resource was not found",
	409: "The request conflicts with the current state of the resource",
	413: "The request body is too large",
	415: "The request media type is not supported",
	422: "The request contains invalid data",
	429: "Too many requests, try again later",
	500: "An unexpected error occurred",
	502: "The signing service returned an invalid response",
	503: "The signing service is unavailable",
	504: "The signing service did not respond in time",
}

// StatusTitle is the generic title for an HTTP status.
func StatusTitle(status int) string {
	if t, ok := statusTitles[status]; ok {
		return t
	}
	if status >= 500 {
		return "Server Error"
	}
	return "Request Failed"
}

// StatusDetail is the generic human readable detail for an HTTP status.
func StatusDetail(status int) string {
	if d, ok := statusDetails[status]; ok {
		return d
	}
	if status >= 500 {
		return statusDetails[500]
	}
	return statusDetails[400]
}
