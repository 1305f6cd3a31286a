package service

import (
	"fmt"
	"strings"
)

const (
	// DefaultSeverity is returned when no severity field can be found.
	DefaultSeverity = "low"

	// DefaultMessage is returned when no message field can be found.
	DefaultMessage = "Security event detected"

	// maxMessageLength bounds extracted messages for the event list view.
	maxMessageLength = 200
)

// severityFields and messageFields are probed in order; the first non-empty
// value wins. Dotted names traverse nested objects.
var (
	severityFields = []string{
		"threat.severity", "severity", "level", "priority",
		"event.severity", "alert.severity", "log.level",
	}
	messageFields = []string{
		"message", "description", "event.original",
		"log.message", "event.description", "summary",
	}
)

// FieldExtractor pulls a severity label and a human-readable message out of
// heterogeneous per-vendor log records.
type FieldExtractor struct{}

// NewFieldExtractor creates a field extractor.
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

// ExtractSeverity probes the record for a severity label. The result is
// lower-cased; records with no recognizable severity yield DefaultSeverity.
func (e *FieldExtractor) ExtractSeverity(record map[string]interface{}) string {
	if v, ok := probeFields(record, severityFields); ok {
		return strings.ToLower(v)
	}
	return DefaultSeverity
}

// ExtractMessage probes the record for a message, truncated to a bounded
// length. Records with no recognizable message yield DefaultMessage.
func (e *FieldExtractor) ExtractMessage(record map[string]interface{}) string {
	if v, ok := probeFields(record, messageFields); ok {
		return truncate(v, maxMessageLength)
	}
	return DefaultMessage
}

// probeFields returns the first non-empty candidate value, stringified.
func probeFields(record map[string]interface{}, candidates []string) (string, bool) {
	for _, field := range candidates {
		value, ok := lookupPath(record, field)
		if !ok || value == nil {
			continue
		}
		s := fmt.Sprintf("%v", value)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

// lookupPath resolves a possibly dotted field path against a nested record.
// Missing keys or non-traversable intermediate values simply report not-found.
func lookupPath(record map[string]interface{}, path string) (interface{}, bool) {
	keys := strings.Split(path, ".")
	var current interface{} = record
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
