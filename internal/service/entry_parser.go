package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/formhub/backend/pkg/wordpress"
)

// ParsedFields are the convenience fields extracted from a raw remote
// entry. Every member is best effort and may be empty.
type ParsedFields struct {
	SubmitterName  string
	SubmitterEmail string
	Subject        string
	Message        string
	SubmittedAt    time.Time
}

// Timestamp layouts seen in remote entry payloads. The plugin emits MySQL
// style datetimes; some installs return RFC 3339.
var entryTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseEntry extracts convenience fields from a raw remote entry. It never
// fails: a field that is missing or malformed stays empty, an unparsable
// timestamp falls back to now. The cleaned raw payload is returned
// alongside so no information is dropped even when parsing is partial.
func ParseEntry(entry wordpress.Entry, now func() time.Time) (ParsedFields, map[string]any) {
	raw := decodeResponse(entry.Response)

	// Plugin-internal bookkeeping keys are underscore-prefixed.
	clean := make(map[string]any, len(raw))
	for k, v := range raw {
		if !strings.HasPrefix(k, "_") {
			clean[k] = v
		}
	}

	var p ParsedFields
	if names, ok := raw["names"].(map[string]any); ok {
		first, _ := names["first_name"].(string)
		last, _ := names["last_name"].(string)
		p.SubmitterName = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	} else if name, ok := raw["name"].(string); ok {
		p.SubmitterName = name
	}
	p.SubmitterEmail, _ = raw["email"].(string)
	p.Subject, _ = raw["subject"].(string)
	p.Message, _ = raw["message"].(string)
	p.SubmittedAt = parseEntryTime(entry.CreatedAt, now)
	return p, clean
}

// decodeResponse tolerates both payload shapes: a JSON object, or a
// JSON-encoded string holding one. Anything else yields an empty map.
func decodeResponse(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil && m != nil {
		return m
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &m); err == nil && m != nil {
			return m
		}
	}
	return map[string]any{}
}

func parseEntryTime(value string, now func() time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value != "" {
		for _, layout := range entryTimeLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC()
			}
		}
	}
	return now().UTC()
}
