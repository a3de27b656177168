package schema

import (
	"encoding/json"
	"strings"
)

const nullToken = "\x00null"

// Dedupe collapses records sharing a unique-key tuple to one entry. Later
// occurrences overwrite earlier ones: in spreadsheet editing a repeated row is
// a correction of the one above it. The second result counts displaced records.
func Dedupe(records []Record, uniqueKey []string) ([]Record, int) {
	deduped := make([]Record, 0, len(records))
	index := make(map[string]int, len(records))
	duplicates := 0

	for _, record := range records {
		key := compositeKey(record, uniqueKey)
		if at, seen := index[key]; seen {
			deduped[at] = record
			duplicates++
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, record)
	}
	return deduped, duplicates
}

func compositeKey(record Record, uniqueKey []string) string {
	var b strings.Builder
	for i, name := range uniqueKey {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		value, ok := record[name]
		if !ok || value == nil {
			b.WriteString(nullToken)
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			b.WriteString(nullToken)
			continue
		}
		b.Write(encoded)
	}
	return b.String()
}
