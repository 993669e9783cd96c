package source

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// Response is the decoded availability document. Numbers are kept as
// json.Number by Client so slot counts survive without float rounding.
type Response map[string]any

// Fields names the keys of the availability API contract.
type Fields struct {
	List      string // Top-level key holding the per-location records
	Location  string
	Slots     string
	StartDate string
	CreatedOn string
}

// DefaultFields returns the key names used by the slots v3 endpoint.
func DefaultFields() Fields {
	return Fields{
		List:      "slotDetails",
		Location:  "visa_location",
		Slots:     "slots",
		StartDate: "start_date",
		CreatedOn: "createdon",
	}
}

// Extract finds the first record whose location name contains target
// (case-insensitive) and normalizes it. It returns false when the list key is
// missing or nothing matches.
func Extract(resp Response, target string, fields Fields) (model.Observation, bool) {
	if resp == nil {
		return model.Observation{}, false
	}

	records, ok := resp[fields.List].([]any)
	if !ok {
		return model.Observation{}, false
	}

	needle := strings.ToUpper(target)
	for _, item := range records {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		name, _ := record[fields.Location].(string)
		if !strings.Contains(strings.ToUpper(name), needle) {
			continue
		}

		return model.Observation{
			Location:  name,
			Slots:     slotCount(record[fields.Slots]),
			StartDate: optionalString(record[fields.StartDate]),
			Checked:   optionalString(record[fields.CreatedOn]),
		}, true
	}

	return model.Observation{}, false
}

// slotCount coerces the reported count to a non-negative int, 0 when absent
// or unreadable.
func slotCount(v any) int {
	var n float64
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		n = f
	case float64:
		n = val
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		n = float64(i)
	default:
		return 0
	}

	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// optionalString keeps absent and null values absent. Non-string scalars are
// rendered as text so a present-but-odd value stays present.
func optionalString(v any) *string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return &val
	default:
		s := fmt.Sprint(val)
		return &s
	}
}
