package bill

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DecodeRecord reads one stored bill. A field holding a value of the wrong
// type is left at its zero value and named in skipped; every other field is
// kept. It fails only when data is not a JSON object.
func DecodeRecord(data []byte) (b Bill, skipped []string, err error) {
	if err := json.Unmarshal(data, &b); err == nil {
		return b, nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Bill{}, nil, fmt.Errorf("decoding bill record: %w", err)
	}

	b = Bill{}
	for name, value := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{name: value})
		if err != nil {
			skipped = append(skipped, name)
			continue
		}
		if err := json.Unmarshal(single, &b); err != nil {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)
	return b, skipped, nil
}
