package pipeline

import (
	"encoding/json"
	"fmt"
)

// DecodeRawEvents parses a raw event document into a slice of loosely typed
// event maps. Two shapes are accepted: a top-level JSON array of events, or an
// object wrapping the array under "items" (the shape the timeline API
// paginates with).
func DecodeRawEvents(data []byte) ([]map[string]interface{}, error) {
	var direct []map[string]interface{}
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("DecodeRawEvents: document is neither an event array nor an items wrapper: %w", err)
	}
	if wrapped.Items == nil {
		return nil, fmt.Errorf("DecodeRawEvents: document has no 'items' array")
	}

	return wrapped.Items, nil
}
