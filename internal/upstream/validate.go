package upstream

import (
	"encoding/json"
	"net/http"
)

// Validator decides whether a raw upstream response counts as usable.
// Implementations must be side-effect free.
type Validator func(status int, body []byte) bool

// JSONObject accepts a 200 response whose body parses as a JSON object.
// Several mirrors serve HTML error pages with a 200 status; those fail the
// parse and are rejected here rather than handed to callers.
func JSONObject(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}
	var doc map[string]json.RawMessage
	return json.Unmarshal(body, &doc) == nil && doc != nil
}

// JSONArray accepts a 200 response whose body parses as a JSON array.
func JSONArray(status int, body []byte) bool {
	if status != http.StatusOK {
		return false
	}
	var doc []json.RawMessage
	return json.Unmarshal(body, &doc) == nil && doc != nil
}

// ForCapability returns the validator for a capability's expected payload
// shape. Invidious search answers with an array of results; every other
// capability answers with a document object.
func ForCapability(cap Capability) Validator {
	if cap == CapSearch {
		return JSONArray
	}
	return JSONObject
}
