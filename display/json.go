package display

import (
	"encoding/json"
)

// MarshalJSON marshals values as indented JSON for command output.
func MarshalJSON(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
