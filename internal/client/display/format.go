package display

import (
	"bytes"
	"encoding/json"
)

// Indent pretty prints JSON, returning the input unchanged when it is not JSON
func Indent(data []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}
