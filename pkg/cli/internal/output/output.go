// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/ohler55/ojg/pretty"
)

// JSON writes indented JSON to stdout.
func JSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Pretty returns data reformatted for human reading when it is valid JSON,
// or unchanged when it is not.
func Pretty(data []byte) string {
	val, err := oj.Parse(data)
	if err != nil {
		return string(data)
	}
	return pretty.JSON(val, 80.3)
}

// Warn prints a warning message to stderr.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
