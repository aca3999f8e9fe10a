package codec

import "strings"

// Sentinel is the control character that stands in for a line break inside a
// serialized note.
const Sentinel = '\x01'

var (
	flattener = strings.NewReplacer("\n", string(Sentinel))
	expander  = strings.NewReplacer(string(Sentinel), "\n")
)

// Flatten replaces every line break in s with Sentinel so s fits on one line.
func Flatten(s string) string { return flattener.Replace(s) }

// Expand is the inverse of Flatten.
func Expand(s string) string { return expander.Replace(s) }
