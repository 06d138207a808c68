// Package annotation defines the timecoded analysis result model and the
// capability router that turns model function calls into annotation lists.
package annotation

import "strings"

// Annotation is one timecoded record of an analysis result. At least one of
// Text, Objects, or Value is set, depending on which capability produced it.
type Annotation struct {
	Time    string   `json:"time"`
	Text    string   `json:"text,omitempty"`
	Objects []string `json:"objects,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

// List is an ordered annotation sequence. Order is model output order, not
// necessarily chronological; display order is meaningful.
type List []Annotation

// UnescapeText undoes the literal backslash-quote sequence the model emits
// inside string arguments. Applied to every text field regardless of which
// capability handled the call.
func UnescapeText(s string) string {
	return strings.ReplaceAll(s, `\'`, `'`)
}
