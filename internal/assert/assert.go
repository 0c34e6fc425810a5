// Package assert holds invariant checks that panic on violation.
// They guard programmer errors, never user input.
package assert

import (
	"fmt"
)

// Length panics unless value is exactly expected bytes long
func Length(value string, expected int) {
	if len(value) != expected {
		msg := fmt.Sprintf("assert.Length expected %d actual %d (%q)", expected, len(value), value)
		panic(msg)
	}
}
