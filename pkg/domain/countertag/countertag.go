// Package countertag parses and formats the streak counter embedded in an
// activity name, e.g. "#042 Morning Run".
package countertag

import (
	"fmt"
	"regexp"
	"strconv"
)

// extractPattern matches any "#<digits>" tag; HasTag uses a 1-3 digit
// pattern. The asymmetry is inherited behavior. Both are unanchored, so a
// 4-digit counter still trips the idempotency check on its first three
// digits. Do not unify the two without deciding that is actually wanted.
var (
	extractPattern = regexp.MustCompile(`#(\d+)`)
	hasTagPattern  = regexp.MustCompile(`#\d{1,3}`)
)

// Extract returns the numeric value of the first "#<digits>" tag in name.
func Extract(name string) (int, bool) {
	m := extractPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasTag reports whether name already carries a streak tag. Used as the
// idempotency gate before any streak computation.
func HasTag(name string) bool {
	return hasTagPattern.MatchString(name)
}

// Format renders a counter as a zero-padded tag, widening past 999.
func Format(counter int) string {
	return fmt.Sprintf("#%03d", counter)
}

// Apply prepends the formatted counter to the original name.
func Apply(name string, counter int) string {
	return Format(counter) + " " + name
}
