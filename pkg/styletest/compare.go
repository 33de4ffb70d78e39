package styletest

import (
	"fmt"
	"regexp"

	"github.com/stretchr/testify/assert"
)

// Compare reports whether a found declaration value satisfies expected.
// A *regexp.Regexp must match found; a string must equal it exactly;
// a fmt.Stringer is compared by its string form; anything else is compared
// with testify's ObjectsAreEqual. Comparisons that panic report false.
func Compare(found string, expected any) bool {
	ok, _ := compare(found, expected)
	return ok
}

// compare is Compare returning the recovered panic value, if any
func compare(found string, expected any) (ok bool, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			ok, recovered = false, r
		}
	}()

	switch exp := expected.(type) {
	case *regexp.Regexp:
		return exp.MatchString(found), nil
	case string:
		return found == exp, nil
	case fmt.Stringer:
		return found == exp.String(), nil
	default:
		return assert.ObjectsAreEqual(expected, found), nil
	}
}

// formatExpected renders expected the way it is shown in failure messages
func formatExpected(expected any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<%T>", expected)
		}
	}()

	switch exp := expected.(type) {
	case *regexp.Regexp:
		return "/" + exp.String() + "/"
	case string:
		return exp
	case fmt.Stringer:
		return exp.String()
	default:
		return fmt.Sprintf("%v", expected)
	}
}
