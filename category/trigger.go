package category

import (
	"errors"
	"strings"
)

// ParseTrigger turns the words typed by a user into a trigger, stemming each
// word with stem. Triggers are matched against stemmed phrases, so they must
// be stemmed the same way.
func ParseTrigger(words []string, stem func(string) string) (string, error) {
	var stems []string
	for _, w := range words {
		for _, f := range strings.Fields(w) {
			stems = append(stems, stem(f))
		}
	}

	if len(stems) == 0 {
		return "", errors.New("No trigger given.")
	}

	return strings.Join(stems, " "), nil
}
