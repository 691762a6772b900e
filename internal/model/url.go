package model

import "regexp"

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Placeholders returns the {placeholder} tokens of a path template in order
// of appearance, without duplicates.
func Placeholders(path string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(path, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Placeholders returns the union of placeholders across all URL templates.
func (e Endpoint) Placeholders() []string {
	seen := make(map[string]bool)
	var names []string
	for _, u := range e.URLs {
		for _, p := range Placeholders(u.Path) {
			if !seen[p] {
				seen[p] = true
				names = append(names, p)
			}
		}
	}
	return names
}
