package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var salesPathPattern = regexp.MustCompile(`^sales\[(\d+)\]\.(.+)$`)

// ErrorMap maps a field path such as "firstName" or "sales[2].quantity" to the
// message of its first failing rule. Valid fields have no key.
type ErrorMap map[string]string

// SalesPath builds the path of a field inside the sale row at index.
func SalesPath(index int, field string) string {
	return fmt.Sprintf("sales[%d].%s", index, field)
}

// Has reports whether path currently fails validation.
func (m ErrorMap) Has(path string) bool {
	_, ok := m[path]
	return ok
}

// Get returns the message recorded for path, or "".
func (m ErrorMap) Get(path string) string {
	return m[path]
}

// Empty reports whether no field fails.
func (m ErrorMap) Empty() bool {
	return len(m) == 0
}

// Paths returns the failing paths in lexical order.
func (m ErrorMap) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Row returns the errors of one sale row keyed by field name.
func (m ErrorMap) Row(index int) map[string]string {
	row := make(map[string]string)
	for path, msg := range m {
		i, field, ok := parseSalesPath(path)
		if ok && i == index {
			row[field] = msg
		}
	}
	return row
}

// RemoveRow drops the errors of the removed row and shifts the paths of the
// rows after it down by one, matching a splice of the sales list.
func (m ErrorMap) RemoveRow(index int) ErrorMap {
	out := make(ErrorMap, len(m))
	for path, msg := range m {
		i, field, ok := parseSalesPath(path)
		switch {
		case !ok:
			out[path] = msg
		case i < index:
			out[path] = msg
		case i > index:
			out[SalesPath(i-1, field)] = msg
		}
	}
	return out
}

// Merge returns a copy of m overlaid with other.
func (m ErrorMap) Merge(other ErrorMap) ErrorMap {
	out := make(ErrorMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Clone copies the map. A nil map clones to an empty one.
func (m ErrorMap) Clone() ErrorMap {
	return ErrorMap{}.Merge(m)
}

func parseSalesPath(path string) (int, string, bool) {
	match := salesPathPattern.FindStringSubmatch(path)
	if match == nil {
		return 0, "", false
	}
	i, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", false
	}
	return i, match[2], true
}
