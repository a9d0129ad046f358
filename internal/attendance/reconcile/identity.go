package reconcile

import (
	"strings"

	"github.com/wardtrack/wardtrack-backend/pkg/logger"
)

// Matcher resolves free-text punch identifiers against the employee
// directory. Results, including misses, are memoized until the directory is
// reloaded. The cache is owned by the Matcher instance, never process-wide,
// so batches running against different directories cannot contaminate each
// other.
//
// Matching order, first match wins:
//  1. exact canonical name (case-insensitive)
//  2. exact internal employee ID
//  3. exact device-assigned user ID
//  4. fuzzy: either normalized string contains the other
type Matcher struct {
	directory []Employee
	cache     map[string]*Employee
	logger    *logger.Logger
}

// NewMatcher creates a matcher over a directory snapshot
func NewMatcher(directory []Employee, log *logger.Logger) *Matcher {
	return &Matcher{
		directory: directory,
		cache:     make(map[string]*Employee),
		logger:    log,
	}
}

// Match resolves a raw identifier to an employee, or nil when no record
// matches. Unmatched identifiers are cached too, so repeated lookups of an
// unknown identifier do not rescan the directory.
func (m *Matcher) Match(rawIdentifier string) *Employee {
	if emp, ok := m.cache[rawIdentifier]; ok {
		return emp
	}

	emp := m.scan(rawIdentifier)
	m.cache[rawIdentifier] = emp
	return emp
}

// Reload replaces the directory snapshot and clears the cache. Callers must
// invoke this whenever the directory changes; a stale match after a
// directory reload is a correctness bug, not an acceptable staleness window.
func (m *Matcher) Reload(directory []Employee) {
	m.directory = directory
	m.cache = make(map[string]*Employee)
}

// ClearCache drops all memoized matches while keeping the directory
func (m *Matcher) ClearCache() {
	m.cache = make(map[string]*Employee)
}

func (m *Matcher) scan(rawIdentifier string) *Employee {
	for i := range m.directory {
		if strings.EqualFold(m.directory[i].Name, rawIdentifier) {
			return &m.directory[i]
		}
	}

	for i := range m.directory {
		if m.directory[i].ID == rawIdentifier {
			return &m.directory[i]
		}
	}

	for i := range m.directory {
		if m.directory[i].DeviceUserID != "" && m.directory[i].DeviceUserID == rawIdentifier {
			return &m.directory[i]
		}
	}

	return m.fuzzyScan(rawIdentifier)
}

// fuzzyScan accepts a match when either normalized string contains the
// other. All candidates are collected so ambiguity can be logged; ties are
// broken by directory order.
func (m *Matcher) fuzzyScan(rawIdentifier string) *Employee {
	needle := normalize(rawIdentifier)
	if needle == "" {
		return nil
	}

	var candidates []*Employee
	for i := range m.directory {
		if fuzzyEqual(needle, normalize(m.directory[i].Name)) {
			candidates = append(candidates, &m.directory[i])
			continue
		}
		for _, alt := range m.directory[i].AlternateNames {
			if fuzzyEqual(needle, normalize(alt)) {
				candidates = append(candidates, &m.directory[i])
				break
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name
		}
		m.logger.Warn().
			Str("identifier", rawIdentifier).
			Strs("candidates", names).
			Msg("ambiguous fuzzy identity match, using first directory entry")
	}

	return candidates[0]
}

func fuzzyEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
