// Package featureflags evaluates FEATURE_FLAGS, a comma separated list of
// name=value pairs such as "calendar_ics=on,club_images=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	CalendarICS = "calendar_ics"
	ClubImages  = "club_images"
)

// defaults apply when FEATURE_FLAGS does not mention a flag.
var defaults = map[string]string{
	CalendarICS: "on",
	ClubImages:  "on",
}

// Manager holds parsed flag values.
type Manager struct {
	values map[string]string
}

// NewManager parses raw on top of the built-in defaults. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = clean(name), clean(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return &Manager{values: values}
}

// Enabled reports whether name is on for userID. Values on/true/1 and
// off/false/0 are absolute; "N%" enables the flag for a stable N percent of
// signed-in users.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.values[clean(name)]
	if !ok {
		return false
	}
	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	if err != nil || !strings.HasSuffix(value, "%") {
		return false
	}
	switch {
	case pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < pct
}

// Flag is one flag as seen by a user.
type Flag struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

// List returns every flag, sorted by name, evaluated for userID.
func (m *Manager) List(userID uint) []Flag {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Flag, 0, len(names))
	for _, name := range names {
		out = append(out, Flag{Name: name, Value: m.values[name], Enabled: m.Enabled(name, userID)})
	}
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", clean(name), userID)
	return int(h.Sum32() % 100)
}
