package alloy

import "sort"

// Presence is the bit flag collected by Extract for each node path.
type Presence uint8

const (
	PresenceSet     Presence = 1 << iota // A value was extracted for the path.
	PresenceCleared                      // The existing value must be cleared first.
)

// PresenceMap maps node paths to Presence flags.
//
// Together with the extracted value it carries three states per field:
// unset (no entry), cleared (PresenceCleared only) and set (PresenceSet, with
// PresenceCleared too when the stored value is replaced rather than merged).
type PresenceMap map[string]Presence

// Set reports whether a value was extracted at path.
func (pm PresenceMap) Set(path string) bool { return pm[path]&PresenceSet != 0 }

// Cleared reports whether path must be cleared before new data is applied.
func (pm PresenceMap) Cleared(path string) bool { return pm[path]&PresenceCleared != 0 }

// ClearedPaths lists the cleared paths in sorted order.
func (pm PresenceMap) ClearedPaths() []string {
	var out []string
	for p, v := range pm {
		if v&PresenceCleared != 0 {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Transforms renders the cleared paths as the transforms map persisted next
// to the data. It returns nil when nothing is cleared.
func (pm PresenceMap) Transforms() map[string]Transform {
	paths := pm.ClearedPaths()
	if len(paths) == 0 {
		return nil
	}
	out := make(map[string]Transform, len(paths))
	for _, p := range paths {
		out[p] = Transform{Clear: true}
	}
	return out
}
