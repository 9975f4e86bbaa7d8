// Package model holds the shared types of the console core: router states,
// domain entities fetched from the Remails API, error envelopes, and the
// per-session context.
package model

import "sort"

// RouterState identifies where the console currently is: a dotted route name
// (e.g. "projects.project.streams.stream") plus the flat parameter map of
// path variables merged with query variables.
type RouterState struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// Param returns the named parameter, or "" if absent.
func (rs RouterState) Param(key string) string {
	return rs.Params[key]
}

// Clone returns a deep copy. Router states are replaced atomically on each
// committed navigation; copies keep middleware from aliasing the live map.
func (rs RouterState) Clone() RouterState {
	out := RouterState{Name: rs.Name}
	if rs.Params != nil {
		out.Params = make(map[string]string, len(rs.Params))
		for k, v := range rs.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Equal reports whether two router states have the same name and parameters.
func (rs RouterState) Equal(other RouterState) bool {
	if rs.Name != other.Name || len(rs.Params) != len(other.Params) {
		return false
	}
	for k, v := range rs.Params {
		if other.Params[k] != v {
			return false
		}
	}
	return true
}

// ParamKeys returns the sorted parameter keys. Used by tests and logging.
func (rs RouterState) ParamKeys() []string {
	keys := make([]string, 0, len(rs.Params))
	for k := range rs.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FullRouterState is a RouterState plus the canonical URL for that
// name+params combination. It is what gets pushed into history.
type FullRouterState struct {
	RouterState
	FullPath string `json:"full_path"`
}

// HistoryEntry is the unit stored in the history stack: the canonical path
// together with enough state to reconstruct the RouterState on back/forward.
type HistoryEntry struct {
	FullPath    string      `json:"full_path"`
	RouterState RouterState `json:"router_state"`
}
