package route

import (
	"net/url"
	"strings"

	"github.com/remails/console/model"
)

// Match resolves a concrete URL path (with optional query string) against
// the route tree. On success it returns the dotted route name and the flat
// parameter map of path variables merged with query variables; path
// variables win on key collision. A trailing slash is ignored. No match
// returns a ROUTE_NOT_FOUND error, which callers map to the not-found route.
func (t *Table) Match(pathAndQuery string) (model.RouterState, error) {
	path := pathAndQuery
	rawQuery := ""
	if i := strings.IndexByte(pathAndQuery, '?'); i >= 0 {
		path, rawQuery = pathAndQuery[:i], pathAndQuery[i+1:]
	}

	segs := splitPath(path)

	names, pathParams, ok := matchLevel(t.routes, segs)
	if !ok {
		return model.RouterState{}, model.NewRouteNotFoundError(
			"no route matches path " + path,
		)
	}

	params := parseQuery(rawQuery)
	// Path variables take precedence over query keys of the same name.
	for k, v := range pathParams {
		params[k] = v
	}

	return model.RouterState{
		Name:   strings.Join(names, "."),
		Params: params,
	}, nil
}

// matchLevel tries each candidate route in declared order; the first
// structural match wins. A route whose template consumes the entire input is
// a terminal match even when it has children. When input segments remain,
// the match continues into the children; if no child matches, the candidate
// is abandoned and the next sibling is tried.
func matchLevel(routes []Route, segs []string) ([]string, map[string]string, bool) {
	for _, r := range routes {
		tsegs := r.segments()
		if len(segs) < len(tsegs) {
			continue
		}

		bound, ok := bindSegments(tsegs, segs[:len(tsegs)])
		if !ok {
			continue
		}

		rest := segs[len(tsegs):]
		if len(rest) == 0 {
			return []string{r.Name}, bound, true
		}

		if len(r.Children) == 0 {
			continue
		}
		childNames, childParams, ok := matchLevel(r.Children, rest)
		if !ok {
			continue
		}

		// Inner scopes override outer on key collision.
		for k, v := range childParams {
			bound[k] = v
		}
		return append([]string{r.Name}, childNames...), bound, true
	}
	return nil, nil, false
}

// bindSegments compares template segments positionally against input
// segments. Literals must match exactly; placeholders bind the input
// segment under the placeholder name.
func bindSegments(tsegs, segs []string) (map[string]string, bool) {
	bound := make(map[string]string, len(tsegs))
	for i, tseg := range tsegs {
		if isPlaceholder(tseg) {
			bound[placeholderName(tseg)] = segs[i]
			continue
		}
		if tseg != segs[i] {
			return nil, false
		}
	}
	return bound, true
}

// splitPath strips leading/trailing slashes and splits the path into
// segments; "/" and "" both yield no segments. Segments are URL-decoded.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	raw := strings.Split(trimmed, "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		if dec, err := url.PathUnescape(s); err == nil {
			segs[i] = dec
		} else {
			segs[i] = s
		}
	}
	return segs
}

// parseQuery parses the query string into a flat map, keeping the first
// value of repeated keys. Malformed pairs are skipped.
func parseQuery(rawQuery string) map[string]string {
	params := make(map[string]string)
	if rawQuery == "" {
		return params
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return params
	}
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}
