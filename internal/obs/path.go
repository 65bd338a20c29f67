package obs

import "strings"

// CanonicalPath collapses entity ids embedded in request paths so that metric
// label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case matchSegments(segments, "api", "admin", "users", "*"):
		return "/api/admin/users/:id"
	case matchSegments(segments, "api", "admin", "classes", "*", "students"):
		return "/api/admin/classes/:id/students"
	case matchSegments(segments, "api", "teacher", "classes", "*", "students"):
		return "/api/teacher/classes/:id/students"
	}
	return path
}

func matchSegments(segments []string, pattern ...string) bool {
	if len(segments) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p == "*" {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if segments[i] != p {
			return false
		}
	}
	return true
}
