package env

import "strings"

var sensitiveMarkers = []string{
	"PASSWORD", "SECRET", "TOKEN", "API_KEY", "APIKEY", "CREDENTIAL",
}

// IsSensitive reports whether a variable name looks like it
// holds a credential.
func IsSensitive(key string) bool {
	upper := strings.ToUpper(key)
	for _, m := range sensitiveMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

// Redact masks a value, showing only the first 4 and last 4
// characters.
func Redact(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) +
		value[len(value)-4:]
}

// RedactMap returns a copy of vars with sensitive values masked,
// suitable for logging a run's environment.
func RedactMap(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		if IsSensitive(k) {
			v = Redact(v)
		}
		out[k] = v
	}
	return out
}
