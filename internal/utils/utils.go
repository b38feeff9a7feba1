package utils

import "strings"

// MaskAPIKey masks the API key for display
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

var secretMarkers = []string{"KEY", "TOKEN", "SECRET", "PASSWORD"}

// IsSecretKey reports whether a settings key names a credential
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range secretMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// MaskSecrets returns a copy of a decoded settings value with every string
// stored under a credential-like key masked
func MaskSecrets(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if s, ok := item.(string); ok && IsSecretKey(k) {
				out[k] = MaskAPIKey(s)
				continue
			}
			out[k] = MaskSecrets(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = MaskSecrets(item)
		}
		return out
	default:
		return v
	}
}
