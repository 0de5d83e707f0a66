package envutil

import "os"

// Prefix is the optional namespace for formfields environment variables
const Prefix = "FORMFIELDS_"

// Get retrieves an environment variable with automatic FORMFIELDS_ prefix fallback.
// It checks for the environment variable in this order:
// 1. Exact key as provided
// 2. Key with FORMFIELDS_ prefix
// 3. Returns fallback if neither exists
func Get(key, fallback string) string {
	if value, ok := Lookup(key); ok {
		return value
	}
	return fallback
}

// Lookup is like Get but reports whether either variable was set
func Lookup(key string) (string, bool) {
	if value, exists := os.LookupEnv(key); exists {
		return value, true
	}
	if len(key) < len(Prefix) || key[:len(Prefix)] != Prefix {
		if value, exists := os.LookupEnv(Prefix + key); exists {
			return value, true
		}
	}
	return "", false
}
