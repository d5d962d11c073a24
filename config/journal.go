package config

import (
	"os"
	"strings"
)

const defaultDOIPrefix = "10.1000"

// DOIPrefix is the namespace every generated DOI starts with.
func DOIPrefix() string {
	if p := strings.TrimSpace(os.Getenv("DOI_PREFIX")); p != "" {
		return strings.TrimSuffix(p, "/")
	}
	return defaultDOIPrefix
}

// AppBaseURL is prepended to notification links in outgoing email.
func AppBaseURL() string {
	return strings.TrimSuffix(os.Getenv("APP_BASE_URL"), "/")
}
