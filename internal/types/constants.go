package types

import (
	"os"
	"strings"
)

// ContextUserKey is where the auth middleware stores the authenticated user.
const ContextUserKey = "user"

// AllowedOrigins drives both CORS and the websocket origin check. The Vite
// dev servers are always allowed; production origins come from CLIENT_URL and
// the comma-separated ALLOWED_ORIGINS.
var AllowedOrigins = buildAllowedOrigins(
	"http://localhost:5173",
	"http://localhost:4173",
)

func buildAllowedOrigins(devOrigins ...string) []string {
	origins := append([]string{}, devOrigins...)

	if clientURL := strings.TrimSpace(os.Getenv("CLIENT_URL")); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
