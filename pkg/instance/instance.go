package instance

import "github.com/angelmondragon/craftmarket-backend/pkg/env"

// GetID identifies the running process in logs: the platform dyno name when
// present, then WORKER_ID, then "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	return env.Get("WORKER_ID", "local")
}
