package instance

import "os"

// GetID identifies the running process in logs. Heroku's DYNO wins, then the
// container hostname.
func GetID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
