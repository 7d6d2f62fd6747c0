package instance

import "github.com/angelmondragon/smartlist-backend/pkg/env"

// GetID returns the process instance identifier used in logs and lock owners.
// Kubernetes sets HOSTNAME to the pod name.
func GetID() string {
	return env.FirstOf("local", "SMARTLIST_INSTANCE_ID", "HOSTNAME")
}
