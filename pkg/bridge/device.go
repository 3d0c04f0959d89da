package bridge

import (
	"os"

	"github.com/google/uuid"
)

// deviceNamespace scopes device tokens so they never collide with other
// name-based UUIDs derived from the same host name.
var deviceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("appshell:device"))

// NewDeviceToken derives a stable identifier for this device and platform.
// The same seed always yields the same token. An empty seed falls back to
// the host name, and to a random token when that is unavailable.
func NewDeviceToken(platform, seed string) string {
	if seed == "" {
		seed, _ = os.Hostname()
	}
	if seed == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(deviceNamespace, []byte(platform+":"+seed)).String()
}
