// Package env provides information about the host running the rover.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID is mixed into the machine ID so the rover ID doesn't expose it.
const AppID = "openrover"

// roverIDLen is the number of hex digits used from the hashed ID.
const roverIDLen = 12

// MachineID retrieves the unique ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ProtectedID(AppID)
}

// RoverID returns the default ID of the rover. It's derived from the
// machine ID and falls back to the hostname when that's unavailable.
func RoverID() string {
	id, err := MachineID()
	if err == nil && len(id) >= roverIDLen {
		return id[:roverIDLen]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return AppID
}
