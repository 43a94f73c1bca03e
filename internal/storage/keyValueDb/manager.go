package keyValueDb

import "strings"

// Manager handles the lifecycle of databases
type Manager interface {
	// OpenDB opens or creates a database with the given name
	OpenDB(name string) (DB, error)

	// CloseDB closes a specific database
	CloseDB(name string) error

	// Close closes all databases
	Close() error
}

// Backend names accepted by the storage configuration.
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendBBolt   = "bbolt"
	BackendLevelDB = "leveldb"
)

// Backends lists every supported backend name.
func Backends() []string {
	return []string{BackendMemory, BackendPebble, BackendBBolt, BackendLevelDB}
}

// IsBackend reports whether name is a supported backend.
func IsBackend(name string) bool {
	for _, b := range Backends() {
		if strings.EqualFold(b, name) {
			return true
		}
	}
	return false
}

// InRange reports whether key lies in [start, end).
func InRange(key, start, end []byte) bool {
	if start != nil && string(key) < string(start) {
		return false
	}
	if end != nil && string(key) >= string(end) {
		return false
	}
	return true
}
