package ddlkit

import (
	"sync"
)

// --- Global Configuration ---

var (
	globalDialector Dialector = MySQL
	configMutex     sync.RWMutex
)

// Config holds package-level configuration for ddlkit.
type Config struct {
	Dialector Dialector // Quoting service used by the package-level constructors
}

// Configure sets the package-level dialector used by DefaultDialector.
// Descriptors capture the dialector they were created with, so changing it later
// does not affect existing descriptors.
func Configure(cfg Config) error {
	if cfg.Dialector == nil {
		return ErrDialectorNotSet
	}
	configMutex.Lock()
	defer configMutex.Unlock()
	globalDialector = cfg.Dialector
	return nil
}

// DefaultDialector returns the configured package-level dialector (MySQL unless changed).
func DefaultDialector() Dialector {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalDialector
}
