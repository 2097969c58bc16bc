package herald

import "fmt"

// A ConfigError reports a measurement option outside its allowed
// range. Invalid configuration is a caller contract violation and
// surfaces at construction; physically-expected non-events (missed
// coincidence, failed interference, failed detection) are ordinary
// result values, never errors.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bsm config: %s %s", e.Param, e.Reason)
}
