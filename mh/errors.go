package mh

import "fmt"

// ConfigurationError reports an invalid combination of driver options,
// rejected before any chain is constructed or any iteration is run (§6, §7).
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mh: invalid configuration: %s", e.Reason)
}
