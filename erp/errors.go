package erp

import "fmt"

// ConfigurationError reports parameters a Dist constructor rejected outright,
// before any sampling is attempted: a degenerate Gaussian (sigma <= 0) or a
// Multinomial with no positive weight. Per the core's error model these are
// fatal and distinct from an ImpossibleTrace raised mid-run by sampling
// outside a distribution's support.
type ConfigurationError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("erp: invalid %s parameters: %s", e.Kind, e.Reason)
}
