package field

import "fmt"

// #region not-found

// NotFoundError reports an unknown dimension, motion, or node id.
// Operations that return it mutate no state.
type NotFoundError struct {
	Kind string // "dimension" | "motion" | "node"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// #endregion not-found

// #region configuration

// ConfigurationError reports invalid construction-time configuration.
// It is never returned during normal operation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// #endregion configuration
