package render

// Config is a renderer configuration: option name to value. Renderers
// declare their recognized options and defaults; unknown keys are
// tolerated and ignored.
type Config map[string]any

// Merged returns a copy of the config with overrides applied on top.
func (c Config) Merged(overrides Config) Config {
	merged := make(Config, len(c)+len(overrides))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Bool returns the named option as a bool, or false when unset or of
// another type.
func (c Config) Bool(key string) bool {
	v, ok := c[key].(bool)
	return ok && v
}

// String returns the named option as a string, or empty.
func (c Config) String(key string) string {
	v, _ := c[key].(string)
	return v
}
