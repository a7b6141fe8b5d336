package driven

// ConfigStore provides persistent key-value configuration: tenant URL,
// user ID, worker width, debounce interval, persisted space filter.
type ConfigStore interface {
	// Get retrieves a raw configuration value.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, or false if absent.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice value, or nil if absent.
	GetStringSlice(key string) []string

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists all values.
	Save() error
}
