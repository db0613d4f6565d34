package calendar

// Config holds calendar domain configuration.
type Config struct {
	// MaxTasksPerCalendar caps the size of a calendar's task catalog.
	MaxTasksPerCalendar int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxTasksPerCalendar: 200,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.MaxTasksPerCalendar <= 0 {
		c.MaxTasksPerCalendar = 200
	}
	return nil
}
