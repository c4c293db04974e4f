package config

// Config contains the playground configuration, read from the PG_* variables.
type Config struct {
	Environment string `mapstructure:"env"`
	Greeting    *GreetingConfig
}

type GreetingConfig struct {
	Target      string
	Punctuation string
}

func (c *Config) ApplyDefault() {
	if c.Environment == "" {
		c.Environment = "local"
	}
}

func (c *GreetingConfig) ApplyDefault() {
	if c.Target == "" {
		c.Target = "world"
	}
}
