package config

import (
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/xmrecipes/common"
)

// RemoteHost describes the SSH target for recipes that run the external
// tool on a remote machine instead of locally.
type RemoteHost struct {
	Address        string `yaml:"address"`
	Port           int    `yaml:"port" default:"22"`
	User           string `yaml:"user" default:"root"`
	Password       string `yaml:"password,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
}

// Config is the runner configuration loaded from a YAML file, with
// defaults applied to anything the file leaves out.
type Config struct {
	LogLevel string `yaml:"logLevel" default:"info"`
	LogDir   string `yaml:"logDir,omitempty"`

	// ProgressIntervalMS is the progress notifier tick in milliseconds.
	ProgressIntervalMS int `yaml:"progressIntervalMs" default:"1000"`
	// SuccessDelaySeconds pauses after a successful action so the final
	// status line stays readable.
	SuccessDelaySeconds int `yaml:"successDelaySeconds" default:"0"`
	// ErrorDelaySeconds pauses after a failed or errored action.
	ErrorDelaySeconds int `yaml:"errorDelaySeconds" default:"2"`
	// Concurrency bounds concurrent task tree groups.
	Concurrency int `yaml:"concurrency" default:"4"`

	Remote *RemoteHost `yaml:"remote,omitempty"`
}

// Default returns a Config with every field at its default.
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// ProgressInterval returns the notifier tick as a duration.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMS) * time.Millisecond
}

// SuccessDelay returns the success-path display delay.
func (c *Config) SuccessDelay() time.Duration {
	return time.Duration(c.SuccessDelaySeconds) * time.Second
}

// ErrorDelay returns the error-path display delay.
func (c *Config) ErrorDelay() time.Duration {
	return time.Duration(c.ErrorDelaySeconds) * time.Second
}

// Level parses the configured log level.
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Validate performs structural validation after load.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.ProgressIntervalMS <= 0 {
		return errors.Errorf("progressIntervalMs must be positive, got %d", c.ProgressIntervalMS)
	}
	if c.SuccessDelaySeconds < 0 || c.ErrorDelaySeconds < 0 {
		return errors.New("display delays must not be negative")
	}
	if c.Concurrency < 1 {
		return errors.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Remote != nil {
		if c.Remote.Address == "" {
			return errors.New("remote.address is required when a remote host is configured")
		}
		if c.Remote.Port == 0 {
			c.Remote.Port = common.DefaultSSHPort
		}
	}
	return nil
}
