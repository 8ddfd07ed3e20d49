package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Absent keys leave the current value alone.
type fileConfig struct {
	WebhookURL *string `yaml:"webhook_url"`
	Timeout    *string `yaml:"timeout"`
	Mode       *string `yaml:"mode"`
	Addr       *string `yaml:"addr"`
	LogLevel   *string `yaml:"log_level"`
	LogFile    *string `yaml:"log_file"`
}

// ApplyFile overlays the YAML file named by c.File. Values from the file replace those
// loaded from the environment, but never a flag the user set explicitly.
func (c *Config) ApplyFile(fs *pflag.FlagSet) error {
	if c.File == "" {
		return nil
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", c.File)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", c.File)
	}

	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	setString := func(flag string, dst *string, val *string) {
		if val != nil && !changed(flag) {
			*dst = *val
		}
	}
	setString("webhook-url", &c.WebhookURL, fc.WebhookURL)
	setString("mode", &c.Mode, fc.Mode)
	setString("addr", &c.Addr, fc.Addr)
	setString("log-level", &c.LogLevel, fc.LogLevel)
	setString("log-file", &c.LogFile, fc.LogFile)

	if fc.Timeout != nil && !changed("timeout") {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return errors.Wrapf(err, "invalid timeout %q in %s", *fc.Timeout, c.File)
		}
		c.Timeout = d
	}
	return nil
}
