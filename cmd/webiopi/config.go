// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/live"
	"github.com/GermanBionicSystems/webiopi/webiopireg"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

// DefaultConfigFile is read when --config is not specified and the file
// exists in the current directory.
const DefaultConfigFile = "webiopi.toml"

// Config is the content of the configuration file.
type Config struct {
	// Default is the device used when --device is not specified.
	Default string                  `toml:"default"`
	Devices map[string]DeviceConfig `toml:"devices"`
}

// DeviceConfig describes one device.
type DeviceConfig struct {
	URL      string        `toml:"url"`
	Username string        `toml:"username"`
	Password string        `toml:"password"`
	Timeout  time.Duration `toml:"timeout"`
	Rate     float64       `toml:"rate"`
	Aliases  []string      `toml:"aliases"`

	// Simulated devices don't need a URL.
	Simulated bool  `toml:"simulated"`
	Pins      []int `toml:"pins"`
	UART0     bool  `toml:"uart0"`
	I2C0      bool  `toml:"i2c0"`
	I2C1      bool  `toml:"i2c1"`
	SPI0      bool  `toml:"spi0"`
}

// LoadConfig reads the configuration at path.
//
// An empty path reads DefaultConfigFile if present, else returns an empty
// configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Devices: map[string]DeviceConfig{}}
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return cfg, nil
		}
		path = DefaultConfigFile
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) != 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, keys[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	for _, name := range c.Names() {
		d := c.Devices[name]
		switch {
		case d.Simulated && d.URL != "":
			return fmt.Errorf("device %q: url and simulated are exclusive", name)
		case !d.Simulated && d.URL == "":
			return fmt.Errorf("device %q: url is required", name)
		case !d.Simulated && len(d.Pins) != 0:
			return fmt.Errorf("device %q: pins only applies to simulated devices", name)
		case d.Rate < 0:
			return fmt.Errorf("device %q: rate must not be negative", name)
		case d.Timeout < 0:
			return fmt.Errorf("device %q: timeout must not be negative", name)
		}
		if d.URL != "" {
			if u, err := url.Parse(d.URL); err != nil || u.Host == "" {
				return fmt.Errorf("device %q: invalid url %q", name, d.URL)
			}
		}
		for _, p := range d.Pins {
			if err := webiopi.ValidatePin(p); err != nil {
				return fmt.Errorf("device %q: %w", name, err)
			}
		}
	}
	if c.Default != "" {
		if _, ok := c.Devices[c.Default]; !ok {
			return fmt.Errorf("default device %q is not defined", c.Default)
		}
	}
	return nil
}

// Names returns the device names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Devices))
	for n := range c.Devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register adds every device to webiopireg.
func (c *Config) Register(log zerolog.Logger) error {
	for _, name := range c.Names() {
		if err := webiopireg.Register(name, c.Devices[name].Aliases, c.Devices[name].opener(name, log)); err != nil {
			return err
		}
	}
	return nil
}

func (d DeviceConfig) opener(name string, log zerolog.Logger) webiopireg.Opener {
	if d.Simulated {
		return func() (webiopi.Endpoint, error) {
			return webiopitest.New(&webiopitest.Opts{
				Pins:  d.Pins,
				UART0: d.UART0,
				I2C0:  d.I2C0,
				I2C1:  d.I2C1,
				SPI0:  d.SPI0,
			}), nil
		}
	}
	return func() (webiopi.Endpoint, error) {
		l := log.With().Str("name", name).Logger()
		return live.New(d.URL, &live.Opts{
			Username: d.Username,
			Password: d.Password,
			Timeout:  d.Timeout,
			Rate:     d.Rate,
			Log:      &l,
		})
	}
}
