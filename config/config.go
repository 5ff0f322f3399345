// Package config loads instrument endpoint configuration from a TOML file
// and turns it into session options.
//
// A config file holds one table per instrument application:
//
//	[leem2000]
//	host = "192.168.1.10"
//	port = 5566
//	receive_timeout = "30s"
//
//	[uview]
//	host = "192.168.1.10"
//	port = 5570
//
// Absent keys keep their defaults (localhost, the application's well-known
// port, 30 second receive timeout).
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/elmitec/go-elmitec/leem2000"
	"github.com/elmitec/go-elmitec/proto"
	"github.com/elmitec/go-elmitec/uview"
)

// Duration wraps time.Duration so TOML values decode from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))

	return err
}

// Endpoint configures one instrument connection.
type Endpoint struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ReceiveTimeout Duration `toml:"receive_timeout"`
}

// Options returns the session options expressed by the endpoint, ready to
// pass to leem2000.NewSession or uview.NewSession.
func (e Endpoint) Options() []proto.Option {
	return []proto.Option{
		proto.WithHost(e.Host),
		proto.WithPort(e.Port),
		proto.WithReceiveTimeout(e.ReceiveTimeout.Duration),
	}
}

func (e Endpoint) validate(name string) error {
	if e.Host == "" {
		return fmt.Errorf("%w: %s host must not be empty", proto.ErrInvalidArgument, name)
	}
	if e.Port < 0 || e.Port > 65535 {
		return fmt.Errorf("%w: %s port %d out of range [0, 65535]", proto.ErrInvalidArgument, name, e.Port)
	}
	if e.ReceiveTimeout.Duration < 0 {
		return fmt.Errorf("%w: %s receive timeout must not be negative", proto.ErrInvalidArgument, name)
	}

	return nil
}

// Config holds the endpoints of both instrument applications.
type Config struct {
	Leem2000 Endpoint `toml:"leem2000"`
	UView    Endpoint `toml:"uview"`
}

// Default returns the configuration with both endpoints on their
// well-known localhost ports.
func Default() Config {
	return Config{
		Leem2000: Endpoint{
			Host:           leem2000.DefaultHost,
			Port:           leem2000.DefaultPort,
			ReceiveTimeout: Duration{30 * time.Second},
		},
		UView: Endpoint{
			Host:           uview.DefaultHost,
			Port:           uview.DefaultPort,
			ReceiveTimeout: Duration{30 * time.Second},
		},
	}
}

// Load reads the TOML file at path over the default configuration and
// validates the result. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := cfg.Leem2000.validate("leem2000"); err != nil {
		return Config{}, err
	}
	if err := cfg.UView.validate("uview"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
