// Package configbp loads the §6 knob set — request_size_limit,
// piece_min_size, piece_max_size, redirect_max, retry_max, keep_alive_timeout,
// and the default compression/data type — from a YAML file, and optionally
// watches it for changes so a running process can pick up a new
// request_size_limit or default compression type without restarting.
package configbp

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the YAML-tagged knob set from §6.
type Config struct {
	RequestSizeLimit    int           `yaml:"requestSizeLimit"`
	PieceMinSize        int           `yaml:"pieceMinSize"`
	PieceMaxSize        int           `yaml:"pieceMaxSize"`
	RedirectMax         int           `yaml:"redirectMax"`
	RetryMax            int           `yaml:"retryMax"`
	KeepAliveTimeout    time.Duration `yaml:"keepAliveTimeout"`
	DefaultCompressType string        `yaml:"defaultCompressType"`
	DefaultDataType     string        `yaml:"defaultDataType"`
}

// Defaults for the fields above, applied by Parse when the YAML document
// leaves them unset (zero).
const (
	DefaultRequestSizeLimit = 0x7FFFFFFF
	DefaultPieceMinSize     = 2 << 10
	DefaultPieceMaxSize     = 256 << 10
	DefaultRedirectMax      = 2
	DefaultRetryMax         = 5
	DefaultKeepAliveTimeout = 60 * time.Second
)

func (c *Config) applyDefaults() {
	if c.RequestSizeLimit <= 0 {
		c.RequestSizeLimit = DefaultRequestSizeLimit
	}
	if c.PieceMinSize <= 0 {
		c.PieceMinSize = DefaultPieceMinSize
	}
	if c.PieceMaxSize <= 0 {
		c.PieceMaxSize = DefaultPieceMaxSize
	}
	if c.RedirectMax <= 0 {
		c.RedirectMax = DefaultRedirectMax
	}
	if c.RetryMax <= 0 {
		c.RetryMax = DefaultRetryMax
	}
	if c.KeepAliveTimeout <= 0 {
		c.KeepAliveTimeout = DefaultKeepAliveTimeout
	}
}

// Parse reads and unmarshals a Config from r, applying defaults to any field
// the YAML document left zero.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("configbp: reading config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("configbp: parsing config: %w", err)
	}
	c.applyDefaults()
	return c, nil
}
