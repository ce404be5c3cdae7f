package main

import (
	"io/ioutil"
	"time"

	"github.com/jsccast/yaml"
)

// Config is the service configuration.  It can come from a YAML file,
// and command-line flags override what the file says.
type Config struct {
	// HTTP is the control plane port, like ":8080".
	HTTP string `json:"http" yaml:"http"`

	// Static is an optional directory served at /static/.
	Static string `json:"static,omitempty" yaml:"static,omitempty"`

	// Store is an optional bbolt filename.  Without one, storage
	// is in memory.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Defs is an optional directory of def files that are
	// defined at startup.
	Defs string `json:"defs,omitempty" yaml:"defs,omitempty"`

	Websockets bool `json:"websockets,omitempty" yaml:"websockets,omitempty"`
	Firehose   bool `json:"firehose,omitempty" yaml:"firehose,omitempty"`

	// TTL for cached automata (0 to disable the cache).
	TTL       time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	CacheSize int           `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"`

	// Workers is given to the Matcher.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Stats is a cron expression for logging stats.
	Stats string `json:"stats,omitempty" yaml:"stats,omitempty"`

	MQTT *MQTTConfig `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		HTTP:      ":8080",
		TTL:       60 * time.Second,
		CacheSize: 1024,
	}
}

// ReadConfig reads a YAML file over the given Config.
func ReadConfig(filename string, cfg *Config) error {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bs, cfg)
}
