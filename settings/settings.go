// Package settings holds the process-wide configuration: defaults, an optional settings file,
// and RELFETCH_ prefixed environment overrides.
package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const (
	KeyFetchFormat            = "fetch_format"
	KeyBlobCompressThreshold  = "blob.compress_threshold"
	KeyStores                 = "stores"
	DefaultFetchFormat        = "array"
	DefaultCompressThresholdB = 1000
)

var (
	mu sync.RWMutex
	v  = newViper()
)

type (
	// StoreConfig describes one external object store
	StoreConfig struct {
		Name      string
		Protocol  string `mapstructure:"protocol"`
		Location  string `mapstructure:"location"`
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	}
)

func newViper() *viper.Viper {
	nv := viper.New()
	nv.SetDefault(KeyFetchFormat, DefaultFetchFormat)
	nv.SetDefault(KeyBlobCompressThreshold, DefaultCompressThresholdB)
	nv.SetEnvPrefix("RELFETCH")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()
	return nv
}

// Load merges the settings file at path (JSON, YAML or TOML by extension) over the defaults.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error in viper.ReadInConfig: %w", err)
	}
	return nil
}

// Set overrides a single key for the rest of the process.
func Set(key string, value any) {
	mu.Lock()
	defer mu.Unlock()
	v.Set(key, value)
}

// Reset drops every loaded or overridden value.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	v = newViper()
}

// FetchFormat is the configured default output format. It is not validated here; fetch
// rejects unknown values when it reads them.
func FetchFormat() string {
	mu.RLock()
	defer mu.RUnlock()
	return v.GetString(KeyFetchFormat)
}

func BlobCompressThreshold() int {
	mu.RLock()
	defer mu.RUnlock()
	return v.GetInt(KeyBlobCompressThreshold)
}

// Stores returns every configured external store keyed by name.
func Stores() (map[string]StoreConfig, error) {
	mu.RLock()
	defer mu.RUnlock()
	raw := map[string]StoreConfig{}
	if err := v.UnmarshalKey(KeyStores, &raw); err != nil {
		return nil, fmt.Errorf("error in viper.UnmarshalKey: %w", err)
	}
	for name, sc := range raw {
		sc.Name = name
		raw[name] = sc
	}
	return raw, nil
}
