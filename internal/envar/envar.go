// Package envar implements the environment-variable configuration used by all
// programs in this repository. Values come from the process environment,
// optionally preloaded from a dotenv file. A key suffixed with "_SECURE"
// indirects through the secrets Provider instead of exposing the value in the
// environment.
package envar

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"todotrack/internal"
)

// Load reads the env filename and loads it into the process environment.
func Load(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "godotenv.Load")
	}

	return nil
}

// Provider represents the methods required by types implementing secrets
// providers.
type Provider interface {
	Get(key string) (string, error)
}

// Configuration represents the settings used by this application.
type Configuration struct {
	provider Provider
}

// New instantiates a new configuration with the received provider.
func New(provider Provider) *Configuration {
	return &Configuration{
		provider: provider,
	}
}

// Get returns the value for the received key. When "<key>_SECURE" is defined
// its value is used as the lookup key against the secrets provider.
func (c *Configuration) Get(key string) (string, error) {
	res := os.Getenv(key)

	valSecret := os.Getenv(fmt.Sprintf("%s_SECURE", key))
	if valSecret != "" {
		valSecretRes, err := c.provider.Get(valSecret)
		if err != nil {
			return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "provider.Get")
		}

		res = valSecretRes
	}

	return res, nil
}
