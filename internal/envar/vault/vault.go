// Package vault implements an envar.Provider backed by HashiCorp Vault's KV
// version 2 secrets engine.
package vault

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/vault/api"

	"todotrack/internal"
)

// Provider reads secrets from Vault. Lookup keys take the form
// "<secret path>:<field>", relative to the mount path the Provider was
// instantiated with.
type Provider struct {
	client *api.Client
	path   string

	mu      sync.Mutex
	results map[string]map[string]interface{}
}

// New instantiates a Vault client using the received token, address and mount
// path.
func New(token, addr, path string) (*Provider, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "api.NewClient")
	}

	client.SetToken(token)

	return &Provider{
		client:  client,
		path:    path,
		results: make(map[string]map[string]interface{}),
	}, nil
}

// Get reads the field from the secret path in the received key, caching the
// whole secret so repeated fields cost one round trip.
func (p *Provider) Get(key string) (string, error) {
	secretPath, field, found := strings.Cut(key, ":")
	if !found {
		return "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "missing ':' in %q", key)
	}

	data, err := p.read(secretPath)
	if err != nil {
		return "", err
	}

	res, ok := data[field].(string)
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeUnknown, "field %q not found in %q", field, secretPath)
	}

	return res, nil
}

func (p *Provider) read(secretPath string) (map[string]interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if data, ok := p.results[secretPath]; ok {
		return data, nil
	}

	secret, err := p.client.Logical().Read(fmt.Sprintf("%s/data/%s", p.path, secretPath))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Logical.Read")
	}

	if secret == nil {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "secret %q not found", secretPath)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "malformed secret %q", secretPath)
	}

	p.results[secretPath] = data

	return data, nil
}
