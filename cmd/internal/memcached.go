package internal

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"todotrack/internal"
	"todotrack/internal/envar"
)

// NewMemcached instantiates the memcached client using configuration defined
// in environment variables.
func NewMemcached(conf *envar.Configuration) (*memcache.Client, error) {
	host, err := conf.Get("MEMCACHED_HOST")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get MEMCACHED_HOST")
	}

	client := memcache.New(host)

	if err := client.Ping(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Ping")
	}

	client.Timeout = 100 * time.Millisecond
	client.MaxIdleConns = 100

	return client, nil
}
