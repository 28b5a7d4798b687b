package llm

import (
	"errors"
	"math/rand/v2"
	"strings"
)

// ErrNoCredentials is returned when no override was supplied and the pool is empty.
var ErrNoCredentials = errors.New("no Gemini API key configured")

// KeyPool is the read-only set of configured API keys.
type KeyPool struct {
	keys []string
	intn func(n int) int
}

// NewKeyPool creates a pool from keys, dropping blanks.
func NewKeyPool(keys []string) *KeyPool {
	pool := &KeyPool{intn: rand.IntN}
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			pool.keys = append(pool.keys, key)
		}
	}
	return pool
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Pick returns override when it is set, otherwise a uniformly random pool key.
func (p *KeyPool) Pick(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}
	if len(p.keys) == 0 {
		return "", ErrNoCredentials
	}
	return p.keys[p.intn(len(p.keys))], nil
}
