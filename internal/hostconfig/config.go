// Package hostconfig resolves the execution host's default backend and
// flush policy from the process environment, so the binary behaves
// consistently across invocations that don't repeat CLI flags (scripted
// or CI contexts).
package hostconfig

import "github.com/caarlos0/env/v6"

// Defaults holds the environment-derived fallback values consulted before
// CLI flags are applied. An explicitly passed flag always overrides the
// value here.
type Defaults struct {
	Backend string `env:"BF_BACKEND" envDefault:"jit"`
	Flush   string `env:"BF_FLUSH" envDefault:"onend"`
}

// Load reads BF_BACKEND and BF_FLUSH from the environment, falling back to
// "jit" and "onend" when unset.
func Load() (Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return Defaults{}, err
	}
	return d, nil
}
