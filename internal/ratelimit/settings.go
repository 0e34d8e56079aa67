package ratelimit

import "strings"

// DefaultRedisPrefix namespaces limiter keys in Redis.
const DefaultRedisPrefix = "selector:ratelimit"

// SettingsConfig captures rate limit settings loaded from the config file.
type SettingsConfig struct {
	Limit         int            // Requests per second per company; 0 disables.
	Routes        map[string]int // Per-route overrides keyed by route name.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Normalize trims fields and clamps invalid values.
func (c SettingsConfig) Normalize() SettingsConfig {
	c.RedisAddr = strings.TrimSpace(c.RedisAddr)
	c.RedisPassword = strings.TrimSpace(c.RedisPassword)
	c.RedisPrefix = strings.TrimSpace(c.RedisPrefix)
	if c.RedisPrefix == "" {
		c.RedisPrefix = DefaultRedisPrefix
	}
	if c.RedisDB < 0 {
		c.RedisDB = 0
	}
	if c.Limit < 0 {
		c.Limit = 0
	}
	if len(c.Routes) > 0 {
		routes := make(map[string]int, len(c.Routes))
		for name, limit := range c.Routes {
			name = strings.TrimSpace(name)
			if name == "" || limit < 0 {
				continue
			}
			routes[name] = limit
		}
		c.Routes = routes
	}
	return c
}

// StaticSettings returns a provider that always yields cfg.
func StaticSettings(cfg SettingsConfig) SettingsProvider {
	normalized := cfg.Normalize()
	return func() SettingsConfig { return normalized }
}

// ResolveLimit picks the effective limit for route. A route override, including an explicit
// 0 that exempts the route, wins over the company-wide limit.
func ResolveLimit(cfg SettingsConfig, route string) Decision {
	route = strings.TrimSpace(route)
	if route != "" {
		if limit, ok := cfg.Routes[route]; ok {
			if limit <= 0 {
				return Decision{}
			}
			return Decision{Limit: limit, Scope: ScopeCompanyRoute, Route: route}
		}
	}
	if cfg.Limit > 0 {
		return Decision{Limit: cfg.Limit, Scope: ScopeCompany}
	}
	return Decision{}
}
