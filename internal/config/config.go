package config

import "time"

// Config holds deskgate configuration
type Config struct {
	Deskgate Deskgate `yaml:"deskgate"`
}

// Deskgate configuration
type Deskgate struct {
	HTTP      HTTP      `yaml:"http"`
	Auth      Auth      `yaml:"auth"`
	Sanitizer Sanitizer `yaml:"sanitizer"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Metrics   Metrics   `yaml:"metrics"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// HTTP configuration
type HTTP struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// MaxRequestSize bounds request bodies in bytes
	MaxRequestSize int64 `yaml:"maxRequestSize"`
}

// Auth configuration for admin tokens and the admin account
type Auth struct {
	// Secret signs admin tokens; empty disables every admin route
	Secret        string        `yaml:"secret"`
	Issuer        string        `yaml:"issuer"`
	Audience      string        `yaml:"audience"`
	TokenTTL      time.Duration `yaml:"tokenTTL"`
	AdminEmail    string        `yaml:"adminEmail"`
	AdminPassword string        `yaml:"adminPassword"`
	AdminRole     string        `yaml:"adminRole"`
}

// Sanitizer configuration
type Sanitizer struct {
	MaxDepth int `yaml:"maxDepth"`
	MaxNodes int `yaml:"maxNodes"`
}

// RateLimit configuration
type RateLimit struct {
	// Storage is "memory" or "redis"
	Storage         string        `yaml:"storage"`
	KeyPrefix       string        `yaml:"keyPrefix"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
	Redis           *Redis        `yaml:"redis,omitempty"`
	Groups          Groups        `yaml:"groups"`
}

// Groups holds the independent limiter groups
type Groups struct {
	API    Group `yaml:"api"`
	Login  Group `yaml:"login"`
	Ingest Group `yaml:"ingest"`
	Debug  Group `yaml:"debug"`
}

// Group configures one limiter
type Group struct {
	Window  time.Duration `yaml:"window"`
	Max     int           `yaml:"max"`
	MaxKeys int           `yaml:"maxKeys"`
	// Paths are exact paths or prefixes ending in *
	Paths []string `yaml:"paths"`
}

// Named returns the groups in the order their limiters are applied
func (g *Groups) Named() []NamedGroup {
	return []NamedGroup{
		{Name: "api", Group: g.API},
		{Name: "login", Group: g.Login},
		{Name: "ingest", Group: g.Ingest},
		{Name: "debug", Group: g.Debug},
	}
}

// NamedGroup pairs a group with its name
type NamedGroup struct {
	Name string
	Group
}

// Redis configuration
type Redis struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"poolSize"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	TLS          bool          `yaml:"tls"`
}

// Metrics configuration
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Telemetry configuration
type Telemetry struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"serviceName"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sampleRate"`
}
