package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	JwtTTL         time.Duration `yaml:"jwt_ttl"`
	AllowedOrigins []string      `yaml:"allowed_origins"`

	// Lockout tracker
	MaxLoginAttempts int           `yaml:"max_login_attempts"`
	LockoutDuration  time.Duration `yaml:"lockout_duration"`

	// Suspicious-activity detector
	SuspiciousUsersPerIP  int           `yaml:"suspicious_users_per_ip"`
	SuspiciousIPsPerUser  int           `yaml:"suspicious_ips_per_user"`
	ActivityLookback      time.Duration `yaml:"activity_lookback"`
	ActivityRetention     time.Duration `yaml:"activity_retention"`
	ActivitySweepInterval time.Duration `yaml:"activity_sweep_interval"`

	MaxWalletsPerUser int           `yaml:"max_wallets_per_user"`
	RpcTimeout        time.Duration `yaml:"rpc_timeout"`
	BcryptCost        int           `yaml:"bcrypt_cost"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
	Rpc    Rpc    `yaml:"rpc"`
	Admin  Admin  `yaml:"admin"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Rpc struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Wallet   string `yaml:"wallet"`
}

type Admin struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.normalizeDurations()
	cfg.setDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// normalizeDurations converts the yaml duration fields, which are plain
// integer seconds, into time.Duration values.
func (c *Config) normalizeDurations() {
	c.Public.JwtTTL *= time.Second
	c.Public.LockoutDuration *= time.Second
	c.Public.ActivityLookback *= time.Second
	c.Public.ActivityRetention *= time.Second
	c.Public.ActivitySweepInterval *= time.Second
	c.Public.RpcTimeout *= time.Second
}

// setDefaults fills unset thresholds so a minimal public.yaml still yields a
// working service.
func (c *Config) setDefaults() {
	if c.Public.MaxLoginAttempts == 0 {
		c.Public.MaxLoginAttempts = 5
	}
	if c.Public.LockoutDuration == 0 {
		c.Public.LockoutDuration = 15 * time.Minute
	}
	if c.Public.SuspiciousUsersPerIP == 0 {
		c.Public.SuspiciousUsersPerIP = 3
	}
	if c.Public.SuspiciousIPsPerUser == 0 {
		c.Public.SuspiciousIPsPerUser = 5
	}
	if c.Public.ActivityLookback == 0 {
		c.Public.ActivityLookback = 24 * time.Hour
	}
	if c.Public.ActivityRetention == 0 {
		c.Public.ActivityRetention = 30 * 24 * time.Hour
	}
	if c.Public.ActivitySweepInterval == 0 {
		c.Public.ActivitySweepInterval = 24 * time.Hour
	}
	if c.Public.MaxWalletsPerUser == 0 {
		c.Public.MaxWalletsPerUser = 5
	}
	if c.Public.RpcTimeout == 0 {
		c.Public.RpcTimeout = 30 * time.Second
	}
	if c.Public.JwtTTL == 0 {
		c.Public.JwtTTL = 24 * time.Hour
	}
}

// applyEnvOverrides lets deployment environments inject secrets without
// touching private.yaml. Values come from the process environment, typically
// populated from a .env file at startup.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Private.JwtKey = v
	}
	if v := os.Getenv("PG_PASSWORD"); v != "" {
		c.Private.Pg.Password = v
	}
	if v := os.Getenv("AEGISUM_RPC_USER"); v != "" {
		c.Private.Rpc.User = v
	}
	if v := os.Getenv("AEGISUM_RPC_PASSWORD"); v != "" {
		c.Private.Rpc.Password = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.Private.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		c.Private.Admin.PasswordHash = v
	}
}
