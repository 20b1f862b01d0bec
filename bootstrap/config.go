/*
Package bootstrap reads the process-level configuration every pli binary
needs before it can open a database connection or bind a socket: DB path,
Redis address, JWT secret, lock TTL, log level. This is deliberately
separate from the `config` package's runtime Config Store (C1) — viper
never touches the hot-reloadable scoring configuration described in
spec.md §4.1, it only bootstraps the process.
*/
package bootstrap

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Settings is the parsed process configuration.
type Settings struct {
	DBPath         string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	HTTPPort       int
	LockTTL        time.Duration
	LogLevel       string
	LogPretty      bool
	CORSOrigins    []string
	LeaderboardRPS float64
	MetricsPort    int
}

// Load reads PLI_* environment variables (and an optional ./config.yaml)
// into Settings, applying the same defaults the admin console ships with.
func Load() (Settings, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pli")

	v.SetEnvPrefix("PLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", "pli.db")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("http_port", 8080)
	v.SetDefault("lock_ttl_minutes", 90)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("leaderboard_rps", 50.0)
	v.SetDefault("metrics_port", 9090)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, eris.Wrap(err, "bootstrap: read config file")
		}
	}

	return Settings{
		DBPath:         v.GetString("db_path"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		JWTSecret:      v.GetString("jwt_secret"),
		HTTPPort:       v.GetInt("http_port"),
		LockTTL:        time.Duration(v.GetInt("lock_ttl_minutes")) * time.Minute,
		LogLevel:       v.GetString("log_level"),
		LogPretty:      v.GetBool("log_pretty"),
		CORSOrigins:    v.GetStringSlice("cors_origins"),
		LeaderboardRPS: v.GetFloat64("leaderboard_rps"),
		MetricsPort:    v.GetInt("metrics_port"),
	}, nil
}
