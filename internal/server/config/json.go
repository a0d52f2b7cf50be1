package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/lumina-social/lumina/internal/flagx"
	"github.com/lumina-social/lumina/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP       string         `json:"endpoint_addr_http"`
	InstanceID             string         `json:"instance_id"`
	DatabaseDSN            string         `json:"database_dsn"`
	RedisAddr              string         `json:"redis_addr"`
	GeneralRefillPerSecond float64        `json:"general_refill_per_second"`
	GeneralBurstCapacity   float64        `json:"general_burst_capacity"`
	AuthRefillPerSecond    float64        `json:"auth_refill_per_second"`
	AuthBurstCapacity      float64        `json:"auth_burst_capacity"`
	LimiterCacheSize       int            `json:"limiter_cache_size"`
	SessionEpochBound      int64          `json:"session_epoch_bound"`
	UsernameMinLength      int            `json:"username_min_length"`
	UsernameMaxLength      int            `json:"username_max_length"`
	StorageFetchTimeout    timex.Duration `json:"storage_fetch_timeout"`
	SessionMaxAge          timex.Duration `json:"session_max_age"`
	SessionSweepInterval   timex.Duration `json:"session_sweep_interval"`
	LoginPath              string         `json:"login_path"`
	BcryptCost             int            `json:"bcrypt_cost"`
	CookieHashKey          string         `json:"cookie_hash_key"`
	CookieBlockKey         string         `json:"cookie_block_key"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file cannot be read or contains invalid JSON, the function panics;
// a broken configuration file must stop the process at startup.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.InstanceID = c.InstanceID
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.GeneralRefillPerSecond = c.GeneralRefillPerSecond
	config.GeneralBurstCapacity = c.GeneralBurstCapacity
	config.AuthRefillPerSecond = c.AuthRefillPerSecond
	config.AuthBurstCapacity = c.AuthBurstCapacity
	config.LimiterCacheSize = c.LimiterCacheSize
	config.SessionEpochBound = c.SessionEpochBound
	config.UsernameMinLength = c.UsernameMinLength
	config.UsernameMaxLength = c.UsernameMaxLength
	config.StorageFetchTimeout = time.Duration(c.StorageFetchTimeout.Duration)
	config.SessionMaxAge = time.Duration(c.SessionMaxAge.Duration)
	config.SessionSweepInterval = time.Duration(c.SessionSweepInterval.Duration)
	config.LoginPath = c.LoginPath
	config.BcryptCost = c.BcryptCost
	config.CookieHashKey = c.CookieHashKey
	config.CookieBlockKey = c.CookieBlockKey
}
