package config

import (
	"flag"
	"os"
	"time"

	"github.com/lumina-social/lumina/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":8085")
//	-i string    instance identifier reported to clients
//	-d string    PostgreSQL DSN
//	-rd string   Redis address ("" disables the existence cache)
//	-gr float    general limiter refill rate, tokens per second
//	-gb float    general limiter burst capacity
//	-ar float    auth limiter refill rate, tokens per second
//	-ab float    auth limiter burst capacity
//	-un int      minimum username length
//	-ux int      maximum username length
//	-eb int      session epoch bound
//	-ft int      storage fetch timeout, seconds
//	-lp string   login redirect path
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - The fetch timeout is accepted as an integer in seconds and converted
//     to a time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-i", "-d", "-rd", "-gr", "-gb", "-ar", "-ab", "-un", "-ux", "-eb", "-ft", "-lp",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.InstanceID, "i", config.InstanceID, "instance identifier reported to clients")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "rd", config.RedisAddr, "redis address for the registration existence cache")

	fs.Float64Var(&config.GeneralRefillPerSecond, "gr", config.GeneralRefillPerSecond, "general limiter refill per second")
	fs.Float64Var(&config.GeneralBurstCapacity, "gb", config.GeneralBurstCapacity, "general limiter burst capacity")
	fs.Float64Var(&config.AuthRefillPerSecond, "ar", config.AuthRefillPerSecond, "auth limiter refill per second")
	fs.Float64Var(&config.AuthBurstCapacity, "ab", config.AuthBurstCapacity, "auth limiter burst capacity")

	fs.IntVar(&config.UsernameMinLength, "un", config.UsernameMinLength, "minimum username length")
	fs.IntVar(&config.UsernameMaxLength, "ux", config.UsernameMaxLength, "maximum username length")
	fs.Int64Var(&config.SessionEpochBound, "eb", config.SessionEpochBound, "session epoch bound")

	fetchTimeout := fs.Int("ft", int(config.StorageFetchTimeout.Seconds()), "storage fetch timeout (in seconds)")

	fs.StringVar(&config.LoginPath, "lp", config.LoginPath, "login redirect path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.StorageFetchTimeout = time.Duration(*fetchTimeout) * time.Second
}
