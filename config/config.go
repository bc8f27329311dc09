package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory where the daemon keeps its
	// session store.
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// InMemoryDbKey makes the daemon run with a volatile store instead of
	// the on-disk one. Useful for local sandboxing only.
	InMemoryDbKey = "INMEMORY_DB"
	// SessionExpiryKey is the duration in seconds after which a session
	// still below quorum is moved to the terminal Abandoned status. Zero
	// disables the sweeper and keeps dangling sessions alive forever.
	SessionExpiryKey = "SESSION_EXPIRY"
	// SweepIntervalKey is the interval in seconds between two abandonment
	// sweeps.
	SweepIntervalKey = "SWEEP_INTERVAL"
	// SendRateKey is the number of outbound messages per second the daemon
	// allows towards the chat platform.
	SendRateKey = "SEND_RATE"
	// StatsIntervalKey defines the interval in seconds for printing basic
	// process statistics. Zero disables them.
	StatsIntervalKey = "STATS_INTERVAL"

	// DbLocation is the subdirectory of the datadir holding the store.
	DbLocation = "db"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("ESCROWD")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(InMemoryDbKey, false)
	vip.SetDefault(SessionExpiryKey, 24*60*60)
	vip.SetDefault(SweepIntervalKey, 60)
	vip.SetDefault(SendRateKey, 20)
	vip.SetDefault(StatsIntervalKey, 0)

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

// GetString returns the value of the key as string.
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt returns the value of the key as int.
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetBool returns the value of the key as bool.
func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDuration returns the value of the key, expressed in seconds, as a
// time.Duration.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

// GetDatadir returns the data directory of the daemon.
func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetDbDir returns the directory of the session store.
func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func validate() error {
	if lvl := vip.GetInt(LogLevelKey); lvl < 0 || lvl > 6 {
		return fmt.Errorf("log level must be in range [0, 6]")
	}
	if vip.GetInt(SendRateKey) <= 0 {
		return fmt.Errorf("send rate must be positive")
	}
	if vip.GetInt(SessionExpiryKey) < 0 {
		return fmt.Errorf("session expiry must not be negative")
	}
	if vip.GetInt(SessionExpiryKey) > 0 && vip.GetInt(SweepIntervalKey) <= 0 {
		return fmt.Errorf("sweep interval must be positive when session expiry is set")
	}
	return nil
}

func initDatadir() error {
	if vip.GetBool(InMemoryDbKey) {
		return nil
	}
	return os.MkdirAll(GetDbDir(), 0755)
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".escrowd"
	}
	return filepath.Join(home, ".escrowd")
}
