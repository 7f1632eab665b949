package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configBaseName = "sampleload"
	envPrefix      = "SAMPLELOAD"

	KitKey           = "kit"
	VerifyKey        = "verify"
	LogFilenameKey   = "log.filename"
	LogLevelKey      = "log.level"
	LogVerboseKey    = "log.verbose"
	LogMaxSizeKey    = "log.max_size"
	LogMaxBackupsKey = "log.max_backups"
	LogMaxAgeKey     = "log.max_age"
	LogCompressKey   = "log.compress"

	defaultLogLevel      = "info"
	defaultLogMaxSize    = 5
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// FlagBindings maps config keys to the command-line flags that override them.
var FlagBindings = map[string]string{
	KitKey:         "kit",
	VerifyKey:      "verify",
	LogFilenameKey: "log-file",
	LogVerboseKey:  "verbose",
}

type LogConfig struct {
	Filename   string
	Level      string
	Verbose    bool
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type Config struct {
	// File is the config file that was read, empty when none was found.
	File    string
	KitPath string
	Verify  bool
	Log     LogConfig
}

// DefaultDir returns the per-user directory for the config and kit files.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, configBaseName)
}

// DefaultCacheDir returns the per-user directory for logs and locks.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(dir, configBaseName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KitKey, filepath.Join(DefaultDir(), "kit.yaml"))
	v.SetDefault(VerifyKey, false)
	v.SetDefault(LogFilenameKey, filepath.Join(DefaultCacheDir(), configBaseName+".log"))
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(LogVerboseKey, false)
	v.SetDefault(LogMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(LogMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(LogMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(LogCompressKey, defaultLogCompress)
}

// Load resolves configuration from defaults, the config file, SAMPLELOAD_*
// environment variables and, when flags is non-nil, the bound flags.
// A missing default config file is not an error; a missing explicit cfgFile is.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configBaseName)
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range FlagBindings {
			if err := bindFlagToConfig(v, flags.Lookup(name), key); err != nil {
				return nil, err
			}
		}
	}

	return &Config{
		File:    v.ConfigFileUsed(),
		KitPath: v.GetString(KitKey),
		Verify:  v.GetBool(VerifyKey),
		Log: LogConfig{
			Filename:   v.GetString(LogFilenameKey),
			Level:      v.GetString(LogLevelKey),
			Verbose:    v.GetBool(LogVerboseKey),
			MaxSize:    v.GetInt(LogMaxSizeKey),
			MaxBackups: v.GetInt(LogMaxBackupsKey),
			MaxAge:     v.GetInt(LogMaxAgeKey),
			Compress:   v.GetBool(LogCompressKey),
		},
	}, nil
}

// bindFlagToConfig wires a flag to a viper key so the flag wins when set.
// Commands that do not declare the flag are skipped.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) error {
	if flag == nil {
		return nil
	}
	return v.BindPFlag(key, flag)
}
