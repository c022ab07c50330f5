package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug           = "debug"
	ConfigSearchDepth     = "search-depth"
	ConfigIDBaseDepth     = "id-base-depth"
	ConfigMaxSearchDepth  = "max-search-depth"
	ConfigTimeFraction    = "time-fraction"
	ConfigEdgeWeight      = "edge-weight"
	ConfigCornerWeight    = "corner-weight"
	ConfigXSquareWeight   = "xsquare-weight"
	ConfigTTCapacity      = "tt-capacity"
	ConfigTTFractionOfMem = "tt-fraction-of-mem"
	ConfigPrewarmDepth    = "prewarm-depth"
	ConfigCPUProfile      = "cpu-profile"
	ConfigMemProfile      = "mem-profile"
	ConfigAutoplayLog     = "autoplay-log"
	ConfigFile            = "config-file"
)

// Config is the engine's configuration. Values come from, in increasing
// priority: defaults, an optional YAML config file, OTHELLO_* environment
// variables, and command-line flags.
type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigSearchDepth, 6)
	v.SetDefault(ConfigIDBaseDepth, 2)
	v.SetDefault(ConfigMaxSearchDepth, 60)
	v.SetDefault(ConfigTimeFraction, 0.05)
	v.SetDefault(ConfigEdgeWeight, 2)
	v.SetDefault(ConfigCornerWeight, 8)
	v.SetDefault(ConfigXSquareWeight, -2)
	v.SetDefault(ConfigTTCapacity, 100000)
	v.SetDefault(ConfigTTFractionOfMem, 0.0)
	v.SetDefault(ConfigPrewarmDepth, 4)
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigAutoplayLog, "/tmp/othello-autoplay.csv")
}

// DefaultConfig returns a config holding only the defaults. Tests and
// library callers use it directly.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load builds the config from command-line args and the environment.
func (c *Config) Load(args []string) error {
	return c.LoadFlags(pflag.NewFlagSet("othello", pflag.ContinueOnError), args)
}

// LoadFlags is Load with a flag set the caller may already have added its
// own flags to. Those are bound and read back through the config like the
// rest.
func (c *Config) LoadFlags(fs *pflag.FlagSet, args []string) error {
	v := viper.New()
	setDefaults(v)

	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigSearchDepth, 6, "search depth when no time limit is given")
	fs.Int(ConfigIDBaseDepth, 2, "first depth of iterative deepening")
	fs.Int(ConfigMaxSearchDepth, 60, "deepest iterative deepening will go")
	fs.Float64(ConfigTimeFraction, 0.05, "fraction of the remaining game time allotted to one move")
	fs.Int(ConfigEdgeWeight, 2, "evaluator weight of rim discs")
	fs.Int(ConfigCornerWeight, 8, "evaluator weight of corner discs")
	fs.Int(ConfigXSquareWeight, -2, "evaluator weight of corner-adjacent discs")
	fs.Int(ConfigTTCapacity, 100000, "transposition cache capacity in entries")
	fs.Float64(ConfigTTFractionOfMem, 0, "if > 0, size the transposition cache from this fraction of system memory")
	fs.Int(ConfigPrewarmDepth, 4, "depth of the startup searches that fill the cache; 0 disables")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this path")
	fs.String(ConfigMemProfile, "", "write a memory profile to this path")
	fs.String(ConfigAutoplayLog, "/tmp/othello-autoplay.csv", "autoplay turn log path")
	fs.String(ConfigFile, "", "optional YAML config file")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	v.SetEnvPrefix("othello")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(ConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	c.Viper = v
	return nil
}

// SanitizedSettings is the settings map, safe to log.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
