// Package config binds the george process configuration to cobra flags and
// viper-resolved environment variables through a struct-tag convention:
// every field carries a `default` and `help` tag, and is overridable by
// both a flag and a GEORGE_DB_-prefixed env var.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment-variable prefix every george config field is
// bound under.
const EnvPrefix = "GEORGE_DB"

// Config holds every process tunable plus the bootstrap fields Master's
// startup sequence reads (data_dir, thread_count).
type Config struct {
	DataDir          string `default:"" help:"root directory for all database storage"`
	LimitOpenFile    int    `default:"1024" help:"max open file descriptors"`
	LogDir           string `default:"" help:"directory for log files"`
	LogFileMaxSizeMB int    `default:"100" help:"max size in MB per log file before rotation"`
	LogFileMaxCount  int    `default:"10" help:"max rotated log files retained"`
	LogLevel         string `default:"info" help:"zap log level (debug, info, warn, error)"`
	Production       bool   `default:"false" help:"use zap's production JSON encoder"`
	ThreadCount      int    `default:"8" help:"size of the shared worker pool"`
}

func fieldFlagName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func envName(flagName string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Bind registers one pflag per Config field on cmd, seeded from its
// `default` tag, and wires viper to prefer the GEORGE_DB_<FIELD> env var
// over the flag's own default.
func Bind(cmd *cobra.Command, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		flagName := fieldFlagName(field.Name)
		help := field.Tag.Get("help")
		def := field.Tag.Get("default")

		switch field.Type.Kind() {
		case reflect.String:
			cmd.Flags().String(flagName, def, help)
		case reflect.Int, reflect.Int64:
			n, _ := strconv.ParseInt(def, 10, 64)
			cmd.Flags().Int64(flagName, n, help)
		case reflect.Bool:
			b, _ := strconv.ParseBool(def)
			cmd.Flags().Bool(flagName, b, help)
		default:
			return fmt.Errorf("config: unsupported field kind %s for %s", field.Type.Kind(), field.Name)
		}
		if err := viper.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
		if err := viper.BindEnv(flagName, envName(flagName)); err != nil {
			return err
		}
	}
	return nil
}

// Exec loads GEORGE_DB_CONFIG (if set) as a YAML source, then fills cfg from
// viper's resolved values — env vars override the YAML file, which overrides
// flag defaults.
func Exec(cfg *Config) error {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		flagName := fieldFlagName(field.Name)
		fv := v.Field(i)
		switch field.Type.Kind() {
		case reflect.String:
			fv.SetString(viper.GetString(flagName))
		case reflect.Int, reflect.Int64:
			fv.SetInt(viper.GetInt64(flagName))
		case reflect.Bool:
			fv.SetBool(viper.GetBool(flagName))
		}
	}
	return nil
}

// SaveConfig writes cfg as YAML to path, for `george-cli config save`-style
// commands.
func SaveConfig(cfg *Config, path string) error {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
