// Package config fills command line flags from the environment and from a
// YAML config file.
//
// A flag not given on the command line takes its value from the environment
// variable PEG_<COMMAND>_<FLAG> (dashes become underscores), then from the key
// <command>.<flag> of the config file, then from the top-level key <flag>.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFile is read when present and no other config file is named.
const DefaultFile = "peg.yaml"

const envPrefix = "peg"

var errorMessagePrefix = "error mapping configuration to command flags"

// Apply sets unchanged flags of command. file may be empty. A missing file is
// an error only when mustExist is set.
func Apply(command *cobra.Command, file string, mustExist bool) error {
	env := viper.New()
	env.SetEnvPrefix(envPrefix + "_" + command.Name())
	env.AutomaticEnv()

	conf := viper.New()
	if file != "" {
		conf.SetConfigFile(file)
		conf.SetConfigType("yaml")
		if err := conf.ReadInConfig(); err != nil {
			if mustExist || !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}

	var errs []string
	command.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		val, ok := lookup(env, conf, command.Name(), f.Name)
		if !ok {
			return
		}
		if err := command.Flags().Set(f.Name, val); err != nil {
			errs = append(errs, err.Error())
		}
	})

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s", errorMessagePrefix, strings.Join(errs, "; "))
}

func lookup(env, conf *viper.Viper, command, flag string) (string, bool) {
	envKey := strings.ReplaceAll(flag, "-", "_")
	for _, src := range []struct {
		v   *viper.Viper
		key string
	}{
		{env, envKey},
		{conf, command + "." + flag},
		{conf, flag},
	} {
		if src.v.IsSet(src.key) {
			return stringify(src.v.Get(src.key)), true
		}
	}
	return "", false
}

func stringify(val any) string {
	if items, ok := val.([]any); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(val)
}

// Exists reports whether file names a readable regular file.
func Exists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}
