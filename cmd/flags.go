package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(def string, choices ...string) *choiceValue {
	return &choiceValue{value: def, choices: choices}
}

func (c *choiceValue) String() string { return c.value }

func (c *choiceValue) Type() string { return "string" }

func (c *choiceValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, choice := range c.choices {
		if s == choice {
			c.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
}

func newLogLevelValue(def string) *choiceValue {
	return newChoiceValue(def, "debug", "info", "warn", "warning", "error")
}

// bindFlags binds flags of cmd to viper keys. It runs when the command runs
// so that commands sharing a key do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flag, key := range bindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// addServerFlags adds the listen flags shared by serve.
func addServerFlags(fs *pflag.FlagSet) {
	fs.IntP("port", "s", 8443, "Port to serve on")
	fs.String("host", "0.0.0.0", "Host to bind to")
	fs.Int("max-connections", 0, "Maximum concurrent connections (0 means unlimited)")
}
