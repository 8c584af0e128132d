package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configPathFlag bool

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "View the effective configuration",
	Long: `View the effective quay-pruner configuration.

Values come from ~/.config/quay-pruner/config.yaml when it exists, then
QUAYPRUNER_* environment variables, then built-in defaults. The file is
never written.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key.`,
	Example: `  # Show all config
  quay-pruner config

  # Show value for a specific key
  quay-pruner config registry.repository

  # Show the config file location
  quay-pruner config --path`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configPathFlag, "path", false, "print the config file path")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	loader := LoaderFromContext(cmd.Context())
	if loader == nil {
		return fmt.Errorf("config loader not initialized")
	}

	out := cmd.OutOrStdout()

	if configPathFlag {
		_, err := fmt.Fprintln(out, loader.Path())
		return err
	}

	settings := loader.Settings()
	if len(args) == 0 {
		return writeYAML(out, settings)
	}

	value, ok := lookupKey(settings, args[0])
	if !ok {
		return fmt.Errorf("unknown config key %q", args[0])
	}
	if m, isMap := value.(map[string]any); isMap {
		return writeYAML(out, m)
	}
	_, err := fmt.Fprintln(out, value)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return enc.Close()
}

// lookupKey resolves a dotted key such as "registry.page_size".
func lookupKey(settings map[string]any, key string) (any, bool) {
	var current any = settings
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
