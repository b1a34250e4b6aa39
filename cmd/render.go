package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/loomkit/loom/internal/config"
)

var (
	renderDataFile string
	renderOutFile  string
)

var renderCmd = &cobra.Command{
	Use:     "render <template>",
	Aliases: []string{"r"},
	Short:   "Render a template to stdout or a file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		mgr, err := buildManager(cfg, log)
		if err != nil {
			return err
		}

		vars, err := loadVars(renderDataFile)
		if err != nil {
			return err
		}

		out := os.Stdout
		if renderOutFile != "" {
			f, err := os.Create(renderOutFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return mgr.Process(args[0], vars, out)
	},
}

// loadVars reads the render context variables from a YAML file.
func loadVars(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	var vars map[string]interface{}
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parsing data file %q: %w", path, err)
	}
	return vars, nil
}

func init() {
	renderCmd.Flags().StringVarP(&renderDataFile, "data", "d", "", "YAML file with template variables")
	renderCmd.Flags().StringVarP(&renderOutFile, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(renderCmd)
}
