package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.eggybyte.com/foundry/internal/catalog"
	"go.eggybyte.com/foundry/internal/templates"
)

var catalogFile string

// catalogCmd prints the effective lookup tables.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the effective catalog as YAML",
	Long: `Print the lookup tables used for generation: reserved names, executable
scripts, per-architecture package formulas, persistence traits, connection
strings and dependency lists.

Use the output as a starting point for a --catalog override file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(catalogFile)
		if err != nil {
			return err
		}
		data, err := cat.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var templatesDir string

// templatesCmd lists the template corpus.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the template corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus, err := loadCorpus(templatesDir)
		if err != nil {
			return err
		}
		names, err := templates.ListTemplates(corpus)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(templatesCmd)

	catalogCmd.Flags().StringVar(&catalogFile, "catalog", "", "Catalog YAML file merged over the built-in tables")
	templatesCmd.Flags().StringVar(&templatesDir, "templates", "", "Template directory to use instead of the embedded corpus")
}

// loadCatalog returns the built-in catalog, or the file merged over it.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}
