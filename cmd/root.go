package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bomimport",
	Short: "bomimport is a CLI tool for importing CycloneDX SBOMs into a catalog",
	Long:  `bomimport reconciles CycloneDX SBOM components into a catalog of projects, components, releases and packages, creating entities only where no equivalent already exists.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
