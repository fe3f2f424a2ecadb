package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/viveksahu26/bomimport/pkg/engine"
	"github.com/viveksahu26/bomimport/pkg/logger"
	"github.com/viveksahu26/bomimport/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CycloneDX SBOMs into the catalog",
	Long: `Import reads CycloneDX SBOMs from a file, a folder, or an S3 bucket and
reconciles their components into the catalog. Components sharing the same
source repository collapse into one catalog component; each distinct version
becomes a release, and package-manager coordinates become linked packages.`,
	Args: cobra.NoArgs,
	RunE: importSBOM,
	Example: `  # Import a single SBOM into a new project
  bomimport import --file sbom.cdx.json --user-email dev@example.com --user-department DEP

  # Import every SBOM in a folder into an existing project
  bomimport import --folder ./sboms --recursive --project-id 3f6c...

  # Watch a folder and import SBOMs as they arrive
  bomimport import --folder ./drop --watch

  # Import from S3, creating releases only
  bomimport import --s3-bucket my-sboms --s3-prefix team/ --s3-region us-east-1 --release-only`,
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Source flags (exactly one source is required)
	importCmd.Flags().String("file", "", "Path of a single CycloneDX SBOM file (.json or .xml)")
	importCmd.Flags().String("folder", "", "Folder to scan for CycloneDX SBOMs")
	importCmd.Flags().Bool("recursive", false, "Scan the folder recursively")
	importCmd.Flags().Bool("watch", false, "Watch the folder and import SBOMs as they arrive")
	importCmd.Flags().String("s3-bucket", "", "S3 bucket to fetch SBOMs from")
	importCmd.Flags().String("s3-prefix", "", "S3 object prefix")
	importCmd.Flags().String("s3-region", "", "S3 bucket region")
	importCmd.Flags().String("s3-access-key", "", "AWS access key (falls back to the default credential chain)")
	importCmd.Flags().String("s3-secret-key", "", "AWS secret key")

	// Catalog flags
	importCmd.Flags().String("catalog", "catalog.db", "Path of the sqlite catalog database")
	importCmd.Flags().String("project-id", "", "Import into this existing project instead of creating one")
	importCmd.Flags().String("user-email", "", "Email recorded on created entities")
	importCmd.Flags().String("user-department", "", "Department recorded on created projects and releases")

	// General flags
	importCmd.Flags().Bool("release-only", false, "Create one component and release per BOM component, no grouping and no packages")
	importCmd.Flags().Bool("dry-run", false, "Run the full reconciliation against an in-memory catalog, persisting nothing")
	importCmd.Flags().BoolP("debug", "D", false, "Enable debug logging")
	importCmd.Flags().Bool("json-log", false, "Emit logs as JSON")
}

func importSBOM(cmd *cobra.Command, args []string) error {
	// Suppress automatic usage message for non-flag errors
	cmd.SilenceUsage = true

	debug, _ := cmd.Flags().GetBool("debug")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	logger.InitLogger(debug, jsonLog)
	defer logger.DeinitLogger()
	defer logger.Sync()

	ctx := logger.WithLogger(context.Background())

	logger.LogDebug(ctx, "Starting importSBOM")
	cmd.Flags().Visit(func(f *pflag.Flag) {
		logger.LogDebug(ctx, "flag", "name", f.Name, "value", f.Value.String())
	})

	config, err := parseConfig(cmd)
	if err != nil {
		return err
	}

	logger.LogDebug(ctx, "configuration", "value", config)

	if err := engine.ImportRun(ctx, config); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func parseConfig(cmd *cobra.Command) (types.Config, error) {
	initConfig()

	file, _ := cmd.Flags().GetString("file")
	folder, _ := cmd.Flags().GetString("folder")
	recursive, _ := cmd.Flags().GetBool("recursive")
	watch, _ := cmd.Flags().GetBool("watch")
	s3Bucket, _ := cmd.Flags().GetString("s3-bucket")
	s3Prefix, _ := cmd.Flags().GetString("s3-prefix")
	s3Region, _ := cmd.Flags().GetString("s3-region")
	s3AccessKey, _ := cmd.Flags().GetString("s3-access-key")
	s3SecretKey, _ := cmd.Flags().GetString("s3-secret-key")
	catalogPath, _ := cmd.Flags().GetString("catalog")
	projectID, _ := cmd.Flags().GetString("project-id")
	userEmail, _ := cmd.Flags().GetString("user-email")
	userDepartment, _ := cmd.Flags().GetString("user-department")
	releaseOnly, _ := cmd.Flags().GetBool("release-only")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	debug, _ := cmd.Flags().GetBool("debug")
	jsonLog, _ := cmd.Flags().GetBool("json-log")

	// environment variables fill unset flags
	if s3AccessKey == "" {
		s3AccessKey = viper.GetString("AWS_ACCESS_KEY_ID")
	}
	if s3SecretKey == "" {
		s3SecretKey = viper.GetString("AWS_SECRET_ACCESS_KEY")
	}
	if userEmail == "" {
		userEmail = viper.GetString("BOMIMPORT_USER_EMAIL")
	}
	if userDepartment == "" {
		userDepartment = viper.GetString("BOMIMPORT_USER_DEPARTMENT")
	}
	if !cmd.Flags().Changed("catalog") && viper.GetString("BOMIMPORT_CATALOG") != "" {
		catalogPath = viper.GetString("BOMIMPORT_CATALOG")
	}
	if !releaseOnly {
		releaseOnly = viper.GetBool("BOMIMPORT_RELEASE_ONLY")
	}

	sources := 0
	for _, set := range []bool{file != "", folder != "", s3Bucket != ""} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return types.Config{}, fmt.Errorf("missing required flags: one of --file, --folder, or --s3-bucket\n\nUse 'bomimport import --help' for usage details")
	}
	if sources > 1 {
		return types.Config{}, fmt.Errorf("conflicting flags: --file, --folder, and --s3-bucket are mutually exclusive")
	}

	if watch && folder == "" {
		return types.Config{}, fmt.Errorf("--watch requires --folder")
	}
	if recursive && folder == "" {
		return types.Config{}, fmt.Errorf("--recursive requires --folder")
	}
	if s3Bucket != "" && s3Region == "" {
		return types.Config{}, fmt.Errorf("missing required flags: --s3-region is required with --s3-bucket")
	}

	strategy := types.StrategyReleaseAndPackage
	if releaseOnly {
		strategy = types.StrategyReleaseOnly
	}

	config := types.Config{
		FilePath:    file,
		FolderPath:  folder,
		Recursive:   recursive,
		Watch:       watch,
		S3Bucket:    s3Bucket,
		S3Prefix:    s3Prefix,
		S3Region:    s3Region,
		S3AccessKey: s3AccessKey,
		S3SecretKey: s3SecretKey,
		CatalogPath: catalogPath,
		ProjectID:   projectID,
		Strategy:    strategy,
		User: types.User{
			Email:      userEmail,
			Department: userDepartment,
		},
		DryRun:  dryRun,
		Debug:   debug,
		JSONLog: jsonLog,
	}

	return config, nil
}

func initConfig() {
	// Set up Viper to automatically bind environment variables
	viper.AutomaticEnv()

	// Load .env file if it exists
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.LogDebug(context.Background(), "No .env file found, relying on environment variables")
		} else {
			logger.LogError(context.Background(), err, "Failed to read .env file")
		}
	} else {
		logger.LogDebug(context.Background(), "Loaded .env file for configuration")
	}
}
