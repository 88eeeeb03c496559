package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/database"
	"github.com/MorseWayne/catalog_shop/internal/importer"
	"github.com/MorseWayne/catalog_shop/internal/logger"
)

type importOptions struct {
	file       string
	attributes string
	migrate    bool
}

// NewImportCommand 将 CSV / XLSX 目录直接写入数据库；连接参数取自 DB_* 环境变量
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV or XLSX catalog into the database",
		Long: `Import a CSV or XLSX catalog directly into the database configured by the DB_* environment variables.

Products that already exist are skipped. Rows that fail are reported and skipped.
Attribute types come from the --attributes YAML registry, or are inferred from the values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "catalog file (.csv or .xlsx)")
	cmd.Flags().StringVar(&opts.attributes, "attributes", "", "attribute type registry (YAML)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "run pending migrations before importing")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *importOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "catalogctl", cfg.App.Version)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	registry := importer.DefaultRegistry()
	if opts.attributes != "" {
		if registry, err = importer.LoadRegistry(opts.attributes); err != nil {
			return err
		}
	}
	table, err := importer.ReadFile(opts.file)
	if err != nil {
		return err
	}

	db, err := database.New(cfg, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close database", zap.Error(err))
		}
	}()
	if opts.migrate {
		if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	stats, err := importer.Import(cmd.Context(), db.DB, table, registry, lg)
	if err != nil {
		return err
	}
	if err := rootOpts.output(cmd).ImportStats(stats); err != nil {
		return err
	}
	if stats.Products == 0 && stats.Failed > 0 {
		return errors.New("no products were imported")
	}
	return nil
}
