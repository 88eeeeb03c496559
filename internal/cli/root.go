// Package cli 实现 catalogctl 命令行：浏览目录、查看过滤项、与搜索助手对话、导入目录。
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/MorseWayne/catalog_shop/internal/client"
)

// RootOptions 全局参数
type RootOptions struct {
	Server string
	Format string // "text" | "json"
}

// ValidFormats 支持的输出格式
var ValidFormats = []string{"text", "json"}

const defaultServer = "http://localhost:8080"

// NewRootCommand 创建 catalogctl 根命令
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Browse and manage the product catalog",
		Long:  "Command line client for the catalog service: list and filter products, inspect filters, chat with the search assistant and import catalogs.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	server := os.Getenv("CATALOG_SERVER_URL")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVarP(&opts.Server, "server", "s", server, "catalog server base URL (env CATALOG_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewFiltersCommand(opts))
	cmd.AddCommand(NewChatCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))

	return cmd
}

func (o *RootOptions) client() (*client.Client, error) {
	return client.New(o.Server, nil)
}

func (o *RootOptions) output(cmd *cobra.Command) *Output {
	return &Output{Format: o.Format, Writer: cmd.OutOrStdout()}
}
