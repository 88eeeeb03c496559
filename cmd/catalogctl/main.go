// Command catalogctl 目录服务的命令行客户端
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/MorseWayne/catalog_shop/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
