package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuimaru-ship/storefront/app/routes"
	"github.com/yuimaru-ship/storefront/pkg/app"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Yuimaru Ship store dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	application := app.New().Routes(routes.Register(routes.NewServices(nil)))

	root.AddCommand(application.ServeCommand())
	root.AddCommand(application.RouteListCommand())
	root.AddCommand(newOrdersCmd())
	return root
}
