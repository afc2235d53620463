package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ticketron/ticketron/internal/fixtures"
	"github.com/ticketron/ticketron/internal/service"
)

func newLoadDataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loaddata <fixture.yaml>",
		Short: "Load statuses, clients, tickets and tasks from YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			doc, err := fixtures.Decode(file)
			if err != nil {
				return err
			}
			return withServices(cmd.Context(), func(ctx context.Context, svc *service.Services) error {
				summary, err := fixtures.Load(ctx, doc, svc)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", summary)
				return nil
			})
		},
	}
}
