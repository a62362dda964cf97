package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"cinema-kiosk/model"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List the latest confirmed orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		d, err := newDeps(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		orders, err := d.store.RecentOrders(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read orders: %w", err)
		}
		if len(orders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
			return nil
		}
		renderOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

func renderOrders(out io.Writer, orders []model.Order) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Order", "Time", "Film", "Seats", "Total"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 24},
	})
	for _, order := range orders {
		t.AppendRow(table.Row{
			shortOrderID(order.ID),
			order.CreatedAt.Local().Format(time.DateTime),
			order.Film,
			strings.Join(order.SeatLabels(), ", "),
			fmt.Sprintf("R$ %.2f", order.Total),
		})
	}
	t.Render()
}
