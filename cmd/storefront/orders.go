package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yuimaru-ship/storefront/app/models"
	"github.com/yuimaru-ship/storefront/app/routes"
	"github.com/yuimaru-ship/storefront/app/services"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect orders through the order API",
	}
	cmd.AddCommand(newOrdersListCmd(), newOrdersLabelCmd())
	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var storeID, token string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the orders of a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := routes.NewServices(nil).Orders
			orders, err := client.FetchOrders(cmd.Context(), storeID, token)
			if err != nil {
				return err
			}
			visible := services.VisibleOrders(orders)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), visible)
			}
			return printOrders(cmd.OutOrStdout(), visible)
		},
	}
	cmd.Flags().StringVar(&storeID, "store", "", "store ID")
	cmd.Flags().StringVar(&token, "token", "", "access token sent as a bearer header")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print normalized orders as JSON")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func newOrdersLabelCmd() *cobra.Command {
	var storeID, orderID string

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Print the shipping-label summary of one order",
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := routes.NewServices(nil).Orders.FetchLabel(cmd.Context(), storeID, orderID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), label)
		},
	}
	cmd.Flags().StringVar(&storeID, "store", "", "store ID")
	cmd.Flags().StringVar(&orderID, "order", "", "order ID")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

func printOrders(out io.Writer, orders []models.Order) error {
	st := services.ComputeStats(orders)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tRECIPIENT\tWEIGHT(kg)\tPRICE\tBOX\tSTATE")
	for _, o := range orders {
		box := "-"
		p := o.FirstParcel()
		if p.Length != "" {
			box = fmt.Sprintf("%s×%s×%s", p.Length, p.Width, p.Height)
		}
		state := "pending"
		if o.IsComplete() {
			state = "ready"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.OrderID, dash(o.ToAddress.FullName), dash(o.FinalWeight), dash(o.TotalPrice), box, state)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\ntotal %d, pending %d, ready %d, shipped %d\n", st.Total, st.Pending, st.Complete, st.Shipped)
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
