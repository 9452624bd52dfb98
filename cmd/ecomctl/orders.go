package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
	"github.com/vladislavdragonenkov/ecom/internal/pricing"
	"github.com/vladislavdragonenkov/ecom/internal/storage"
)

func newOrdersCmd(c *cli) *cobra.Command {
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Inspect stored orders",
	}

	var byPrice bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print every stored order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withFactory(ctx, func(f *storage.Factory) error {
				repo, err := f.Orders(ctx)
				if err != nil {
					return err
				}
				all, err := repo.ReadAll(ctx)
				if err != nil {
					return err
				}
				if byPrice {
					all = sortOrdersByPrice(all)
				}
				for _, o := range all {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), o.String()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&byPrice, "by-price", false, "order by component price, most expensive first")

	orders.AddCommand(list)
	return orders
}

// sortOrdersByPrice пересобирает агрегат каждого заказа и сортирует по его цене.
func sortOrdersByPrice(orders []domain.Order) []domain.Order {
	computers := make([]domain.Computer, len(orders))
	owner := make(map[domain.Computer]domain.Order, len(orders))
	for i, o := range orders {
		a := pricing.NewAssembly(o.Products)
		o.Attach(a)
		computers[i] = a
		owner[a] = o
	}
	pricing.SortByPrice(computers)

	sorted := make([]domain.Order, 0, len(orders))
	for _, c := range computers {
		sorted = append(sorted, owner[c])
	}
	return sorted
}
