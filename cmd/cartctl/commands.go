package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/JustYuvaraj/fooddelivery/internal/pricing"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "cartctl",
		Short: "Browse restaurants, fill a cart and place food delivery orders",
		Long: `cartctl keeps a cart for a single restaurant between invocations and
places orders from it against the food delivery API.

The cart is stored according to CART_STORAGE (memory, sqlite or postgres).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context(), cmd.OutOrStdout())
		},
	}

	root.AddCommand(
		newRestaurantsCmd(a),
		newMenuCmd(a),
		newAddressesCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newUpdateCmd(a),
		newClearCmd(a),
		newShowCmd(a),
		newCheckoutCmd(a),
		newOrdersCmd(a),
		newCancelCmd(a),
		newReorderCmd(a),
		newTrackCmd(a),
	)
	return root
}

func newRestaurantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "List restaurants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurants, err := a.api.ListRestaurants(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "CUISINE", "RATING", "DELIVERY", "OPEN")
			for _, r := range restaurants {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.1f\t%s\t%s\n", r.ID, r.Name, r.Cuisine, r.Rating, r.DeliveryTime, yesNo(r.IsAcceptingOrders))
			}
			return tw.Flush()
		},
	}
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu <restaurantID>",
		Short: "Show a restaurant's menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := parseID("restaurant", args[0])
			if err != nil {
				return err
			}

			menu, err := a.api.GetMenu(cmd.Context(), restaurantID)
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "CATEGORY", "PRICE", "AVAILABLE")
			for _, p := range menu {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, money(p.Price), yesNo(p.IsAvailable))
			}
			return tw.Flush()
		},
	}
}

func newAddressesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List saved delivery addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses, err := a.api.ListAddresses(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "LABEL", "ADDRESS", "DEFAULT")
			for _, addr := range addresses {
				fmt.Fprintf(tw, "%d\t%s\t%s, %s\t%s\n", addr.ID, addr.Label, addr.AddressLine1, addr.City, yesNo(addr.IsDefault))
			}
			return tw.Flush()
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		quantity int
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add <restaurantID> <productID>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. Adding from a different restaurant replaces
the cart with the new product; adding a product already in the cart
increases its quantity.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			restaurantID, err := parseID("restaurant", args[0])
			if err != nil {
				return err
			}
			productID, err := parseID("product", args[1])
			if err != nil {
				return err
			}

			product, err := findProduct(cmd.Context(), a.api, restaurantID, productID)
			if err != nil {
				return err
			}

			if current, ok := a.store.RestaurantID(); ok && current != restaurantID {
				fmt.Fprintf(cmd.ErrOrStderr(), "replacing cart from restaurant %d\n", current)
			}
			return a.store.AddItem(product, quantity, note)
		},
	}

	cmd.Flags().IntVarP(&quantity, "qty", "q", 1, "quantity to add")
	cmd.Flags().StringVarP(&note, "note", "n", "", "special requests for this item")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productID>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			a.store.RemoveItem(productID)
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update <productID> <quantity>",
		Short: "Set the quantity of a product; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			a.store.UpdateQuantity(productID, quantity)
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Clear()
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its price summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := a.store.Snapshot()
			if st.IsEmpty() {
				fmt.Fprintln(out, "cart is empty")
				return nil
			}

			fmt.Fprintf(out, "restaurant %d\n", *st.RestaurantID)
			tw := newTable(out, "ID", "NAME", "QTY", "PRICE", "SUBTOTAL", "NOTE")
			for _, item := range st.Items {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
					item.Product.ID, item.Product.Name, item.Quantity,
					money(item.Product.Price), money(item.Subtotal()), item.SpecialRequests)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			writeQuote(out, a.checkout().Summary())
			return nil
		},
	}
}

func newCheckoutCmd(a *app) *cobra.Command {
	var (
		addressID    int64
		instructions string
		follow       bool
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		Long: `Place an order from the cart. The cart is emptied only when the order
is accepted. Without --address the default saved address is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if addressID == 0 {
				id, err := defaultAddress(ctx, a.api)
				if err != nil {
					return err
				}
				addressID = id
			}

			order, err := a.checkout().PlaceOrder(ctx, addressID, instructions)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "order %s placed (id %d), total %s\n", order.OrderNumber, order.ID, money(order.TotalAmount))
			if !follow {
				return nil
			}
			return track(ctx, a, order.ID, out)
		},
	}

	cmd.Flags().Int64VarP(&addressID, "address", "a", 0, "delivery address ID")
	cmd.Flags().StringVarP(&instructions, "instructions", "i", "", "special instructions for the restaurant")
	cmd.Flags().BoolVarP(&follow, "track", "t", false, "follow the order until it is delivered")
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := a.api.ListOrders(cmd.Context())
			if err != nil {
				return err
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "NUMBER", "RESTAURANT", "STATUS", "TOTAL", "PLACED")
			for _, o := range orders {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					o.ID, o.OrderNumber, o.RestaurantName, o.Status, money(o.TotalAmount), o.PlacedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
}

func newCancelCmd(a *app) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <orderID>",
		Short: "Cancel an order that has not been picked up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID("order", args[0])
			if err != nil {
				return err
			}

			order, err := a.api.CancelOrder(cmd.Context(), orderID, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s: %s\n", order.OrderNumber, order.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "why the order is cancelled")
	return cmd
}

func newReorderCmd(a *app) *cobra.Command {
	var addressID int64

	cmd := &cobra.Command{
		Use:   "reorder <orderID>",
		Short: "Place a previous order again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID("order", args[0])
			if err != nil {
				return err
			}

			order, err := a.api.Reorder(cmd.Context(), orderID, addressID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s placed (id %d), total %s\n", order.OrderNumber, order.ID, money(order.TotalAmount))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&addressID, "address", "a", 0, "delivery address ID (default: same as the original order)")
	return cmd
}

func newTrackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "track <orderID>",
		Short: "Follow an order until it is delivered or cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			return track(cmd.Context(), a, orderID, cmd.OutOrStdout())
		},
	}
}

func track(ctx context.Context, a *app, orderID int64, out io.Writer) error {
	t := a.tracker(orderID, func(o models.Order, message string) {
		fmt.Fprintf(out, "[%s] %s: %s\n", o.OrderNumber, o.Status, message)
	})

	err := t.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func findProduct(ctx context.Context, api backend, restaurantID, productID int64) (models.Product, error) {
	menu, err := api.GetMenu(ctx, restaurantID)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range menu {
		if p.ID != productID {
			continue
		}
		if !p.IsAvailable {
			return models.Product{}, fmt.Errorf("%s is currently unavailable", p.Name)
		}
		return p, nil
	}
	return models.Product{}, fmt.Errorf("product %d is not on the menu of restaurant %d", productID, restaurantID)
}

func defaultAddress(ctx context.Context, api backend) (int64, error) {
	addresses, err := api.ListAddresses(ctx)
	if err != nil {
		return 0, err
	}
	for _, addr := range addresses {
		if addr.IsDefault {
			return addr.ID, nil
		}
	}
	if len(addresses) > 0 {
		return addresses[0].ID, nil
	}
	return 0, errors.New("no saved delivery address, pass --address")
}

func writeQuote(out io.Writer, q pricing.Quote) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "items\t%s\t\n", money(q.ItemsTotal))
	fmt.Fprintf(tw, "delivery\t%s\t\n", money(q.DeliveryFee))
	fmt.Fprintf(tw, "tax\t%s\t\n", money(q.Tax))
	fmt.Fprintf(tw, "total\t%s\t\n", money(q.Total))
	_ = tw.Flush()
}

func newTable(out io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	return tw
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", kind, raw)
	}
	return id, nil
}

func money(d decimal.Decimal) string {
	return pricing.Round2(d)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
