// Command posctl is a terminal front end for the checkout engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/georgemunganga/stockly-pos/internal/app"
	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/platform/config"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type options struct {
	databaseURL string
	seed        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "posctl",
		Short:         "Point-of-sale checkout from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL, in-memory when empty)")
	root.PersistentFlags().StringVar(&opts.seed, "seed", "", "JSON file of products to load before running")

	root.AddCommand(
		productsCmd(opts),
		lowStockCmd(opts),
		salesCmd(opts),
		receiptCmd(opts),
		exportCmd(opts),
		summaryCmd(opts),
		registerCmd(opts),
	)
	return root
}

// open builds services from the environment and flags. The returned func
// releases the backend.
func open(ctx context.Context, opts *options) (*app.Services, config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, nil, err
	}
	if opts.databaseURL != "" {
		cfg.DatabaseURL = opts.databaseURL
	}
	backend, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, cfg, nil, err
	}
	svc := app.NewServices(cfg, backend, nil)
	if opts.seed != "" {
		if err := seed(ctx, svc.Catalog, opts.seed); err != nil {
			backend.Close()
			return nil, cfg, nil, err
		}
	}
	return svc, cfg, func() { backend.Close() }, nil
}

// seed creates every product listed in path.
func seed(ctx context.Context, products catalog.Service, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var reqs []catalog.ProductRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}
	for _, req := range reqs {
		if _, err := products.CreateProduct(ctx, req); err != nil {
			return fmt.Errorf("seed %s: %w", req.SKU, err)
		}
	}
	return nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func productsCmd(opts *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			list, err := svc.Catalog.ListProducts(cmd.Context(), category)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only products in this category")
	return cmd
}

func printProducts(out io.Writer, list []*catalog.Product) {
	t := newTable(out)
	t.AppendHeader(table.Row{"SKU", "Name", "Category", "Price", "Stock"})
	for _, p := range list {
		t.AppendRow(table.Row{p.SKU, p.Name, p.Category, pricing.Format(p.Price), p.Stock})
	}
	t.Render()
}

func lowStockCmd(opts *options) *cobra.Command {
	var threshold int
	cmd := &cobra.Command{
		Use:   "low-stock",
		Short: "List products at or below the reorder threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			items, err := svc.Inventory.LowStock(cmd.Context(), threshold)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"SKU", "Name", "Stock"})
			for _, it := range items {
				t.AppendRow(table.Row{it.SKU, it.Name, it.Stock})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", 0, "reorder threshold (0 uses LOW_STOCK_THRESHOLD)")
	return cmd
}

type filterFlags struct{ from, to, method string }

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date or RFC3339 time (inclusive)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date (whole day) or RFC3339 time (exclusive)")
	cmd.Flags().StringVar(&f.method, "method", "", "cash or card")
}

func (f *filterFlags) filter() (sales.Filter, error) {
	q := url.Values{}
	q.Set("from", f.from)
	q.Set("to", f.to)
	q.Set("method", f.method)
	return sales.ParseFilter(q)
}

func salesCmd(opts *options) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List committed sales, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			list, err := svc.Sales.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Date", "Sale ID", "Units", "Total", "Method"})
			for _, s := range list {
				t.AppendRow(table.Row{s.CreatedAt.Local().Format("2006-01-02 15:04"), s.ID, s.Units(), pricing.Format(s.Total), s.PaymentMethod})
			}
			t.Render()
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func receiptCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <sale-id>",
		Short: "Print the receipt for a sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid sale id: %w", err)
			}
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			receipt, err := svc.Sales.Receipt(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), receipt)
			return nil
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var (
		ff     filterFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write sales as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			return svc.Sales.ExportCSV(cmd.Context(), out, f)
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "destination file")
	return cmd
}

func summaryCmd(opts *options) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show revenue and best sellers",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ff.filter()
			if err != nil {
				return err
			}
			svc, _, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			sum, err := svc.Sales.Summary(cmd.Context(), f)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}

func printSummary(out io.Writer, sum *sales.Summary) {
	fmt.Fprintf(out, "Sales %d  Items %d  Revenue %s  Tax %s\n",
		sum.SaleCount, sum.ItemsSold, pricing.Format(sum.Revenue), pricing.Format(sum.Tax))
	t := newTable(out)
	t.SetTitle("Best sellers")
	t.AppendHeader(table.Row{"Product", "Qty", "Revenue"})
	for _, b := range sum.BestSellers {
		t.AppendRow(table.Row{b.ProductName, b.Quantity, pricing.Format(b.Revenue)})
	}
	t.Render()
}

func registerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Ring up sales interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, done, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer done()
			reg, err := newRegister(svc, cfg.TaxRate, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return reg.Run(cmd.Context())
		},
	}
}
