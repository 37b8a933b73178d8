package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderReceipt formats a sale as a plain-text receipt.
func RenderReceipt(s *Sale) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Sale %s", s.ID)
	t.AppendHeader(table.Row{"Item", "Qty", "Price", "Amount"})
	for _, l := range s.Lines {
		t.AppendRow(table.Row{l.ProductName, l.Quantity, pricing.Format(l.UnitPrice), pricing.Format(l.LineTotal())})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"Subtotal", "", "", pricing.Format(s.Subtotal)})
	t.AppendRow(table.Row{fmt.Sprintf("Tax (%s%%)", s.TaxRate.String()), "", "", pricing.Format(s.Tax)})
	t.AppendFooter(table.Row{"Total", "", "", pricing.Format(s.Total)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Paid by %s", strings.ToUpper(string(s.PaymentMethod)))
	if s.AmountTendered.Valid {
		fmt.Fprintf(&b, "  tendered %s  change %s",
			pricing.Format(s.AmountTendered.Decimal), pricing.Format(s.Change))
	}
	b.WriteString("\n")
	b.WriteString(s.CreatedAt.UTC().Format(time.RFC1123))
	b.WriteString("\n")
	return b.String()
}
