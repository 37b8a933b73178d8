package sales

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/stockly-pos/internal/pricing"
)

var csvHeader = []string{"Date", "Sale ID", "Items", "Subtotal", "Tax", "Total", "Payment Method"}

// WriteCSV writes one row per sale. Money columns are rounded to 2 places.
func WriteCSV(w io.Writer, list []*Sale) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range list {
		row := []string{
			s.CreatedAt.UTC().Format(time.RFC3339),
			s.ID.String(),
			describeItems(s.Lines),
			pricing.Format(s.Subtotal),
			pricing.Format(s.Tax),
			pricing.Format(s.Total),
			string(s.PaymentMethod),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// describeItems renders lines as "Name x2; Other x1".
func describeItems(lines []SaleLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.ProductName + " x" + strconv.Itoa(l.Quantity)
	}
	return strings.Join(parts, "; ")
}
