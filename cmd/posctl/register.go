package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/georgemunganga/stockly-pos/internal/app"
	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/georgemunganga/stockly-pos/internal/modules/checkout"
	"github.com/georgemunganga/stockly-pos/internal/modules/payment"
	"github.com/georgemunganga/stockly-pos/internal/modules/sales"
	"github.com/georgemunganga/stockly-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

var errQuit = errors.New("quit")

// register runs one checkout session at a time. A new session is opened
// after every sale or cancel.
type register struct {
	svc     *app.Services
	rate    decimal.Decimal
	out     io.Writer
	session uuid.UUID
}

func newRegister(svc *app.Services, rate decimal.Decimal, out io.Writer) (*register, error) {
	r := &register{svc: svc, rate: rate, out: out}
	if err := r.reset(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *register) reset(ctx context.Context) error {
	if r.session != uuid.Nil {
		if err := r.svc.Checkout.Close(ctx, r.session); err != nil && !errors.Is(err, checkout.ErrSessionNotFound) {
			return err
		}
	}
	v, err := r.svc.Checkout.Open(ctx)
	if err != nil {
		return err
	}
	r.session = v.ID
	return nil
}

// Run reads commands until exit or EOF.
func (r *register) Run(ctx context.Context) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[1;36mpos>\033[0m ",
		HistoryFile:       home + "/.posctl_history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %v", err)
	}
	defer rl.Close()

	fmt.Fprintln(r.out, "Register open. Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
		if err := r.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(os.Stderr, "\033[1;31mError:\033[0m %v\n", err)
		}
	}
}

// exec runs a single register command.
func (r *register) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "\\q":
		return errQuit
	case "help", "?":
		r.printHelp()
		return nil
	case "products":
		list, err := r.svc.Catalog.ListProducts(ctx, "")
		if err != nil {
			return err
		}
		printProducts(r.out, list)
		return nil
	case "add":
		return r.add(ctx, args)
	case "adj":
		return r.adjust(ctx, args)
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <sku>")
		}
		p, err := r.lookup(ctx, args[0])
		if err != nil {
			return err
		}
		return r.show(r.svc.Checkout.RemoveLine(ctx, r.session, p.ID))
	case "total":
		return r.show(r.svc.Checkout.View(ctx, r.session, decimal.NullDecimal{}))
	case "pay":
		return r.pay(ctx, args)
	case "cancel":
		if err := r.reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Sale cancelled.")
		return nil
	}
	return fmt.Errorf("unknown command %q (try 'help')", fields[0])
}

func (r *register) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <sku> [qty]")
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		qty = n
	}
	p, err := r.lookup(ctx, args[0])
	if err != nil {
		return err
	}
	before, err := r.svc.Checkout.View(ctx, r.session, decimal.NullDecimal{})
	if err != nil {
		return err
	}
	v, err := r.svc.Checkout.AddLine(ctx, r.session, p.ID)
	if err != nil {
		return describe(err)
	}
	if qty > 1 {
		if v, err = r.svc.Checkout.AdjustLine(ctx, r.session, p.ID, qty-1); err != nil {
			// take back the unit added above so a failed add leaves the sale as it was
			if undo := r.undoAdd(ctx, before, p.ID); undo != nil {
				return fmt.Errorf("%v (and could not undo: %v)", describe(err), undo)
			}
			return describe(err)
		}
	}
	return r.show(v, nil)
}

func (r *register) undoAdd(ctx context.Context, before *checkout.View, productID uuid.UUID) error {
	for _, l := range before.Lines {
		if l.ProductID == productID {
			_, err := r.svc.Checkout.AdjustLine(ctx, r.session, productID, -1)
			return err
		}
	}
	_, err := r.svc.Checkout.RemoveLine(ctx, r.session, productID)
	return err
}

func (r *register) adjust(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: adj <sku> <delta>")
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid delta %q", args[1])
	}
	p, err := r.lookup(ctx, args[0])
	if err != nil {
		return err
	}
	return r.show(r.svc.Checkout.AdjustLine(ctx, r.session, p.ID, delta))
}

func (r *register) pay(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: pay cash <amount> | pay card")
	}
	method, err := payment.ParseMethod(args[0])
	if err != nil {
		return err
	}
	in := checkout.SettleInput{Method: method}
	if len(args) > 1 {
		amount, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		in.AmountTendered = decimal.NewNullDecimal(amount)
	}
	sale, err := r.svc.Checkout.Settle(ctx, r.session, in)
	if err != nil {
		return describe(err)
	}
	fmt.Fprint(r.out, sales.RenderReceipt(sale))
	return r.reset(ctx)
}

// lookup resolves a SKU or product id.
func (r *register) lookup(ctx context.Context, ref string) (*catalog.Product, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.svc.Catalog.GetProduct(ctx, id)
	}
	list, err := r.svc.Catalog.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if strings.EqualFold(p.SKU, ref) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no product with sku %q", catalog.ErrProductNotFound, ref)
}

func (r *register) show(v *checkout.View, err error) error {
	if err != nil {
		return describe(err)
	}
	t := newTable(r.out)
	t.AppendHeader(table.Row{"SKU", "Item", "Qty", "Price", "Amount"})
	for _, l := range v.Lines {
		if l.Missing {
			t.AppendRow(table.Row{"", "(removed from catalog) " + l.ProductID.String(), l.Quantity, "", ""})
			continue
		}
		t.AppendRow(table.Row{l.SKU, l.Name, l.Quantity, pricing.Format(l.UnitPrice), pricing.Format(l.LineTotal)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("Tax %s%%", v.TaxRate), "", pricing.Format(v.Totals.Tax), pricing.Format(v.Totals.Total)})
	t.Render()
	return nil
}

// describe rewords settlement errors for the cashier.
func describe(err error) error {
	var pe *payment.InsufficientPaymentError
	var se *catalog.StockError
	switch {
	case errors.As(err, &pe) && !pe.Tendered.Valid:
		return fmt.Errorf("cash needs an amount: pay cash <amount> (total %s)", pricing.Format(pe.Total))
	case errors.As(err, &pe):
		return fmt.Errorf("tendered %s is short of %s", pricing.Format(pe.Tendered.Decimal), pricing.Format(pe.Total))
	case errors.As(err, &se):
		return fmt.Errorf("only %d left of product %s (wanted %d)", se.Available, se.ProductID, se.Requested)
	case errors.Is(err, checkout.ErrEmptyCart):
		return errors.New("nothing to sell, add items first")
	}
	return err
}

func (r *register) printHelp() {
	fmt.Fprintln(r.out, `Commands:
  products              list the catalog
  add <sku> [qty]       add an item
  adj <sku> <delta>     change a quantity
  rm <sku>              remove an item
  total                 show the current sale
  pay cash <amount>     settle in cash
  pay card              settle by card
  cancel                abandon the current sale
  exit                  leave the register`)
}
