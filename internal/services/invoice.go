package services

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"storefront-service/internal/models"
)

// RenderInvoice builds the PDF invoice for an order. The built-in PDF fonts
// have no Arabic glyphs, so the invoice uses the English copy.
func RenderInvoice(order *models.Order, settings *models.StoreSettings) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	addInvoiceHeader(m, order, settings)
	addInvoiceAddress(m, order)
	addInvoiceItems(m, order)
	addInvoiceTotals(m, order)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// InvoiceFilename is the download name for an order's invoice
func InvoiceFilename(order *models.Order) string {
	return fmt.Sprintf("invoice-%s.pdf", order.OrderNumber)
}

func addInvoiceHeader(m core.Maroto, order *models.Order, settings *models.StoreSettings) {
	contact := strings.TrimSpace(settings.ContactEmail + "  " + settings.ContactPhone)
	m.AddRow(30,
		col.New(6).Add(
			text.New(settings.StoreNameEn, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(contact, props.Text{
				Size:  9,
				Top:   8,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("INVOICE", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New("# "+order.OrderNumber, props.Text{
				Size:  10,
				Top:   8,
				Align: align.Right,
			}),
			text.New(order.CreatedAt.Format("Jan 02, 2006"), props.Text{
				Size:  10,
				Top:   13,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addInvoiceAddress(m core.Maroto, order *models.Order) {
	a := order.ShippingAddress
	lines := []string{a.Line1}
	if a.Line2 != "" {
		lines = append(lines, a.Line2)
	}
	lines = append(lines, strings.TrimSpace(strings.Join([]string{a.City, a.Region, a.PostalCode}, " ")), a.Country)

	m.AddRow(30,
		col.New(6).Add(
			text.New("SHIP TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(a.FullName+"\n"+strings.Join(lines, ", "), props.Text{
				Size:  9,
				Top:   5,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Status: %s", models.BadgeFor(order.Status).LabelEn), props.Text{
				Size:  10,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("Payment: %s (%s)", strings.ToUpper(string(order.PaymentMethod)), order.PaymentStatus), props.Text{
				Size:  10,
				Top:   5,
				Align: align.Right,
			}),
			text.New(order.Email, props.Text{
				Size:  10,
				Top:   10,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func addInvoiceItems(m core.Maroto, order *models.Order) {
	header := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Size: 10, Style: fontstyle.Bold, Align: a}))
	}
	m.AddRow(8,
		header("Item", 6, align.Left),
		header("Qty", 2, align.Center),
		header("Price", 2, align.Right),
		header("Total", 2, align.Right),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range order.Items {
		m.AddRow(8,
			col.New(6).Add(text.New(item.NameEn, props.Text{Size: 9, Align: align.Left})),
			col.New(2).Add(text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Center})),
			col.New(2).Add(text.New(formatMoney(item.UnitPrice, order.Currency), props.Text{Size: 9, Align: align.Right})),
			col.New(2).Add(text.New(formatMoney(item.LineTotal, order.Currency), props.Text{Size: 9, Align: align.Right})),
		)
	}
	m.AddRow(3, line.NewCol(12))
}

func addInvoiceTotals(m core.Maroto, order *models.Order) {
	row := func(label string, amount decimal.Decimal, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			col.New(8),
			col.New(2).Add(text.New(label, props.Text{Size: 10, Style: style, Align: align.Right})),
			col.New(2).Add(text.New(formatMoney(amount, order.Currency), props.Text{Size: 10, Style: style, Align: align.Right})),
		)
	}

	row("Subtotal:", order.Subtotal, false)
	if order.DiscountAmount.IsPositive() {
		label := "Discount:"
		if order.PromotionCode != nil {
			label = fmt.Sprintf("Discount (%s):", *order.PromotionCode)
		}
		row(label, order.DiscountAmount.Neg(), false)
	}
	row("Shipping:", order.ShippingCost, false)
	if order.TaxAmount.IsPositive() {
		row("Tax:", order.TaxAmount, false)
	}
	row("Total:", order.Total, true)
}

func formatMoney(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}
