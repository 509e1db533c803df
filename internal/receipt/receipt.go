package receipt

import (
	"fmt"
	"strings"

	"starpos-backend/internal/models"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Amounts are printed with a currency code; the core PDF fonts have no peso sign.
func money(v float64) string {
	return fmt.Sprintf("PHP %.2f", v)
}

// Render builds the printable receipt for a recorded transaction.
func Render(business models.UserInfo, tx models.Transaction) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	name := strings.TrimSpace(business.BusinessName)
	if name == "" {
		name = models.DefaultBusinessName
	}
	m.AddRow(14,
		text.NewCol(12, name, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center}),
	)
	if business.Address != "" {
		m.AddRow(6, text.NewCol(12, business.Address, props.Text{Size: 9, Align: align.Center}))
	}

	m.AddRow(18,
		col.New(6).Add(
			text.New("Receipt No: "+tx.ReceiptNo, props.Text{Size: 9}),
			text.New("Date: "+tx.Date, props.Text{Size: 9, Top: 5}),
		),
		col.New(6).Add(
			text.New("Customer: "+tx.CustomerName, props.Text{Size: 9, Align: align.Right}),
			text.New("Payment: "+string(tx.PaymentMethod), props.Text{Size: 9, Top: 5, Align: align.Right}),
		),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(8,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range tx.OrderItems {
		m.AddRow(7,
			text.NewCol(6, item.Title, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Price), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.LineTotal), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(4, line.NewCol(12))

	totals := []struct {
		label string
		value string
		style fontstyle.Type
	}{
		{"Total", money(tx.TotalAmount), fontstyle.Bold},
		{"Amount Received", money(tx.AmountReceived), fontstyle.Normal},
		{"Change", money(tx.Change), fontstyle.Normal},
	}
	for _, t := range totals {
		m.AddRow(7,
			col.New(6),
			text.NewCol(3, t.label, props.Text{Size: 9, Style: t.style}),
			text.NewCol(3, t.value, props.Text{Size: 9, Style: t.style, Align: align.Right}),
		)
	}

	m.AddRow(14,
		text.NewCol(12, "Thank you for your purchase!", props.Text{Size: 9, Top: 6, Align: align.Center}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", tx.ReceiptNo, err)
	}
	return doc.GetBytes(), nil
}
