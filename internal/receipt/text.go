package receipt

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
)

// TextGenerator renders a fixed-width plain-text receipt locally, with no
// external calls. Used directly by terminals without a renderer service and
// as the fallback when the renderer is unreachable.
type TextGenerator struct {
	header string
}

// NewTextGenerator creates a text generator. header is printed on the first
// line of every receipt, typically the salon name.
func NewTextGenerator(header string) *TextGenerator {
	return &TextGenerator{header: header}
}

func (g *TextGenerator) Generate(_ context.Context, sale *domain.Sale, lines []domain.SaleLine) (*Document, error) {
	var b strings.Builder

	if g.header != "" {
		fmt.Fprintf(&b, "%s\n", g.header)
	}
	fmt.Fprintf(&b, "VENDA #%d\n", sale.SequenceNumber)
	fmt.Fprintf(&b, "%s\n", sale.CreatedAt.Format("02/01/2006 15:04"))
	b.WriteString(strings.Repeat("-", 40) + "\n")

	for _, line := range lines {
		fmt.Fprintf(&b, "%-24.24s %2dx %s\n", line.Name, line.Quantity, formatCents(line.LineTotal))
	}

	b.WriteString(strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "%-28s %s\n", "Subtotal", formatCents(sale.Subtotal))
	if sale.DiscountAmount > 0 {
		fmt.Fprintf(&b, "%-28s -%s\n", "Desconto", formatCents(sale.DiscountAmount))
	}
	fmt.Fprintf(&b, "%-28s %s\n", "TOTAL", formatCents(sale.Total))
	fmt.Fprintf(&b, "%-28s %s\n", "Pagamento", sale.PaymentMethod)

	if sale.PointsGranted > 0 {
		fmt.Fprintf(&b, "Pontos ganhos: %d\n", sale.PointsGranted)
	}
	if sale.CashbackGranted > 0 {
		fmt.Fprintf(&b, "Cashback: %s\n", formatCents(sale.CashbackGranted))
	}

	return &Document{
		SaleID:         sale.ID,
		SequenceNumber: sale.SequenceNumber,
		Format:         "text",
		Content:        b.String(),
	}, nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sR$ %d,%02d", sign, cents/100, cents%100)
}
