// Package receipt turns a persisted sale into a printable document. The
// primary generator calls the external renderer service; a local plain-text
// generator stands in when the renderer is down so the counter always has
// something to hand the customer.
package receipt

import (
	"context"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
)

// Document is a rendered receipt ready for printing or sending.
type Document struct {
	SaleID         string `json:"sale_id"`
	SequenceNumber int64  `json:"sequence_number"`
	Format         string `json:"format"`
	Content        string `json:"content"`
}

// Generator renders a receipt document for a completed sale.
type Generator interface {
	Generate(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*Document, error)
}
