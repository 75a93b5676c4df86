package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/httpclient"
)

// HTTPRenderer renders receipts through the external renderer service. Calls
// go through a circuit breaker; when the renderer fails or the breaker is
// open, rendering falls back to the local text generator.
type HTTPRenderer struct {
	client   *httpclient.CircuitBreakerClient
	baseURL  string
	fallback Generator
	logger   *slog.Logger
}

// NewHTTPRenderer creates a renderer client. fallback must not be nil.
func NewHTTPRenderer(client *httpclient.CircuitBreakerClient, baseURL string, fallback Generator, logger *slog.Logger) *HTTPRenderer {
	return &HTTPRenderer{
		client:   client,
		baseURL:  baseURL,
		fallback: fallback,
		logger:   logger,
	}
}

type renderRequest struct {
	Sale  *domain.Sale      `json:"sale"`
	Lines []domain.SaleLine `json:"lines"`
}

type renderResponse struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

func (r *HTTPRenderer) Generate(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*Document, error) {
	doc, err := r.render(ctx, sale, lines)
	if err != nil {
		r.logger.WarnContext(ctx, "receipt renderer unavailable, using local fallback",
			slog.String("sale_id", sale.ID),
			slog.String("error", err.Error()),
		)
		return r.fallback.Generate(ctx, sale, lines)
	}
	return doc, nil
}

func (r *HTTPRenderer) render(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*Document, error) {
	payload, err := json.Marshal(renderRequest{Sale: sale, Lines: lines})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	resp, err := r.client.Post(ctx, r.baseURL+"/render", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("call receipt renderer: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "receipt-renderer")
	}
	defer resp.Body.Close()

	var rendered renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rendered); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}

	return &Document{
		SaleID:         sale.ID,
		SequenceNumber: sale.SequenceNumber,
		Format:         rendered.Format,
		Content:        rendered.Content,
	}, nil
}
