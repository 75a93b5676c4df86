package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/event"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/notify"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/receipt"
	pkgkafka "github.com/Carlos85Carvalho/luni-final-sub000/pkg/kafka"
)

// --- Mock Catalog Repository ---

type mockCatalogRepository struct {
	mock.Mock
}

func (m *mockCatalogRepository) GetProduct(ctx context.Context, id string) (*domain.ProductRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductRef), args.Error(1)
}

func (m *mockCatalogRepository) GetService(ctx context.Context, id string) (*domain.ServiceRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRef), args.Error(1)
}

func (m *mockCatalogRepository) DecrementStock(ctx context.Context, productID string, qty int, saleID string) error {
	args := m.Called(ctx, productID, qty, saleID)
	return args.Error(0)
}

func (m *mockCatalogRepository) MarkAppointmentCompleted(ctx context.Context, appointmentID string) error {
	args := m.Called(ctx, appointmentID)
	return args.Error(0)
}

// --- Mock Customer Repository ---

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *mockCustomerRepository) ApplyAggregate(ctx context.Context, id string, delta domain.CustomerDelta) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// --- Mock Sale Repository ---

type mockSaleRepository struct {
	mock.Mock
}

func (m *mockSaleRepository) CreateHeader(ctx context.Context, sale *domain.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *mockSaleRepository) CreateLine(ctx context.Context, line *domain.SaleLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

// --- Mock Pending-Sale Repository ---

type mockPendingSaleRepository struct {
	mock.Mock
}

func (m *mockPendingSaleRepository) Save(ctx context.Context, ps *domain.PendingSale) error {
	args := m.Called(ctx, ps)
	return args.Error(0)
}

func (m *mockPendingSaleRepository) Get(ctx context.Context, id string) (*domain.PendingSale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PendingSale), args.Error(1)
}

func (m *mockPendingSaleRepository) List(ctx context.Context, salonID string) ([]domain.PendingSale, error) {
	args := m.Called(ctx, salonID)
	return args.Get(0).([]domain.PendingSale), args.Error(1)
}

func (m *mockPendingSaleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Sequencer ---

type mockSequencer struct {
	mock.Mock
}

func (m *mockSequencer) Next(ctx context.Context, salonID string) (int64, error) {
	args := m.Called(ctx, salonID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Receipt Generator ---

type mockReceiptGenerator struct {
	mock.Mock
}

func (m *mockReceiptGenerator) Generate(ctx context.Context, sale *domain.Sale, lines []domain.SaleLine) (*receipt.Document, error) {
	args := m.Called(ctx, sale, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipt.Document), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newTestEventProducer points at a broker that is not there; publishes fail
// and the services log and carry on, which is exactly the behavior under test.
func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func testLoyalty() domain.LoyaltyConfig {
	return domain.LoyaltyConfig{
		PointsPerCurrencyUnit: 1,
		MinimumForPoints:      5000,
		CashbackPercent:       2,
	}
}

func newTestCheckoutService(t *testing.T, sales *mockSaleRepository, catalog *mockCatalogRepository, customers *mockCustomerRepository, seq *mockSequencer) *CheckoutService {
	t.Helper()
	logger := newTestLogger()
	producer := newTestEventProducer()
	dispatcher := notify.NewDispatcher(producer, logger)
	t.Cleanup(dispatcher.Wait)
	return NewCheckoutService(sales, catalog, customers, seq, receipt.NewTextGenerator(""), dispatcher, producer, testLoyalty(), logger)
}
