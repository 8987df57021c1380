package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/timbrado-api/internal/domain"
	"github.com/jhoicas/timbrado-api/internal/domain/entity"
	"github.com/jhoicas/timbrado-api/internal/infrastructure/taxauthority"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

// memStore almacén en memoria con semántica de transacción (snapshot + rollback).
type memStore struct {
	mu          sync.Mutex
	invoices    map[int64]*entity.Invoice
	lines       map[int64][]*entity.InvoiceLine
	customers   map[int64]*entity.Customer
	resolutions []*entity.BillingResolution
	settings    map[string]string

	loadErr     error
	updateErr   error
	commitErr   error
	settingsErr error

	// aborted imita a PostgreSQL: tras un error de lectura la transacción
	// rechaza toda escritura posterior.
	aborted bool

	runs      int
	accesses  int
	updates   int
	commits   int
	rollbacks int
	tenants   []string
}

func newMemStore() *memStore {
	return &memStore{
		invoices:  map[int64]*entity.Invoice{501: invoice501()},
		lines:     map[int64][]*entity.InvoiceLine{501: lines501()},
		customers: map[int64]*entity.Customer{7: buyer7()},
		resolutions: []*entity.BillingResolution{{
			ID: 1, ResolutionNumber: "18760000001", Prefix: "SETP",
			RangeFrom: 990000000, RangeTo: 995000000, TechnicalKey: "fc8eac422eba16e22ffd8c6f94b3f40a6e38162c",
			DateFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC),
			IsActive: true,
		}},
		settings: map[string]string{
			entity.ParamBaseURL:     "http://autoridad.test",
			entity.ParamTestSetID:   "set-1",
			entity.ParamAPIToken:    "tok",
			entity.ParamSoftwareID:  "sw-1",
			entity.ParamIssuerNIT:   "900123456",
			entity.ParamIssuerName:  "Comercial Andina SAS",
			entity.ParamEnvironment: entity.EnvironmentTest,
		},
	}
}

func invoice501() *entity.Invoice {
	return &entity.Invoice{
		ID: 501, CustomerID: 7, Prefix: "SETP", Consecutive: 990000501,
		IssueDate:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		StatusCode:    "B",
		Subtotal:      decimal.RequireFromString("100"),
		TaxTotal:      decimal.RequireFromString("19"),
		DiscountTotal: decimal.Zero,
		GrandTotal:    decimal.RequireFromString("119"),
		PaymentForm:   "1",
		PaymentMethod: "10",
		CreatedAt:     fixedNow.Add(-time.Hour),
		UpdatedAt:     fixedNow.Add(-time.Hour),
	}
}

func lines501() []*entity.InvoiceLine {
	return []*entity.InvoiceLine{{
		ID: 1, InvoiceID: 501, ProductCode: "SKU-1", Description: "Café de origen 500 g", UnitCode: "94",
		Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50),
		DiscountRate: decimal.Zero, TaxRate: decimal.NewFromInt(19), Subtotal: decimal.NewFromInt(100),
	}}
}

func buyer7() *entity.Customer {
	return &entity.Customer{
		ID: 7, IdentificationType: "31", TaxID: "800197268", Name: "Cliente Mayorista SA",
		Email: "compras@cliente.test", MunicipalityCode: "11001", MunicipalityName: "Bogotá, D.C.",
	}
}

func (s *memStore) invoice(id int64) *entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv, ok := s.invoices[id]; ok {
		cp := *inv
		return &cp
	}
	return nil
}

func (s *memStore) RunStamping(_ context.Context, tenant string, fn func(StampingRepos) error) error {
	s.mu.Lock()
	s.runs++
	s.tenants = append(s.tenants, tenant)
	snapshot := make(map[int64]*entity.Invoice, len(s.invoices))
	for id, inv := range s.invoices {
		cp := *inv
		snapshot[id] = &cp
	}
	s.mu.Unlock()

	err := fn(StampingRepos{Invoices: s, Resolutions: s, Settings: s})
	if err == nil && s.commitErr != nil {
		err = fmt.Errorf("%w: commit transaction: %v", domain.ErrPersistence, s.commitErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = false
	if err != nil {
		s.invoices = snapshot
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func (s *memStore) GetByID(_ context.Context, id int64) (*entity.Invoice, error) {
	s.mu.Lock()
	s.accesses++
	s.mu.Unlock()
	return s.invoice(id), nil
}

func (s *memStore) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Invoice, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.GetByID(ctx, id)
}

func (s *memStore) GetLines(_ context.Context, invoiceID int64) ([]*entity.InvoiceLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accesses++
	return s.lines[invoiceID], nil
}

func (s *memStore) GetBuyer(_ context.Context, customerID int64) (*entity.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accesses++
	if c, ok := s.customers[customerID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) UpdateStampOutcome(_ context.Context, inv *entity.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accesses++
	if s.aborted {
		return errors.New("current transaction is aborted, commands ignored until end of transaction block")
	}
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *memStore) ListActive(_ context.Context, on time.Time) ([]*entity.BillingResolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.BillingResolution
	for _, r := range s.resolutions {
		if r.IsActive && r.ValidOn(on) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) GetBillingSettings(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settingsErr != nil {
		s.aborted = true
		return nil, s.settingsErr
	}
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out, nil
}

// memLocker InvoiceLocker en memoria que registra adquisiciones y liberaciones.
type memLocker struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
	err      error
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (l *memLocker) Acquire(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if _, busy := l.held[key]; busy {
		return "", false, nil
	}
	l.acquired++
	token := fmt.Sprintf("t-%d", l.acquired)
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		l.released++
	}
	return nil
}

// MockSubmitter mock de taxauthority.Submitter.
type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) Submit(ctx context.Context, p *taxauthority.Payload, testSetID, baseURL string) (*taxauthority.Result, error) {
	args := m.Called(ctx, p, testSetID, baseURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxauthority.Result), args.Error(1)
}
