package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetparts/fleetparts-backend/internal/catalog"
	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/internal/locations"
	"github.com/fleetparts/fleetparts-backend/internal/reports"
	"github.com/fleetparts/fleetparts-backend/internal/transfers"
	pkgAuth "github.com/fleetparts/fleetparts-backend/pkg/auth"
	"github.com/fleetparts/fleetparts-backend/pkg/auth/session"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	pkgredis "github.com/fleetparts/fleetparts-backend/pkg/redis"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCatalogService struct{}

func (stubCatalogService) Define(ctx context.Context, input catalog.DefineItemInput) (*catalog.ItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Update(ctx context.Context, itemID uuid.UUID, input catalog.UpdateItemInput) (*catalog.ItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Deactivate(ctx context.Context, itemID uuid.UUID, actor *outbox.ActorRef) (*catalog.ItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Reactivate(ctx context.Context, itemID uuid.UUID) (*catalog.ItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) Get(ctx context.Context, itemID uuid.UUID) (*catalog.ItemDTO, error) {
	panic("unimplemented")
}

func (stubCatalogService) List(ctx context.Context, input catalog.ListItemsInput) (*catalog.ItemListResult, error) {
	return &catalog.ItemListResult{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) CreateEntry(ctx context.Context, input ledger.CreateEntryInput) (*ledger.StockEntryDTO, error) {
	panic("unimplemented")
}

func (stubLedgerService) StockAt(ctx context.Context, itemID uuid.UUID, location types.LocationRef) (*ledger.StockEntryDTO, error) {
	panic("unimplemented")
}

func (stubLedgerService) AdjustQuantity(ctx context.Context, input ledger.AdjustQuantityInput) (*ledger.StockEntryDTO, error) {
	panic("unimplemented")
}

func (stubLedgerService) TotalQuantity(ctx context.Context, itemID uuid.UUID) (int, error) {
	panic("unimplemented")
}

func (stubLedgerService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]ledger.StockEntryDTO, error) {
	panic("unimplemented")
}

func (stubLedgerService) ListByLocation(ctx context.Context, location types.LocationRef) ([]ledger.StockEntryDTO, error) {
	return []ledger.StockEntryDTO{}, nil
}

func (stubLedgerService) DeleteEntry(ctx context.Context, entryID uuid.UUID, role enums.MemberRole) error {
	panic("unimplemented")
}

type stubLocationsService struct{}

func (stubLocationsService) CreateWarehouse(ctx context.Context, input locations.CreateWarehouseInput) (*locations.WarehouseDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) CreateVehicle(ctx context.Context, input locations.CreateVehicleInput) (*locations.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) AssignOperator(ctx context.Context, vehicleID, operatorID uuid.UUID) (*locations.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) UnassignOperator(ctx context.Context, vehicleID uuid.UUID) (*locations.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) GetWarehouse(ctx context.Context, id uuid.UUID) (*locations.WarehouseDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) GetVehicle(ctx context.Context, id uuid.UUID) (*locations.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubLocationsService) ListWarehouses(ctx context.Context) ([]locations.WarehouseDTO, error) {
	return []locations.WarehouseDTO{}, nil
}

func (stubLocationsService) ListVehicles(ctx context.Context) ([]locations.VehicleDTO, error) {
	return []locations.VehicleDTO{}, nil
}

func (stubLocationsService) DeleteWarehouse(ctx context.Context, id uuid.UUID, role enums.MemberRole) error {
	panic("unimplemented")
}

func (stubLocationsService) DeleteVehicle(ctx context.Context, id uuid.UUID, role enums.MemberRole) error {
	panic("unimplemented")
}

func (stubLocationsService) LocationExists(ctx context.Context, location types.LocationRef) (bool, error) {
	return true, nil
}

type stubTransfersService struct {
	requested int
}

func (s *stubTransfersService) Request(ctx context.Context, input transfers.RequestInput, actor transfers.Actor) (*transfers.TransferDTO, error) {
	s.requested++
	return &transfers.TransferDTO{ID: uuid.New(), Status: enums.TransferStatusPending}, nil
}

func (s *stubTransfersService) Accept(ctx context.Context, transferID uuid.UUID, actor transfers.Actor) (*transfers.TransferDTO, error) {
	panic("unimplemented")
}

func (s *stubTransfersService) Reject(ctx context.Context, transferID uuid.UUID, actor transfers.Actor, reason string) (*transfers.TransferDTO, error) {
	panic("unimplemented")
}

func (s *stubTransfersService) Get(ctx context.Context, transferID uuid.UUID) (*transfers.TransferDTO, error) {
	panic("unimplemented")
}

func (s *stubTransfersService) Log(ctx context.Context, input transfers.LogInput) (*transfers.TransferListResult, error) {
	return &transfers.TransferListResult{}, nil
}

type stubReportsService struct{}

func (stubReportsService) LowStock(ctx context.Context) ([]reports.LowStockRow, error) {
	return []reports.LowStockRow{}, nil
}

func (stubReportsService) LocationValue(ctx context.Context, location types.LocationRef) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubReportsService) TopLocationsByValue(ctx context.Context, locs []types.LocationRef, n int) ([]reports.LocationValueRow, error) {
	return []reports.LocationValueRow{}, nil
}

func (stubReportsService) GroupedByItem(ctx context.Context) ([]reports.ItemStockGroup, error) {
	return []reports.ItemStockGroup{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:              "secret",
			Issuer:              "issuer",
			ExpirationMinutes:   60,
			RefreshTokenTTLDays: 7,
		},
	}
}

func newTestRouter(cfg *config.Config, transfersSvc transfers.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*pkgredis.Client)(nil),
		stubSessionChecker{},
		stubCatalogService{},
		stubLedgerService{},
		stubLocationsService{},
		transfersSvc,
		stubReportsService{},
	)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig(), &stubTransfersService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubTransfersService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubTransfersService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleTechnician))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestStockWritesRequireManagerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubTransfersService{})

	body := `{"item_id":"` + uuid.NewString() + `","location_type":"warehouse","location_id":"` + uuid.NewString() + `","quantity":1,"min_level":0}`
	technician := httptest.NewRequest(http.MethodPost, "/api/v1/stock", strings.NewReader(body))
	technician.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleTechnician))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, technician)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for technician got %d", resp.Code)
	}
}

func TestTransferCreateRequiresManagerRole(t *testing.T) {
	cfg := testConfig()
	svc := &stubTransfersService{}
	router := newTestRouter(cfg, svc)

	body := `{"source_entry_id":"` + uuid.NewString() + `","dest_vehicle_id":"` + uuid.NewString() + `","quantity":2}`

	technician := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(body))
	technician.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleTechnician))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, technician)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for technician got %d", resp.Code)
	}
	if svc.requested != 0 {
		t.Fatalf("transfer service should not be reached")
	}

	manager := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(body))
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for manager got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.requested != 1 {
		t.Fatalf("expected transfer service call, got %d", svc.requested)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestTransferLogIsReadableByTechnicians(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubTransfersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transfers/log", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleTechnician))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestReportsAreReadable(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubTransfersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/low-stock", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.MemberRoleManager))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		OperatorID: uuid.New(),
		Role:       role,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
