package locations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/db/models"
	"github.com/fleetparts/fleetparts-backend/pkg/enums"
	pkgerrors "github.com/fleetparts/fleetparts-backend/pkg/errors"
	"github.com/fleetparts/fleetparts-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the location directory: warehouses, vehicles and the
// vehicle-operator assignment used to route transfer decisions.
type Service interface {
	CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error)
	AssignOperator(ctx context.Context, vehicleID, operatorID uuid.UUID) (*VehicleDTO, error)
	UnassignOperator(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error)
	GetWarehouse(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	ListWarehouses(ctx context.Context) ([]WarehouseDTO, error)
	ListVehicles(ctx context.Context) ([]VehicleDTO, error)
	DeleteWarehouse(ctx context.Context, id uuid.UUID, role enums.MemberRole) error
	DeleteVehicle(ctx context.Context, id uuid.UUID, role enums.MemberRole) error
	LocationExists(ctx context.Context, location types.LocationRef) (bool, error)
}

// CreateWarehouseInput holds the validated payload to register a warehouse.
type CreateWarehouseInput struct {
	Name    string
	Address *string
}

// CreateVehicleInput holds the validated payload to register a vehicle.
type CreateVehicleInput struct {
	Name               string
	LicensePlate       *string
	AssignedOperatorID *uuid.UUID
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a locations service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("locations repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// CreateWarehouse registers a stationary location.
func (s *service) CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*WarehouseDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	warehouse, err := s.repo.CreateWarehouse(ctx, &models.Warehouse{
		Name:    name,
		Address: input.Address,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert warehouse")
	}
	return NewWarehouseDTO(warehouse), nil
}

// CreateVehicle registers a mobile location, optionally pre-assigned to an
// operator.
func (s *service) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.AssignedOperatorID != nil && *input.AssignedOperatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned_operator_id cannot be the zero id")
	}
	vehicle, err := s.repo.CreateVehicle(ctx, &models.Vehicle{
		Name:               name,
		LicensePlate:       input.LicensePlate,
		AssignedOperatorID: input.AssignedOperatorID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert vehicle")
	}
	return NewVehicleDTO(vehicle), nil
}

// AssignOperator points the vehicle at a new operator. In-flight transfers
// keep their snapshotted assignee; only future requests pick this up.
func (s *service) AssignOperator(ctx context.Context, vehicleID, operatorID uuid.UUID) (*VehicleDTO, error) {
	if operatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator id is required")
	}
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.AssignedOperatorID = &operatorID
	saved, err := s.repo.SaveVehicle(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save vehicle")
	}
	return NewVehicleDTO(saved), nil
}

// UnassignOperator clears the vehicle's operator.
func (s *service) UnassignOperator(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.AssignedOperatorID = nil
	saved, err := s.repo.SaveVehicle(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save vehicle")
	}
	return NewVehicleDTO(saved), nil
}

// GetWarehouse loads a single warehouse.
func (s *service) GetWarehouse(ctx context.Context, id uuid.UUID) (*WarehouseDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	warehouse, err := s.repo.FindWarehouseByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
	}
	return NewWarehouseDTO(warehouse), nil
}

// GetVehicle loads a single vehicle.
func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.loadVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewVehicleDTO(vehicle), nil
}

// ListWarehouses returns the full warehouse directory.
func (s *service) ListWarehouses(ctx context.Context) ([]WarehouseDTO, error) {
	warehouses, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list warehouses")
	}
	dtos := make([]WarehouseDTO, 0, len(warehouses))
	for i := range warehouses {
		dtos = append(dtos, *NewWarehouseDTO(&warehouses[i]))
	}
	return dtos, nil
}

// ListVehicles returns the full vehicle directory.
func (s *service) ListVehicles(ctx context.Context) ([]VehicleDTO, error) {
	vehicles, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list vehicles")
	}
	dtos := make([]VehicleDTO, 0, len(vehicles))
	for i := range vehicles {
		dtos = append(dtos, *NewVehicleDTO(&vehicles[i]))
	}
	return dtos, nil
}

// DeleteWarehouse removes the warehouse together with its stock entries.
func (s *service) DeleteWarehouse(ctx context.Context, id uuid.UUID, role enums.MemberRole) error {
	if !role.CanManageStock() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot remove locations")
	}
	if _, err := s.GetWarehouse(ctx, id); err != nil {
		return err
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteWarehouse(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete warehouse")
	}
	return nil
}

// DeleteVehicle removes the vehicle together with its stock entries.
func (s *service) DeleteVehicle(ctx context.Context, id uuid.UUID, role enums.MemberRole) error {
	if !role.CanManageStock() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role cannot remove locations")
	}
	if _, err := s.loadVehicle(ctx, id); err != nil {
		return err
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteVehicle(ctx, id)
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete vehicle")
	}
	return nil
}

// LocationExists reports whether the referenced location is registered.
func (s *service) LocationExists(ctx context.Context, location types.LocationRef) (bool, error) {
	if err := location.Validate(); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location")
	}
	return s.repo.LocationExists(ctx, location)
}

func (s *service) loadVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	vehicle, err := s.repo.FindVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}
