package enums

import "fmt"

// LocationType distinguishes the two kinds of stock locations.
type LocationType string

const (
	LocationTypeWarehouse LocationType = "warehouse"
	LocationTypeVehicle   LocationType = "vehicle"
)

var validLocationTypes = []LocationType{
	LocationTypeWarehouse,
	LocationTypeVehicle,
}

// IsValid reports whether the value matches the canonical location type enum.
func (t LocationType) IsValid() bool {
	for _, candidate := range validLocationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLocationType converts raw input into LocationType.
func ParseLocationType(value string) (LocationType, error) {
	for _, candidate := range validLocationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location type %q", value)
}
