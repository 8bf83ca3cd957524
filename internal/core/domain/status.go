package domain

import "fmt"

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// Label returns the human readable name of the status.
func (s ProductStatus) Label() string {
	switch s {
	case ProductStatusActive:
		return "Active"
	case ProductStatusInactive:
		return "Inactive"
	case ProductStatusDiscontinued:
		return "Discontinued"
	default:
		return "Unknown"
	}
}

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

func ParseProductStatus(v string) (ProductStatus, error) {
	s := ProductStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown product status %q", ErrInvalidArgument, v)
	}
	return s, nil
}
