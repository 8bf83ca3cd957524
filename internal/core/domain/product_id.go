package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProductID identifies a Product. The zero value is "no id".
type ProductID struct {
	value string
}

func NewProductID() ProductID {
	return ProductID{value: uuid.NewString()}
}

func ParseProductID(raw string) (ProductID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ProductID{}, fmt.Errorf("%w: product id cannot be empty", ErrInvalidArgument)
	}
	return ProductID{value: v}, nil
}

func (id ProductID) String() string {
	return id.value
}

func (id ProductID) IsZero() bool {
	return id.value == ""
}
