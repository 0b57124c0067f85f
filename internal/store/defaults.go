package store

import (
	"fmt"
	"slices"

	apperrors "github.com/FBK-Manuel/wearehfg/pkg/errors"
)

// CartDefaults fills in what an add-to-cart request leaves out.
type CartDefaults struct {
	Size   string   `env:"CART_DEFAULT_SIZE" envDefault:"S"`
	Color  string   `env:"CART_DEFAULT_COLOR" envDefault:"Black"`
	Sizes  []string `env:"CART_DEFAULT_SIZES" envDefault:"S,M,L,XL" envSeparator:","`
	Colors []string `env:"CART_DEFAULT_COLORS" envDefault:"Black,White" envSeparator:","`
}

// DefaultCartDefaults returns size S, color Black, sizes S-XL and colors Black and White.
func DefaultCartDefaults() CartDefaults {
	return CartDefaults{
		Size:   "S",
		Color:  "Black",
		Sizes:  []string{"S", "M", "L", "XL"},
		Colors: []string{"Black", "White"},
	}
}

// Validate rejects defaults that would produce a line whose selection is not
// among its own available options.
func (d CartDefaults) Validate() error {
	switch {
	case d.Size == "":
		return apperrors.InvalidInput("default size is required")
	case d.Color == "":
		return apperrors.InvalidInput("default color is required")
	case len(d.Sizes) == 0:
		return apperrors.InvalidInput("default sizes must not be empty")
	case len(d.Colors) == 0:
		return apperrors.InvalidInput("default colors must not be empty")
	case !slices.Contains(d.Sizes, d.Size):
		return apperrors.InvalidInput(fmt.Sprintf("default size %q is not in %v", d.Size, d.Sizes))
	case !slices.Contains(d.Colors, d.Color):
		return apperrors.InvalidInput(fmt.Sprintf("default color %q is not in %v", d.Color, d.Colors))
	}
	return nil
}
