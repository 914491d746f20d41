package cartitem

import "errors"

// Kind distinguishes the two cart line shapes: a discrete component that
// passes through procurement as-is, and a pre-built system that explodes
// into its constituent parts.
type Kind string

const (
	KindDiscrete Kind = "discrete"
	KindPrebuilt Kind = "prebuilt"
)

var ErrInvalidKind = errors.New("invalid cart item kind")

func (k Kind) String() string {
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDiscrete, KindPrebuilt:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

// CartItem is one settled cart line as reported by the storefront.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Kind     Kind   `json:"kind"`
}
