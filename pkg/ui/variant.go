package ui

// Variant selects the colour scheme of a component.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantInfo    Variant = "info"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
	VariantOutline Variant = "outline"
)

// Normalize returns v, or VariantDefault when v is not a known variant.
func (v Variant) Normalize() Variant {
	switch v {
	case VariantInfo, VariantSuccess, VariantWarning, VariantDanger, VariantOutline:
		return v
	default:
		return VariantDefault
	}
}

// Trend is the direction of a stat's change.
type Trend string

const (
	TrendNone Trend = ""
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Normalize returns t, or TrendNone when t is not a known trend.
func (t Trend) Normalize() Trend {
	switch t {
	case TrendUp, TrendDown, TrendFlat:
		return t
	default:
		return TrendNone
	}
}

func (t Trend) symbol() string {
	switch t {
	case TrendUp:
		return "▲"
	case TrendDown:
		return "▼"
	case TrendFlat:
		return "■"
	default:
		return ""
	}
}

// Size is the scale of a loading indicator.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

// Normalize returns s, or SizeMedium when s is not a known size.
func (s Size) Normalize() Size {
	switch s {
	case SizeSmall, SizeLarge:
		return s
	default:
		return SizeMedium
	}
}
