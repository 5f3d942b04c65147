// Package pricing implements the quote calculation pipeline: line discount
// resolution, volume discount stacking, tax breakup accumulation, package
// forwarding and shipping allocation, and the final cart aggregate.
//
// The pipeline is pure in-memory computation. Callers hand it already
// resolved line items plus commercial terms and read back a Result; nothing
// here fetches data or keeps state between runs.
package pricing

// DefaultPrecision is the number of decimal places used for monetary
// rounding when the caller does not specify one.
const DefaultPrecision = 2

// TaxComponent is one named slice of a tax breakup, e.g. CGST at 9%.
// Compound components apply to the running sum of the components computed
// before them instead of the line base.
type TaxComponent struct {
	Name       string  `json:"taxName"`
	Percentage float64 `json:"taxPercentage"`
	Compound   bool    `json:"compound"`
}

// TaxBreakup carries the effective total percentage for a regime together
// with its ordered component schedule.
type TaxBreakup struct {
	TotalTax   float64        `json:"totalTax"`
	Components []TaxComponent `json:"components"`
}

// LineItem is one product row in a cart, quote or order. Derived fields are
// overwritten by the pipeline on every run.
type LineItem struct {
	ProductID string `json:"productId"`
	ItemNo    *int   `json:"itemNo,omitempty"`

	AskedQuantity float64 `json:"askedQuantity"`

	UnitListPrice float64 `json:"unitListPrice"`
	UnitPrice     float64 `json:"unitPrice"`
	TotalPrice    float64 `json:"totalPrice"`

	Discount              float64 `json:"discount"`
	AppliedDiscount       float64 `json:"appliedDiscount"`
	VolumeDiscount        float64 `json:"volumeDiscount"`
	VolumeDiscountApplied bool    `json:"volumeDiscountApplied"`
	DiscChanged           bool    `json:"discChanged"`
	NoCombine             bool    `json:"cantCombineWithOtherDiscounts"`

	TaxInclusive bool       `json:"taxInclusive"`
	Tax          float64    `json:"tax"`
	InterTax     TaxBreakup `json:"interTax"`
	IntraTax     TaxBreakup `json:"intraTax"`
	// TaxValues maps component name to the computed amount for this line.
	TaxValues map[string]float64 `json:"taxValues,omitempty"`
	TaxAmount float64            `json:"taxAmount"`

	PFItemValue     float64 `json:"pfItemValue"`
	PFRate          float64 `json:"pfRate"`
	ShippingCharges float64 `json:"shippingCharges"`
	ShippingTax     float64 `json:"shippingTax"`

	ItemTaxableAmount float64 `json:"itemTaxableAmount"`

	ProductCost      float64 `json:"productCost"`
	AddonCost        float64 `json:"addonCost"`
	DMC              float64 `json:"dmc"`
	MarginPercentage float64 `json:"marginPercentage"`

	UnitVolumePrice          float64 `json:"unitVolumePrice"`
	TotalVolumeDiscountPrice float64 `json:"totalVolumeDiscountPrice"`
}

// VolumeDiscountRecord is one entry of the externally supplied volume
// discount schedule, keyed by line number or product.
type VolumeDiscountRecord struct {
	ItemNo          *int    `json:"itemNo,omitempty"`
	ProductID       string  `json:"productId,omitempty"`
	VolumeDiscount  float64 `json:"volumeDiscount"`
	AppliedDiscount float64 `json:"appliedDiscount,omitempty"`
}

// Settings is the immutable calculation configuration threaded through the
// pipeline by value.
type Settings struct {
	ItemWiseShippingTax bool
	RoundingAdjustment  bool
	Precision           int
}

func (s Settings) precision() int {
	if s.Precision <= 0 {
		return DefaultPrecision
	}
	return s.Precision
}

// Input bundles everything a single calculation run consumes.
type Input struct {
	Items    []LineItem
	Schedule []VolumeDiscountRecord
	IsInter  bool
	Settings Settings

	OverallShipping     float64
	BeforeTax           bool
	BeforeTaxPercentage float64
	InsuranceCharges    float64
}

// CartValue is the cart aggregate. It is recomputed from scratch on every
// run and never patched incrementally.
type CartValue struct {
	SubTotal              float64            `json:"subTotal"`
	SubTotalVolume        float64            `json:"subTotalVolume"`
	VolumeDiscountApplied float64            `json:"volumeDiscountApplied"`
	TaxTotals             map[string]float64 `json:"taxTotals"`
	TotalTax              float64            `json:"totalTax"`
	OverallTax            float64            `json:"overallTax"`
	ShippingTax           float64            `json:"shippingTax"`
	PFRate                float64            `json:"pfRate"`
	OverallShipping       float64            `json:"overallShipping"`
	TaxableAmount         float64            `json:"taxableAmount"`
	InsuranceCharges      float64            `json:"insuranceCharges"`
	CalculatedTotal       float64            `json:"calculatedTotal"`
	GrandTotal            float64            `json:"grandTotal"`
	RoundingAdjustment    float64            `json:"roundingAdjustment"`
}

// Result is the outcome of a calculation run. Degraded marks the fallback
// path where the pipeline hit malformed data and returned the input lines
// unchanged with an empty breakup instead of failing the request.
type Result struct {
	Products []LineItem `json:"products"`
	Details  CartValue  `json:"vdDetails"`
	PFRate   float64    `json:"pfRate"`
	Degraded bool       `json:"degraded"`
}
