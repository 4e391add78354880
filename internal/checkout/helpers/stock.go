package helpers

import (
	"math"

	"github.com/google/uuid"
)

// StockKey identifies one stock counter: a variant when VariantID is set,
// otherwise the product itself.
type StockKey struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

// KeyFor returns the stock counter a line draws from.
func KeyFor(line Line) StockKey {
	key := StockKey{ProductID: line.ProductID}
	if line.VariantID != nil {
		key.VariantID = *line.VariantID
	}
	return key
}

// IsVariant reports whether the key points at a variant counter.
func (k StockKey) IsVariant() bool {
	return k.VariantID != uuid.Nil
}

// Demand is the summed quantity requested from one stock counter.
type Demand struct {
	Key      StockKey
	Quantity int
}

// SumDemand adds up quantities per stock counter across all partitions,
// ordered by first appearance. Sums saturate at math.MaxInt so an oversized
// cart is reported as a shortage rather than wrapping negative.
func SumDemand(partitions []CreatorPartition) []Demand {
	index := map[StockKey]int{}
	var demand []Demand
	for _, p := range partitions {
		for _, line := range p.Lines {
			key := KeyFor(line)
			pos, ok := index[key]
			if !ok {
				pos = len(demand)
				index[key] = pos
				demand = append(demand, Demand{Key: key})
			}
			if line.Quantity > math.MaxInt-demand[pos].Quantity {
				demand[pos].Quantity = math.MaxInt
				continue
			}
			demand[pos].Quantity += line.Quantity
		}
	}
	return demand
}

// StockShortage describes a counter that cannot cover its demand.
type StockShortage struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Available int        `json:"available"`
	Requested int        `json:"requested"`
}

// FindShortages compares demand with available stock and returns every
// counter where requested > available.
func FindShortages(demand []Demand, available map[StockKey]int) []StockShortage {
	var shortages []StockShortage
	for _, d := range demand {
		stock := available[d.Key]
		if d.Quantity <= stock {
			continue
		}
		shortage := StockShortage{
			ProductID: d.Key.ProductID,
			Available: stock,
			Requested: d.Quantity,
		}
		if d.Key.IsVariant() {
			variantID := d.Key.VariantID
			shortage.VariantID = &variantID
		}
		shortages = append(shortages, shortage)
	}
	return shortages
}
