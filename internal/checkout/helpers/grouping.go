package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one cart line as submitted by the buyer.
type Line struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CreatorPartition holds the lines owned by one creator.
type CreatorPartition struct {
	CreatorID uuid.UUID
	Lines     []Line
	Subtotal  decimal.Decimal
}

// OwnerResolver returns the creator owning the line's product.
type OwnerResolver func(line Line) (uuid.UUID, error)

// PartitionByCreator groups lines by owning creator. Partitions are ordered by
// the first appearance of their creator in lines and keep line order within a
// group. The first resolver error aborts the partitioning.
func PartitionByCreator(lines []Line, owner OwnerResolver) ([]CreatorPartition, error) {
	index := make(map[uuid.UUID]int, len(lines))
	partitions := make([]CreatorPartition, 0, len(lines))
	for _, line := range lines {
		creatorID, err := owner(line)
		if err != nil {
			return nil, err
		}
		pos, ok := index[creatorID]
		if !ok {
			pos = len(partitions)
			index[creatorID] = pos
			partitions = append(partitions, CreatorPartition{CreatorID: creatorID, Subtotal: decimal.Zero})
		}
		partitions[pos].Lines = append(partitions[pos].Lines, line)
		partitions[pos].Subtotal = partitions[pos].Subtotal.Add(line.Subtotal())
	}
	return partitions, nil
}

// CartSubtotal sums the partition subtotals.
func CartSubtotal(partitions []CreatorPartition) decimal.Decimal {
	total := decimal.Zero
	for _, p := range partitions {
		total = total.Add(p.Subtotal)
	}
	return total
}
