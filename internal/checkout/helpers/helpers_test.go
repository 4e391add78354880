package helpers

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func ownerMap(owners map[uuid.UUID]uuid.UUID) OwnerResolver {
	return func(line Line) (uuid.UUID, error) {
		creator, ok := owners[line.ProductID]
		if !ok {
			return uuid.Nil, errors.New("product not found")
		}
		return creator, nil
	}
}

func TestPartitionByCreatorKeepsFirstAppearanceOrder(t *testing.T) {
	t.Parallel()
	creatorX := uuid.New()
	creatorY := uuid.New()
	p1, p2, p3 := uuid.New(), uuid.New(), uuid.New()
	lines := []Line{
		{ProductID: p2, Quantity: 1, UnitPrice: dec("50.00")},
		{ProductID: p1, Quantity: 2, UnitPrice: dec("30.00")},
		{ProductID: p3, Quantity: 1, UnitPrice: dec("40.00")},
	}
	owners := map[uuid.UUID]uuid.UUID{p1: creatorX, p2: creatorY, p3: creatorX}

	partitions, err := PartitionByCreator(lines, ownerMap(owners))
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(partitions) != 2 {
		t.Fatalf("expected 2 partitions, got %d", len(partitions))
	}
	if partitions[0].CreatorID != creatorY || partitions[1].CreatorID != creatorX {
		t.Fatalf("partitions not in first-appearance order")
	}
	if partitions[1].Lines[0].ProductID != p1 || partitions[1].Lines[1].ProductID != p3 {
		t.Fatalf("line order not preserved within partition")
	}
	if !partitions[1].Subtotal.Equal(dec("100.00")) {
		t.Fatalf("expected subtotal 100, got %s", partitions[1].Subtotal)
	}
}

func TestPartitionByCreatorIsComplete(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	creators := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	owners := map[uuid.UUID]uuid.UUID{}
	var lines []Line
	for i := 0; i < 40; i++ {
		productID := uuid.New()
		owners[productID] = creators[rng.Intn(len(creators))]
		lines = append(lines, Line{ProductID: productID, Quantity: 1 + rng.Intn(4), UnitPrice: decimal.New(int64(rng.Intn(10000)), -2)})
	}

	partitions, err := PartitionByCreator(lines, ownerMap(owners))
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	seen := map[uuid.UUID]int{}
	seenCreators := map[uuid.UUID]bool{}
	for _, p := range partitions {
		if seenCreators[p.CreatorID] {
			t.Fatalf("creator %s appears in two partitions", p.CreatorID)
		}
		seenCreators[p.CreatorID] = true
		for _, line := range p.Lines {
			if owners[line.ProductID] != p.CreatorID {
				t.Fatalf("line for product %s in wrong partition", line.ProductID)
			}
			seen[line.ProductID]++
		}
	}
	if len(seen) != len(lines) {
		t.Fatalf("expected %d lines across partitions, got %d", len(lines), len(seen))
	}
	for productID, count := range seen {
		if count != 1 {
			t.Fatalf("product %s appears %d times", productID, count)
		}
	}
}

func TestPartitionByCreatorVariantAndBaseLineShareOrder(t *testing.T) {
	t.Parallel()
	creator := uuid.New()
	productID := uuid.New()
	variantID := uuid.New()
	lines := []Line{
		{ProductID: productID, VariantID: &variantID, Quantity: 1, UnitPrice: dec("25.00")},
		{ProductID: productID, Quantity: 2, UnitPrice: dec("20.00")},
	}

	partitions, err := PartitionByCreator(lines, ownerMap(map[uuid.UUID]uuid.UUID{productID: creator}))
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(partitions) != 1 || len(partitions[0].Lines) != 2 {
		t.Fatalf("expected a single partition with two lines, got %+v", partitions)
	}
	if !partitions[0].Subtotal.Equal(dec("65.00")) {
		t.Fatalf("expected subtotal 65, got %s", partitions[0].Subtotal)
	}
}

func TestPartitionByCreatorPropagatesResolverError(t *testing.T) {
	t.Parallel()
	_, err := PartitionByCreator([]Line{{ProductID: uuid.New(), Quantity: 1}}, ownerMap(nil))
	if err == nil {
		t.Fatalf("expected resolver error")
	}
}

func TestAllocateProportionalShares(t *testing.T) {
	t.Parallel()
	creatorX := uuid.New()
	creatorY := uuid.New()
	partitions := []CreatorPartition{
		{CreatorID: creatorX, Subtotal: dec("100.00")},
		{CreatorID: creatorY, Subtotal: dec("50.00")},
	}

	allocs := Allocate(partitions, SharedCosts{Shipping: dec("15"), Tax: dec("10"), Discount: decimal.Zero})
	if len(allocs) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocs))
	}
	cases := []struct {
		alloc    AllocatedCosts
		creator  uuid.UUID
		shipping string
		tax      string
		total    string
	}{
		{allocs[0], creatorX, "10.00", "6.67", "116.67"},
		{allocs[1], creatorY, "5.00", "3.33", "58.33"},
	}
	for _, tc := range cases {
		if tc.alloc.CreatorID != tc.creator {
			t.Fatalf("allocation out of partition order")
		}
		if !tc.alloc.Shipping.Equal(dec(tc.shipping)) {
			t.Fatalf("expected shipping %s, got %s", tc.shipping, tc.alloc.Shipping)
		}
		if !tc.alloc.Tax.Equal(dec(tc.tax)) {
			t.Fatalf("expected tax %s, got %s", tc.tax, tc.alloc.Tax)
		}
		if !tc.alloc.Total.Equal(dec(tc.total)) {
			t.Fatalf("expected total %s, got %s", tc.total, tc.alloc.Total)
		}
	}
}

func TestAllocateRoundsHalfUp(t *testing.T) {
	t.Parallel()
	partitions := []CreatorPartition{
		{CreatorID: uuid.New(), Subtotal: dec("1.00")},
		{CreatorID: uuid.New(), Subtotal: dec("1.00")},
	}
	allocs := Allocate(partitions, SharedCosts{Shipping: dec("0.05"), Tax: decimal.Zero, Discount: decimal.Zero})
	for _, alloc := range allocs {
		if !alloc.Shipping.Equal(dec("0.03")) {
			t.Fatalf("expected 0.025 to round up to 0.03, got %s", alloc.Shipping)
		}
	}
}

func TestAllocateZeroSubtotalAssignsNothing(t *testing.T) {
	t.Parallel()
	partitions := []CreatorPartition{
		{CreatorID: uuid.New(), Subtotal: decimal.Zero},
		{CreatorID: uuid.New(), Subtotal: decimal.Zero},
	}
	allocs := Allocate(partitions, SharedCosts{Shipping: dec("10"), Tax: dec("2"), Discount: dec("1")})
	for _, alloc := range allocs {
		if !alloc.Shipping.IsZero() || !alloc.Tax.IsZero() || !alloc.Discount.IsZero() || !alloc.Total.IsZero() {
			t.Fatalf("expected zero shares, got %+v", alloc)
		}
	}
}

func TestAllocateConservesTotalsWithinTolerance(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(6)
		partitions := make([]CreatorPartition, n)
		for i := range partitions {
			partitions[i] = CreatorPartition{CreatorID: uuid.New(), Subtotal: decimal.New(int64(1+rng.Intn(50000)), -2)}
		}
		costs := SharedCosts{
			Shipping: decimal.New(int64(rng.Intn(3000)), -2),
			Tax:      decimal.New(int64(rng.Intn(3000)), -2),
			Discount: decimal.New(int64(rng.Intn(1000)), -2),
		}

		sum := decimal.Zero
		for _, alloc := range Allocate(partitions, costs) {
			sum = sum.Add(alloc.Total)
		}
		diff := sum.Sub(ExpectedTotal(partitions, costs)).Abs()
		tolerance := dec("0.01").Mul(decimal.NewFromInt(int64(n)))
		if diff.GreaterThan(tolerance) {
			t.Fatalf("round %d: drift %s exceeds tolerance %s", round, diff, tolerance)
		}
	}
}

func TestAllocateNeverProducesNegativeTotals(t *testing.T) {
	t.Parallel()
	partitions := []CreatorPartition{
		{CreatorID: uuid.New(), Subtotal: dec("1.00")},
		{CreatorID: uuid.New(), Subtotal: dec("249.00")},
	}
	costs := SharedCosts{Shipping: dec("1"), Tax: dec("1"), Discount: dec("252")}
	if errs := ValidateSharedCosts(costs, CartSubtotal(partitions)); len(errs) != 0 {
		t.Fatalf("expected full discount to be accepted, got %+v", errs)
	}

	allocs := Allocate(partitions, costs)
	discount := decimal.Zero
	sum := decimal.Zero
	for _, alloc := range allocs {
		if alloc.Total.IsNegative() {
			t.Fatalf("expected non-negative total, got %+v", alloc)
		}
		discount = discount.Add(alloc.Discount)
		sum = sum.Add(alloc.Total)
	}
	if !allocs[0].Discount.Equal(dec("1.00")) || !allocs[0].Total.IsZero() {
		t.Fatalf("expected first partition capped at 1.00, got %+v", allocs[0])
	}
	if !discount.Equal(dec("252")) {
		t.Fatalf("expected discount 252 preserved, got %s", discount)
	}
	if !sum.IsZero() {
		t.Fatalf("expected totals to sum to 0, got %s", sum)
	}
}

func TestAllocateMovesCappedDiscountBackwards(t *testing.T) {
	t.Parallel()
	partitions := []CreatorPartition{
		{CreatorID: uuid.New(), Subtotal: dec("249.00")},
		{CreatorID: uuid.New(), Subtotal: dec("1.00")},
	}
	allocs := Allocate(partitions, SharedCosts{Shipping: dec("1"), Tax: dec("1"), Discount: dec("252")})
	if !allocs[1].Total.IsZero() || !allocs[0].Total.IsZero() {
		t.Fatalf("expected both totals zero, got %+v", allocs)
	}
	if !allocs[0].Discount.Add(allocs[1].Discount).Equal(dec("252")) {
		t.Fatalf("expected discount preserved, got %+v", allocs)
	}
}

func TestSumDemandSaturatesInsteadOfWrapping(t *testing.T) {
	t.Parallel()
	product := uuid.New()
	partitions := []CreatorPartition{{Lines: []Line{
		{ProductID: product, Quantity: math.MaxInt},
		{ProductID: product, Quantity: math.MaxInt},
	}}}

	demand := SumDemand(partitions)
	if len(demand) != 1 || demand[0].Quantity != math.MaxInt {
		t.Fatalf("expected saturated demand, got %+v", demand)
	}
	shortages := FindShortages(demand, map[StockKey]int{{ProductID: product}: 5})
	if len(shortages) != 1 || shortages[0].Available != 5 {
		t.Fatalf("expected shortage against stock 5, got %+v", shortages)
	}
}

func TestSumDemandAndFindShortages(t *testing.T) {
	t.Parallel()
	productA := uuid.New()
	productB := uuid.New()
	variantA := uuid.New()
	partitions := []CreatorPartition{
		{Lines: []Line{
			{ProductID: productA, Quantity: 2},
			{ProductID: productA, VariantID: &variantA, Quantity: 1},
		}},
		{Lines: []Line{
			{ProductID: productB, Quantity: 5},
			{ProductID: productA, Quantity: 2},
		}},
	}

	demand := SumDemand(partitions)
	if len(demand) != 3 {
		t.Fatalf("expected 3 counters, got %d", len(demand))
	}
	if demand[0].Key != (StockKey{ProductID: productA}) || demand[0].Quantity != 4 {
		t.Fatalf("expected product A demand 4, got %+v", demand[0])
	}

	available := map[StockKey]int{
		{ProductID: productA}:                      3,
		{ProductID: productA, VariantID: variantA}: 1,
		{ProductID: productB}:                      3,
	}
	shortages := FindShortages(demand, available)
	if len(shortages) != 2 {
		t.Fatalf("expected 2 shortages, got %+v", shortages)
	}
	if shortages[0].ProductID != productA || shortages[0].Available != 3 || shortages[0].Requested != 4 || shortages[0].VariantID != nil {
		t.Fatalf("unexpected first shortage %+v", shortages[0])
	}
	if shortages[1].ProductID != productB || shortages[1].Available != 3 || shortages[1].Requested != 5 {
		t.Fatalf("unexpected second shortage %+v", shortages[1])
	}
}

func TestValidateLines(t *testing.T) {
	t.Parallel()
	nilVariant := uuid.Nil
	errs := ValidateLines([]Line{
		{ProductID: uuid.Nil, Quantity: 0, UnitPrice: dec("-1")},
		{ProductID: uuid.New(), VariantID: &nilVariant, Quantity: 1, UnitPrice: dec("1.005")},
	}, 10)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{"lines[0].product_id", "lines[0].quantity", "lines[0].unit_price", "lines[1].variant_id", "lines[1].unit_price"} {
		if !fields[want] {
			t.Fatalf("expected error for %s, got %+v", want, errs)
		}
	}

	huge := ValidateLines([]Line{{ProductID: uuid.New(), Quantity: MaxLineQuantity + 1, UnitPrice: dec("1")}}, 10)
	if len(huge) != 1 || huge[0].Field != "lines[0].quantity" {
		t.Fatalf("expected quantity bound error, got %+v", huge)
	}
	if errs := ValidateLines([]Line{{ProductID: uuid.New(), Quantity: MaxLineQuantity, UnitPrice: dec("1")}}, 10); len(errs) != 0 {
		t.Fatalf("expected max quantity accepted, got %+v", errs)
	}

	if errs := ValidateLines(nil, 10); len(errs) != 1 || errs[0].Field != "lines" {
		t.Fatalf("expected empty lines error, got %+v", errs)
	}
	tooMany := []Line{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("1")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("1")},
	}
	if errs := ValidateLines(tooMany, 1); len(errs) != 1 {
		t.Fatalf("expected max lines error, got %+v", errs)
	}
}

func TestValidateSharedCosts(t *testing.T) {
	t.Parallel()
	errs := ValidateSharedCosts(SharedCosts{Shipping: dec("-1"), Tax: dec("0"), Discount: dec("0")}, dec("10"))
	if len(errs) != 1 || errs[0].Field != "shipping_total" {
		t.Fatalf("expected shipping error, got %+v", errs)
	}
	errs = ValidateSharedCosts(SharedCosts{Shipping: dec("1"), Tax: dec("1"), Discount: dec("12.01")}, dec("10"))
	if len(errs) != 1 || errs[0].Field != "discount_total" {
		t.Fatalf("expected discount error, got %+v", errs)
	}
	if errs := ValidateSharedCosts(SharedCosts{Shipping: dec("1"), Tax: dec("1"), Discount: dec("12")}, dec("10")); len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	if ValidationError(nil) != nil {
		t.Fatalf("expected nil for no field errors")
	}
	err := ValidationError([]FieldError{{Field: "lines", Message: "required"}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}
