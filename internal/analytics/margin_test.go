package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robopoint/salesops-manager/internal/entity"
)

func testPriceBook(t *testing.T) *entity.PriceBook {
	t.Helper()
	now := time.Now()
	return entity.NewPriceBook(
		[]entity.PurchasePrice{
			{RobotModel: "RX-100", Price: decimal.RequireFromString("8000"), UpdatedAt: now},
			{RobotModel: "RX-200", Price: decimal.RequireFromString("15000"), UpdatedAt: now},
		},
		[]entity.LeasePrice{
			{RobotModel: "RX-100", LeaseMonths: 12, Price: decimal.RequireFromString("300"), UpdatedAt: now},
			{RobotModel: "RX-100", LeaseMonths: 24, Price: decimal.RequireFromString("250"), UpdatedAt: now},
		},
	)
}

func TestComputeMargins_Purchase(t *testing.T) {
	pb := testPriceBook(t)
	items := []entity.LineItem{
		{RobotModel: "RX-100", Quantity: 3, UnitPrice: decimal.RequireFromString("10000"), ContractType: entity.ContractPurchase},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 1)

	// (10000 - 8000) * 3
	assert.True(t, report.PerItem[0].Margin.Equal(decimal.RequireFromString("6000")))
	assert.True(t, report.PerItem[0].HasCostBasis)
	assert.True(t, report.Total.Equal(decimal.RequireFromString("6000")))
}

func TestComputeMargins_Lease(t *testing.T) {
	pb := testPriceBook(t)
	items := []entity.LineItem{
		{RobotModel: "RX-100", Quantity: 2, UnitPrice: decimal.RequireFromString("400"), ContractType: entity.ContractLease, LeaseMonths: 12},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 1)

	// (400 - 300) * 2 * 12
	assert.True(t, report.PerItem[0].Margin.Equal(decimal.RequireFromString("2400")))
	assert.True(t, report.PerItem[0].HasCostBasis)
}

func TestComputeMargins_MissingCostBasisIsZeroNotError(t *testing.T) {
	pb := testPriceBook(t)
	items := []entity.LineItem{
		{RobotModel: "RX-999", Quantity: 1, UnitPrice: decimal.RequireFromString("5000"), ContractType: entity.ContractPurchase},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 1)

	assert.True(t, report.PerItem[0].Margin.IsZero())
	assert.False(t, report.PerItem[0].HasCostBasis)
	assert.True(t, report.Total.IsZero())
}

func TestComputeMargins_LeaseTenorMustMatchExactly(t *testing.T) {
	pb := testPriceBook(t)
	// RX-100 has 12 and 24 month tenors but not 36.
	items := []entity.LineItem{
		{RobotModel: "RX-100", Quantity: 1, UnitPrice: decimal.RequireFromString("400"), ContractType: entity.ContractLease, LeaseMonths: 36},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 1)

	assert.True(t, report.PerItem[0].Margin.IsZero())
	assert.False(t, report.PerItem[0].HasCostBasis)
}

func TestComputeMargins_MixedItemsSumIntoTotal(t *testing.T) {
	pb := testPriceBook(t)
	items := []entity.LineItem{
		{RobotModel: "RX-100", Quantity: 1, UnitPrice: decimal.RequireFromString("9000"), ContractType: entity.ContractPurchase},
		{RobotModel: "RX-100", Quantity: 1, UnitPrice: decimal.RequireFromString("350"), ContractType: entity.ContractLease, LeaseMonths: 24},
		{RobotModel: "unknown", Quantity: 5, UnitPrice: decimal.RequireFromString("100"), ContractType: entity.ContractPurchase},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 3)

	// 1000 + (350-250)*24 + 0
	assert.True(t, report.Total.Equal(decimal.RequireFromString("3400")),
		"total = %s", report.Total)
}

func TestComputeMargins_NegativeMarginIsKept(t *testing.T) {
	pb := testPriceBook(t)
	items := []entity.LineItem{
		{RobotModel: "RX-200", Quantity: 2, UnitPrice: decimal.RequireFromString("14000"), ContractType: entity.ContractPurchase},
	}

	report := ComputeMargins(items, pb)
	require.Len(t, report.PerItem, 1)

	assert.True(t, report.PerItem[0].Margin.Equal(decimal.RequireFromString("-2000")))
	assert.True(t, report.PerItem[0].HasCostBasis)
}

func TestNewPriceBook_MostRecentPurchaseRowWins(t *testing.T) {
	older := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 3, 0)

	pb := entity.NewPriceBook([]entity.PurchasePrice{
		{RobotModel: "RX-100", Price: decimal.RequireFromString("9000"), UpdatedAt: newer},
		{RobotModel: "RX-100", Price: decimal.RequireFromString("8000"), UpdatedAt: older},
	}, nil)

	price, ok := pb.LookupPurchasePrice("RX-100")
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("9000")))
}
