package store

import (
	"context"
	"fmt"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

type pricingStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Pricing() dependency.Pricing {
	return &pricingStore{MYSQLStore: ms}
}

func (ms *pricingStore) GetPurchasePrices(ctx context.Context) ([]entity.PurchasePrice, error) {
	query := `
		SELECT id, robot_model, price, currency, updated_at
		FROM purchase_price
		ORDER BY robot_model, updated_at
	`
	rows, err := QueryListNamed[entity.PurchasePrice](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("get purchase prices: %w", err)
	}
	return rows, nil
}

func (ms *pricingStore) GetLeasePrices(ctx context.Context) ([]entity.LeasePrice, error) {
	query := `
		SELECT id, robot_model, lease_months, price, currency, updated_at
		FROM lease_price
		ORDER BY robot_model, lease_months
	`
	rows, err := QueryListNamed[entity.LeasePrice](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("get lease prices: %w", err)
	}
	return rows, nil
}

// GetPriceBook loads both tiers as one snapshot. The two reads run inside a
// serializable transaction so the margin calculator never sees a purchase
// tier from before a repricing paired with a lease tier from after it.
func (ms *pricingStore) GetPriceBook(ctx context.Context) (*entity.PriceBook, error) {
	if ms.InTx() {
		return loadPriceBook(ctx, ms.MYSQLStore)
	}
	var pb *entity.PriceBook
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		var err error
		pb, err = loadPriceBook(ctx, rep)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("price book snapshot: %w", err)
	}
	return pb, nil
}

func loadPriceBook(ctx context.Context, rep dependency.Repository) (*entity.PriceBook, error) {
	purchase, err := rep.Pricing().GetPurchasePrices(ctx)
	if err != nil {
		return nil, err
	}
	lease, err := rep.Pricing().GetLeasePrices(ctx)
	if err != nil {
		return nil, err
	}
	return entity.NewPriceBook(purchase, lease), nil
}
