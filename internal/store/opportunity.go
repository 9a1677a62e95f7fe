package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

type opportunityStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Opportunities() dependency.Opportunities {
	return &opportunityStore{MYSQLStore: ms}
}

func (ms *opportunityStore) GetOpportunityByUUID(ctx context.Context, uuid string) (*entity.Opportunity, error) {
	query := `
		SELECT id, uuid, stage, value, currency, owner_id, client_id, created_at, updated_at
		FROM opportunity
		WHERE uuid = :uuid
	`
	o, err := QueryNamedOne[entity.Opportunity](ctx, ms.DB(), query, map[string]any{"uuid": uuid})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("opportunity %s: %w", uuid, ErrNotFound)
		}
		return nil, fmt.Errorf("get opportunity by uuid: %w", err)
	}
	return &o, nil
}

// orderable columns for opportunity listings
var opportunityOrderBy = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"value":      true,
	"stage":      true,
}

func (ms *opportunityStore) ListOpportunities(ctx context.Context, p dependency.Predicate, orderBy string) ([]entity.Opportunity, error) {
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !opportunityOrderBy[orderBy] {
		return nil, fmt.Errorf("cannot order opportunities by %q", orderBy)
	}
	params := map[string]any{}
	where, err := buildWhere(dependency.EntityOpportunity, p, params)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, uuid, stage, value, currency, owner_id, client_id, created_at, updated_at
		FROM opportunity%s
		ORDER BY %s
	`, where, orderBy)
	rows, err := QueryListNamed[entity.Opportunity](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return rows, nil
}

func (ms *opportunityStore) GetLineItems(ctx context.Context, opportunityId int) ([]entity.LineItem, error) {
	query := `
		SELECT id, opportunity_id, robot_model, quantity, unit_price, contract_type, COALESCE(lease_months, 0) AS lease_months
		FROM line_item
		WHERE opportunity_id = :opportunityId
		ORDER BY id
	`
	rows, err := QueryListNamed[entity.LineItem](ctx, ms.DB(), query, map[string]any{"opportunityId": opportunityId})
	if err != nil {
		return nil, fmt.Errorf("get line items: %w", err)
	}
	return rows, nil
}
