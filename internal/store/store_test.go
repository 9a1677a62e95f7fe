package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

func seedUser(t *testing.T, ctx context.Context, ms *MYSQLStore, name string) int {
	t.Helper()
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO sales_user (uuid, name, email, role, is_active)
		VALUES (:uuid, :name, :email, 'sales', 1)
	`, map[string]any{
		"uuid":  uuid.NewString(),
		"name":  name,
		"email": uuid.NewString() + "@test.local",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM sales_user WHERE id = :id", map[string]any{"id": id})
	})
	return id
}

func seedClient(t *testing.T, ctx context.Context, ms *MYSQLStore, ownerId int, createdAt time.Time) int {
	t.Helper()
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO client (owner_id, name, is_active, created_at)
		VALUES (:ownerId, :name, 1, :createdAt)
	`, map[string]any{
		"ownerId":   ownerId,
		"name":      "client-" + uuid.NewString(),
		"createdAt": createdAt,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM client WHERE id = :id", map[string]any{"id": id})
	})
	return id
}

func seedOpportunity(t *testing.T, ctx context.Context, ms *MYSQLStore, ownerId, clientId int, stage entity.Stage, value string, createdAt time.Time) (int, string) {
	t.Helper()
	u := uuid.NewString()
	id, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO opportunity (uuid, stage, value, currency, owner_id, client_id, created_at, updated_at)
		VALUES (:uuid, :stage, :value, 'EUR', :ownerId, :clientId, :createdAt, :createdAt)
	`, map[string]any{
		"uuid":      u,
		"stage":     string(stage),
		"value":     value,
		"ownerId":   ownerId,
		"clientId":  clientId,
		"createdAt": createdAt,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM opportunity WHERE id = :id", map[string]any{"id": id})
	})
	return id, u
}

func TestMetricsAggregates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	// Window far in the past so concurrent suites never collide on funnel reads.
	from := time.Date(2004, time.May, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	ownerId := seedUser(t, ctx, ms, "Metrics Owner")
	clientId := seedClient(t, ctx, ms, ownerId, from)

	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageLeads, "1000", from)
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageLeads, "2000", from.AddDate(0, 0, 1))
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageClosedWon, "5000", from.AddDate(0, 0, 1))
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageClosedLost, "700", from.AddDate(0, 0, 3))
	// Outside the window, must never be counted.
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageLeads, "9999", to.AddDate(0, 1, 0))

	owner := dependency.Eq("owner_id", ownerId)
	window := dependency.Between("created_at", from, to)

	n, err := ms.Metrics().Count(ctx, dependency.EntityOpportunity, dependency.Predicate{owner, window})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = ms.Metrics().Count(ctx, dependency.EntityOpportunity, dependency.Predicate{
		owner, window, dependency.Eq("stage", string(entity.StageLeads)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sum, err := ms.Metrics().Sum(ctx, dependency.EntityOpportunity, "value", dependency.Predicate{
		owner, window, dependency.Eq("stage", string(entity.StageClosedWon)),
	})
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("5000")), "sum = %s", sum)

	counts, err := ms.Metrics().CountByDay(ctx, dependency.EntityOpportunity, "created_at", from, to, dependency.Predicate{owner})
	require.NoError(t, err)
	assert.Equal(t, 1, counts["2004-05-10"])
	assert.Equal(t, 2, counts["2004-05-11"])
	// Empty days are simply absent; the time-series builder fills them.
	_, ok := counts["2004-05-12"]
	assert.False(t, ok)
	assert.Equal(t, 1, counts["2004-05-13"])

	funnel, err := ms.Metrics().FunnelByStage(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, funnel[entity.StageLeads].Count)
	assert.True(t, funnel[entity.StageLeads].Value.Equal(decimal.RequireFromString("3000")))
	assert.Equal(t, 1, funnel[entity.StageClosedWon].Count)
	assert.Equal(t, 1, funnel[entity.StageClosedLost].Count)
}

func TestMetricsRejectsUnknownFields(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	_, err := ms.Metrics().Count(ctx, dependency.EntityOpportunity, dependency.Predicate{
		dependency.Eq("password", "x"),
	})
	assert.Error(t, err)

	_, err = ms.Metrics().Sum(ctx, dependency.EntityOpportunity, "stage; DROP TABLE opportunity", nil)
	assert.Error(t, err)
}

func TestOpportunityLookupAndLineItems(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	created := time.Date(2004, time.June, 1, 12, 0, 0, 0, time.UTC)
	ownerId := seedUser(t, ctx, ms, "Line Item Owner")
	clientId := seedClient(t, ctx, ms, ownerId, created)
	oppId, oppUUID := seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageProposalSent, "12400", created)

	err := ExecNamed(ctx, ms.DB(), `
		INSERT INTO line_item (opportunity_id, robot_model, quantity, unit_price, contract_type, lease_months)
		VALUES (:oppId, 'RX-100', 2, 10000, 'purchase', NULL),
		       (:oppId, 'RX-100', 1, 400, 'lease', 12)
	`, map[string]any{"oppId": oppId})
	require.NoError(t, err)

	opp, err := ms.Opportunities().GetOpportunityByUUID(ctx, oppUUID)
	require.NoError(t, err)
	assert.Equal(t, oppId, opp.Id)
	assert.Equal(t, entity.StageProposalSent, opp.Stage)
	assert.True(t, opp.Value.Equal(decimal.RequireFromString("12400")))

	items, err := ms.Opportunities().GetLineItems(ctx, oppId)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, entity.ContractPurchase, items[0].ContractType)
	assert.Equal(t, 0, items[0].LeaseMonths)
	assert.Equal(t, entity.ContractLease, items[1].ContractType)
	assert.Equal(t, 12, items[1].LeaseMonths)

	_, err = ms.Opportunities().GetOpportunityByUUID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOpportunitiesStageFilterAndOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	base := time.Date(2004, time.August, 1, 0, 0, 0, 0, time.UTC)
	ownerId := seedUser(t, ctx, ms, "List Owner")
	clientId := seedClient(t, ctx, ms, ownerId, base)

	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageQualified, "100", base.AddDate(0, 0, 2))
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageLeads, "200", base)
	seedOpportunity(t, ctx, ms, ownerId, clientId, entity.StageClosedWon, "300", base.AddDate(0, 0, 1))

	p := dependency.Predicate{
		dependency.Eq("owner_id", ownerId),
		dependency.In("stage", string(entity.StageLeads), string(entity.StageQualified)),
	}
	opps, err := ms.Opportunities().ListOpportunities(ctx, p, "created_at")
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, entity.StageLeads, opps[0].Stage)
	assert.Equal(t, entity.StageQualified, opps[1].Stage)

	_, err = ms.Opportunities().ListOpportunities(ctx, nil, "owner_id; --")
	assert.Error(t, err)
}

func TestListTasksAndClients(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	base := time.Date(2004, time.September, 1, 0, 0, 0, 0, time.UTC)
	ownerId := seedUser(t, ctx, ms, "Task Owner")
	seedClient(t, ctx, ms, ownerId, base)

	completedAt := base.AddDate(0, 0, 3)
	taskId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO task (owner_id, title, status, completed_at, created_at)
		VALUES (:ownerId, 'follow up demo', 'completed', :completedAt, :createdAt)
	`, map[string]any{"ownerId": ownerId, "completedAt": completedAt, "createdAt": base})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM task WHERE id = :id", map[string]any{"id": taskId})
	})

	tasks, err := ms.Tasks().ListTasks(ctx, dependency.Predicate{
		dependency.Eq("owner_id", ownerId),
		dependency.Eq("status", string(entity.TaskCompleted)),
	}, "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "follow up demo", tasks[0].Title)
	require.NotNil(t, tasks[0].CompletedAt)

	clients, err := ms.Clients().ListClients(ctx, dependency.Predicate{
		dependency.Eq("owner_id", ownerId),
		dependency.Eq("is_active", true),
	}, "")
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.True(t, clients[0].IsActive)
}

func TestPriceBookSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	model := "RX-" + uuid.NewString()[:8]
	ppId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO purchase_price (robot_model, price) VALUES (:model, 8000)
	`, map[string]any{"model": model})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM purchase_price WHERE id = :id", map[string]any{"id": ppId})
	})

	lpId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO lease_price (robot_model, lease_months, price) VALUES (:model, 24, 250)
	`, map[string]any{"model": model})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM lease_price WHERE id = :id", map[string]any{"id": lpId})
	})

	pb, err := ms.Pricing().GetPriceBook(ctx)
	require.NoError(t, err)

	price, ok := pb.LookupPurchasePrice(model)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("8000")))

	monthly, ok := pb.LookupLeasePrice(model, 24)
	require.True(t, ok)
	assert.True(t, monthly.Equal(decimal.RequireFromString("250")))

	_, ok = pb.LookupLeasePrice(model, 36)
	assert.False(t, ok)
}

func TestTxCommitRollbackRetry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	model := "RX-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM purchase_price WHERE robot_model = :model", map[string]any{"model": model})
	})

	// A committed transaction makes its writes visible, sees them itself
	// before committing, and keeps Now() frozen for its whole duration.
	var first, second time.Time
	err := ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		require.True(t, rep.InTx())
		first = rep.Now()

		if err := ExecNamed(ctx, rep.(*MYSQLStore).DB(), `
			INSERT INTO purchase_price (robot_model, price) VALUES (:model, 7000)
		`, map[string]any{"model": model}); err != nil {
			return err
		}

		pb, err := rep.Pricing().GetPriceBook(ctx)
		if err != nil {
			return err
		}
		price, ok := pb.LookupPurchasePrice(model)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.RequireFromString("7000")))

		time.Sleep(10 * time.Millisecond)
		second = rep.Now()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, first.Equal(second), "Now() moved inside the transaction: %s -> %s", first, second)
	assert.False(t, ms.InTx())

	pb, err := ms.Pricing().GetPriceBook(ctx)
	require.NoError(t, err)
	price, ok := pb.LookupPurchasePrice(model)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("7000")))

	// A failing function rolls everything back.
	wantErr := errors.New("stop")
	err = ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		if err := ExecNamed(ctx, rep.(*MYSQLStore).DB(), `
			UPDATE purchase_price SET price = 1 WHERE robot_model = :model
		`, map[string]any{"model": model}); err != nil {
			return err
		}
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	pb, err = ms.Pricing().GetPriceBook(ctx)
	require.NoError(t, err)
	price, ok = pb.LookupPurchasePrice(model)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("7000")), "rolled-back update leaked: price = %s", price)

	// Serialization failures rerun the function; anything else returns as is.
	attempts := 0
	err = ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("conflicting read: %w", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	// Transactions do not nest.
	err = ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		_, err := rep.TxBegin(ctx)
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}

func TestUniqueViolationClassification(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	model := "RX-" + uuid.NewString()[:8]
	lpId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO lease_price (robot_model, lease_months, price) VALUES (:model, 12, 300)
	`, map[string]any{"model": model})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM lease_price WHERE id = :id", map[string]any{"id": lpId})
	})

	err = ExecNamed(ctx, ms.DB(), `
		INSERT INTO lease_price (robot_model, lease_months, price) VALUES (:model, 12, 999)
	`, map[string]any{"model": model})
	require.Error(t, err)
	assert.True(t, ms.IsErrUniqueViolation(err))
	assert.False(t, ms.IsErrorRepeat(err))
}

func TestErrorClassifiers(t *testing.T) {
	ms := &MYSQLStore{}

	assert.True(t, ms.IsErrorRepeat(fmt.Errorf("tx: %w", &mysql.MySQLError{Number: 1213})))
	assert.True(t, ms.IsErrorRepeat(&mysql.MySQLError{Number: 1205}))
	assert.False(t, ms.IsErrorRepeat(&mysql.MySQLError{Number: 1062}))
	assert.False(t, ms.IsErrorRepeat(context.DeadlineExceeded))

	assert.True(t, ms.IsErrUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, ms.IsErrUniqueViolation(errors.New("plain")))
}

func TestListGoalsReturnsActiveOnly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ms := newTestStore(t, ctx)

	now := time.Date(2004, time.July, 15, 0, 0, 0, 0, time.UTC)

	activeId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO goal (metric, target_value, current_value, period_start, period_end)
		VALUES ('revenue_won', 100000, 40000, :start, :end)
	`, map[string]any{"start": now.AddDate(0, 0, -10), "end": now.AddDate(0, 0, 10)})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM goal WHERE id = :id", map[string]any{"id": activeId})
	})

	expiredId, err := ExecNamedLastId(ctx, ms.DB(), `
		INSERT INTO goal (metric, target_value, current_value, period_start, period_end)
		VALUES ('deals_won', 10, 10, :start, :end)
	`, map[string]any{"start": now.AddDate(0, -2, 0), "end": now.AddDate(0, -1, 0)})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ExecNamed(ctx, ms.DB(), "DELETE FROM goal WHERE id = :id", map[string]any{"id": expiredId})
	})

	goals, err := ms.Goals().ListGoals(ctx, now)
	require.NoError(t, err)

	var foundActive, foundExpired bool
	for _, g := range goals {
		if g.Id == activeId {
			foundActive = true
			assert.True(t, g.TargetValue.Equal(decimal.RequireFromString("100000")))
		}
		if g.Id == expiredId {
			foundExpired = true
		}
	}
	assert.True(t, foundActive)
	assert.False(t, foundExpired)
}
