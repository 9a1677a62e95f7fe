package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robopoint/salesops-manager/internal/dependency"
	"github.com/robopoint/salesops-manager/internal/entity"
)

type taskStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Tasks() dependency.Tasks {
	return &taskStore{MYSQLStore: ms}
}

var taskOrderBy = map[string]bool{
	"created_at":   true,
	"completed_at": true,
	"due_at":       true,
}

func (ms *taskStore) ListTasks(ctx context.Context, p dependency.Predicate, orderBy string) ([]entity.Task, error) {
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !taskOrderBy[orderBy] {
		return nil, fmt.Errorf("cannot order tasks by %q", orderBy)
	}
	params := map[string]any{}
	where, err := buildWhere(dependency.EntityTask, p, params)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, status, due_at, completed_at, created_at
		FROM task%s
		ORDER BY %s
	`, where, orderBy)
	rows, err := QueryListNamed[entity.Task](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return rows, nil
}

type clientStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Clients() dependency.Clients {
	return &clientStore{MYSQLStore: ms}
}

func (ms *clientStore) ListClients(ctx context.Context, p dependency.Predicate, orderBy string) ([]entity.Client, error) {
	if orderBy == "" {
		orderBy = "created_at"
	}
	if orderBy != "created_at" && orderBy != "name" {
		return nil, fmt.Errorf("cannot order clients by %q", orderBy)
	}
	params := map[string]any{}
	where, err := buildWhere(dependency.EntityClient, p, params)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, is_active, created_at
		FROM client%s
		ORDER BY %s
	`, where, orderBy)
	rows, err := QueryListNamed[entity.Client](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return rows, nil
}

type userStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Users() dependency.Users {
	return &userStore{MYSQLStore: ms}
}

func (ms *userStore) GetSalesUsers(ctx context.Context) ([]entity.SalesUser, error) {
	query := `
		SELECT id, uuid, name, email, role, is_active
		FROM sales_user
		WHERE role = 'sales' AND is_active = 1
		ORDER BY id
	`
	rows, err := QueryListNamed[entity.SalesUser](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("get sales users: %w", err)
	}
	return rows, nil
}

type goalStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Goals() dependency.Goals {
	return &goalStore{MYSQLStore: ms}
}

func (ms *goalStore) ListGoals(ctx context.Context, now time.Time) ([]entity.Goal, error) {
	query := `
		SELECT id, metric, target_value, current_value, period_start, period_end
		FROM goal
		WHERE period_start <= :now AND period_end >= :now
		ORDER BY id
	`
	rows, err := QueryListNamed[entity.Goal](ctx, ms.DB(), query, map[string]any{"now": now})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return rows, nil
}
