package store

import (
	"fmt"
	"strings"

	"github.com/robopoint/salesops-manager/internal/dependency"
)

var aggregateTables = map[dependency.AggregateEntity]string{
	dependency.EntityOpportunity: "opportunity",
	dependency.EntityTask:        "task",
	dependency.EntityClient:      "client",
}

// aggregateFields whitelists the columns each entity exposes to predicates so
// field names never reach the SQL text unchecked.
var aggregateFields = map[dependency.AggregateEntity]map[string]bool{
	dependency.EntityOpportunity: {
		"stage":      true,
		"owner_id":   true,
		"client_id":  true,
		"currency":   true,
		"value":      true,
		"created_at": true,
		"updated_at": true,
	},
	dependency.EntityTask: {
		"status":       true,
		"owner_id":     true,
		"created_at":   true,
		"completed_at": true,
		"due_at":       true,
	},
	dependency.EntityClient: {
		"owner_id":   true,
		"is_active":  true,
		"created_at": true,
	},
}

func tableFor(e dependency.AggregateEntity) (string, error) {
	t, ok := aggregateTables[e]
	if !ok {
		return "", fmt.Errorf("unknown aggregate entity %q", e)
	}
	return t, nil
}

func fieldFor(e dependency.AggregateEntity, field string) (string, error) {
	if !aggregateFields[e][field] {
		return "", fmt.Errorf("field %q is not queryable on entity %q", field, e)
	}
	return field, nil
}

// buildWhere renders a predicate conjunction into SQL, filling params with
// named arguments. Returns an empty string for an empty predicate.
func buildWhere(e dependency.AggregateEntity, p dependency.Predicate, params map[string]any) (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(p))
	for i, c := range p {
		field, err := fieldFor(e, c.Field)
		if err != nil {
			return "", err
		}
		switch c.Op {
		case dependency.OpEquals:
			name := fmt.Sprintf("p%d", i)
			params[name] = c.Value
			clauses = append(clauses, fmt.Sprintf("%s = :%s", field, name))
		case dependency.OpInSet:
			if len(c.Values) == 0 {
				return "", fmt.Errorf("in-set condition on %q has no values", field)
			}
			name := fmt.Sprintf("p%d", i)
			params[name] = c.Values
			clauses = append(clauses, fmt.Sprintf("%s IN (:%s)", field, name))
		case dependency.OpDateRange:
			if !c.From.IsZero() {
				name := fmt.Sprintf("p%dfrom", i)
				params[name] = c.From
				clauses = append(clauses, fmt.Sprintf("%s >= :%s", field, name))
			}
			if !c.To.IsZero() {
				name := fmt.Sprintf("p%dto", i)
				params[name] = c.To
				cmp := "<"
				if c.ToInclusive {
					cmp = "<="
				}
				clauses = append(clauses, fmt.Sprintf("%s %s :%s", field, cmp, name))
			}
		default:
			return "", fmt.Errorf("unknown predicate op %d", c.Op)
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), nil
}
