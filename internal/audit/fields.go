// Package audit turns entity writes into history events.
//
// Entities embed Tracker and implement Subject. The gorm Plugin snapshots
// subjects when they are loaded and diffs the snapshot against the current
// values after every create, update and delete, writing the resulting events
// through the same connection (and so the same transaction) as the write.
package audit

import (
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

// Fields is a flat snapshot of the audited columns of an entity. Values must
// be JSON friendly scalars: string, int64, bool or nil.
type Fields map[string]any

// Subject is implemented by every audited model.
type Subject interface {
	AuditEntity() history.EntityType
	AuditKey() string
	AuditFields() Fields
	AuditRules() Rules

	Remember(Fields)
	Original() Fields
}

// Tracker stores the snapshot taken at load time. Embed it with `gorm:"-"`.
type Tracker struct {
	original Fields
}

func (t *Tracker) Remember(f Fields) {
	t.original = f
}

func (t *Tracker) Original() Fields {
	return t.original
}

// Diff returns the changed fields in name order.
func Diff(before, after Fields) []history.Change {
	keys := make(map[string]struct{}, len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	var changes []history.Change
	for _, k := range names {
		b, a := before[k], after[k]
		if reflect.DeepEqual(b, a) {
			continue
		}
		changes = append(changes, history.Change{Field: k, Before: b, After: a})
	}
	return changes
}

func Decimal(d decimal.Decimal) string {
	return d.String()
}

func UUID(id uuid.UUID) string {
	return id.String()
}

func UUIDPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func Time(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func TimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return Time(*t)
}
