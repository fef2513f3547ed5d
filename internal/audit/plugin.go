package audit

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

const pluginName = "vetcare:audit"

// Plugin records history events for every Subject written through gorm.
type Plugin struct {
	log     *zap.Logger
	now     func() time.Time
	onEvent func(*history.Event)
}

type Option func(*Plugin)

// WithEventHook is called once per persisted event, typically to feed metrics.
func WithEventHook(fn func(*history.Event)) Option {
	return func(p *Plugin) { p.onEvent = fn }
}

func WithClock(now func() time.Time) Option {
	return func(p *Plugin) { p.now = now }
}

func NewPlugin(log *zap.Logger, opts ...Option) *Plugin {
	p := &Plugin{log: log, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string {
	return pluginName
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Query().After("gorm:after_query").Register("audit:remember", p.remember); err != nil {
		return fmt.Errorf("registering query callback: %w", err)
	}
	if err := cb.Create().After("gorm:after_create").Before("gorm:commit_or_rollback_transaction").
		Register("audit:after_create", p.afterCreate); err != nil {
		return fmt.Errorf("registering create callback: %w", err)
	}
	if err := cb.Update().After("gorm:after_update").Before("gorm:commit_or_rollback_transaction").
		Register("audit:after_update", p.afterUpdate); err != nil {
		return fmt.Errorf("registering update callback: %w", err)
	}
	if err := cb.Delete().After("gorm:after_delete").Before("gorm:commit_or_rollback_transaction").
		Register("audit:after_delete", p.afterDelete); err != nil {
		return fmt.Errorf("registering delete callback: %w", err)
	}
	return nil
}

func (p *Plugin) remember(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	for _, s := range subjects(db) {
		s.Remember(s.AuditFields())
	}
}

func (p *Plugin) afterCreate(db *gorm.DB) {
	if skip(db) {
		return
	}
	var events []*history.Event
	for _, s := range subjects(db) {
		after := s.AuditFields()
		changes := Diff(nil, after)
		events = append(events, p.event(db, s, Outcome{
			Kind:      history.KindCreated,
			Criticity: history.CriticityLow,
			Changes:   changes,
		}, "created"))
		s.Remember(after)
	}
	p.write(db, events)
}

func (p *Plugin) afterUpdate(db *gorm.DB) {
	if skip(db) {
		return
	}
	var events []*history.Event
	for _, s := range subjects(db) {
		after := s.AuditFields()
		before := s.Original()

		if before == nil {
			// Written without being loaded first: nothing to diff against.
			events = append(events, p.event(db, s, Outcome{
				Kind:      history.KindUpdated,
				Criticity: history.CriticityLow,
				Changes:   Diff(nil, after),
			}, "updated without snapshot"))
			s.Remember(after)
			continue
		}

		changes := Diff(before, after)
		for _, o := range Classify(s.AuditRules(), changes, after) {
			events = append(events, p.event(db, s, o, Summarize(o.Kind, o.Changes)))
		}
		s.Remember(after)
	}
	p.write(db, events)
}

func (p *Plugin) afterDelete(db *gorm.DB) {
	if skip(db) {
		return
	}
	var events []*history.Event
	for _, s := range subjects(db) {
		before := s.Original()
		if before == nil {
			before = s.AuditFields()
		}
		events = append(events, p.event(db, s, Outcome{
			Kind:      history.KindDeleted,
			Criticity: history.CriticityMedium,
			Changes:   Diff(before, nil),
		}, "deleted"))
	}
	p.write(db, events)
}

func (p *Plugin) event(db *gorm.DB, s Subject, o Outcome, summary string) *history.Event {
	ctx := db.Statement.Context
	actor := ActorFrom(ctx)

	changes, err := json.Marshal(o.Changes)
	if err != nil {
		changes = []byte("[]")
		p.log.Error("marshalling audit changes", zap.Error(err), zap.String("entity", string(s.AuditEntity())))
	}

	return &history.Event{
		OccurredAt: p.now().UTC(),
		EntityType: s.AuditEntity(),
		EntityID:   s.AuditKey(),
		Kind:       o.Kind,
		Criticity:  o.Criticity,
		Summary:    summary,
		Changes:    datatypes.JSON(changes),
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Reason:     ReasonFrom(ctx),
		RequestID:  actor.RequestID,
	}
}

// write persists events on the statement's connection so they commit or roll
// back together with the audited write.
func (p *Plugin) write(db *gorm.DB, events []*history.Event) {
	if len(events) == 0 {
		return
	}
	tx := db.Session(&gorm.Session{NewDB: true})
	if err := tx.Create(&events).Error; err != nil {
		p.log.Error("writing history events", zap.Error(err), zap.Int("count", len(events)))
		_ = db.AddError(fmt.Errorf("writing history events: %w", err))
		return
	}
	if p.onEvent != nil {
		for _, e := range events {
			p.onEvent(e)
		}
	}
}

func skip(db *gorm.DB) bool {
	return db.Error != nil || db.DryRun || db.Statement.Schema == nil
}

func subjects(db *gorm.DB) []Subject {
	rv := db.Statement.ReflectValue
	if !rv.IsValid() {
		return nil
	}

	var out []Subject
	collect := func(v reflect.Value) {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct || !v.CanAddr() {
			return
		}
		if s, ok := v.Addr().Interface().(Subject); ok {
			out = append(out, s)
		}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			collect(rv.Index(i))
		}
	default:
		collect(rv)
	}
	return out
}
