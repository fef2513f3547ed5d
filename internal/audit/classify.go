package audit

import (
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

// Rule classifies a change to one field. Level, when set, replaces the static
// Criticity and may look at the other fields of the entity after the write.
type Rule struct {
	Kind      history.Kind
	Criticity history.Criticity
	Level     func(ch history.Change, after Fields) history.Criticity
}

// Rules maps field names to their rule. Unlisted fields are low "updated".
type Rules map[string]Rule

func (r Rules) For(field string) Rule {
	if rule, ok := r[field]; ok {
		return rule
	}
	return Rule{Kind: history.KindUpdated, Criticity: history.CriticityLow}
}

func (r Rule) level(ch history.Change, after Fields) history.Criticity {
	if r.Level != nil {
		return r.Level(ch, after)
	}
	if r.Criticity == "" {
		return history.CriticityLow
	}
	return r.Criticity
}

// Outcome is one event to be written for a single entity write.
type Outcome struct {
	Kind      history.Kind
	Criticity history.Criticity
	Changes   []history.Change
}

// Classify applies the priority rule: the highest priority kind among the
// changed fields dominates and its event carries the whole diff at the highest
// criticity seen. A stock change under another dominant kind gets its own
// stock event as well.
func Classify(rules Rules, changes []history.Change, after Fields) []Outcome {
	if len(changes) == 0 {
		return nil
	}

	dominant := Outcome{Kind: history.KindUpdated, Criticity: history.CriticityLow, Changes: changes}
	stock := Outcome{Kind: history.KindStockChanged, Criticity: history.CriticityLow}

	for _, ch := range changes {
		rule := rules.For(ch.Field)
		lvl := rule.level(ch, after)

		if rule.Kind.Priority() > dominant.Kind.Priority() {
			dominant.Kind = rule.Kind
		}
		dominant.Criticity = history.Max(dominant.Criticity, lvl)

		if rule.Kind == history.KindStockChanged {
			stock.Changes = append(stock.Changes, ch)
			stock.Criticity = history.Max(stock.Criticity, lvl)
		}
	}

	out := []Outcome{dominant}
	if dominant.Kind != history.KindStockChanged && len(stock.Changes) > 0 {
		out = append(out, stock)
	}
	return out
}

// Summarize renders a one-line description such as "stock: 10 -> 7".
func Summarize(kind history.Kind, changes []history.Change) string {
	if len(changes) == 0 {
		return string(kind)
	}
	parts := make([]string, 0, len(changes))
	for _, ch := range changes {
		parts = append(parts, fmt.Sprintf("%s: %s -> %s", ch.Field, render(ch.Before), render(ch.After)))
	}
	return strings.Join(parts, "; ")
}

func render(v any) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprint(v)
}
