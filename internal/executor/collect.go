package executor

import (
	"context"
	"sort"

	"github.com/ikenthis/bmsagent/pkg/domain"
	"github.com/ikenthis/bmsagent/pkg/ports"
)

// modelItems is the slice of matching ids inside one model.
type modelItems struct {
	model ports.Model
	ids   []int
}

// CategoryCount is one row of a per-category tally.
type CategoryCount struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage,omitempty"`
}

// eachModel runs fn on every model. A model that fails is logged and skipped.
// Only context cancellation stops the loop.
func (e *Executor) eachModel(ctx context.Context, op string, fn func(m ports.Model) error) error {
	for _, m := range e.models {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			e.logger.Warn("model operation failed", "op", op, "model", m.ID(), "err", err)
		}
	}
	return ctx.Err()
}

// itemsOfCategory collects the ids of a category per model.
func (e *Executor) itemsOfCategory(ctx context.Context, category string) ([]modelItems, int, error) {
	var out []modelItems
	total := 0
	err := e.eachModel(ctx, "items_of_category", func(m ports.Model) error {
		ids, err := m.ItemsOfCategory(ctx, category)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			out = append(out, modelItems{model: m, ids: ids})
			total += len(ids)
		}
		return nil
	})
	return out, total, err
}

// findElement locates one local id in the first model that holds it.
func (e *Executor) findElement(ctx context.Context, id int) (ports.Model, *domain.ItemData, error) {
	for _, m := range e.models {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := m.ItemsData(ctx, []int{id})
		if err != nil {
			e.logger.Warn("model operation failed", "op", "items_data", "model", m.ID(), "err", err)
			continue
		}
		for i := range data {
			if data[i].LocalID == id {
				return m, &data[i], nil
			}
		}
	}
	return nil, nil, nil
}

// countCategories tallies items per category across models.
func (e *Executor) countCategories(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := e.eachModel(ctx, "categories", func(m ports.Model) error {
		cats, err := m.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			ids, err := m.ItemsOfCategory(ctx, c)
			if err != nil {
				e.logger.Warn("model operation failed", "op", "items_of_category", "model", m.ID(), "category", c, "err", err)
				continue
			}
			counts[c] += len(ids)
		}
		return nil
	})
	return counts, err
}

// highlightCapped highlights at most limit ids in total, in model order,
// and returns the references actually highlighted.
func (e *Executor) highlightCapped(ctx context.Context, groups []modelItems, limit int) []domain.ElementReference {
	var done []domain.ElementReference
	for _, g := range groups {
		if len(done) >= limit {
			break
		}
		ids := g.ids
		if room := limit - len(done); len(ids) > room {
			ids = ids[:room]
		}
		if err := g.model.Highlight(ctx, ids, e.heuristics.HighlightMaterial); err != nil {
			e.logger.Warn("model operation failed", "op", "highlight", "model", g.model.ID(), "err", err)
			continue
		}
		done = append(done, refs(g.model, ids)...)
	}
	return done
}

func refs(m ports.Model, ids []int) []domain.ElementReference {
	out := make([]domain.ElementReference, len(ids))
	for i, id := range ids {
		out[i] = domain.ElementReference{ModelID: m.ID(), LocalID: id}
	}
	return out
}

func flatten(groups []modelItems) []domain.ElementReference {
	var out []domain.ElementReference
	for _, g := range groups {
		out = append(out, refs(g.model, g.ids)...)
	}
	return out
}

func capped[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// ranked orders counts by descending count, then by category name.
func ranked(counts map[string]int) []CategoryCount {
	total := 0
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
		total += n
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if total > 0 {
		for i := range out {
			out[i].Percentage = round2(float64(out[i].Count) * 100 / float64(total))
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
