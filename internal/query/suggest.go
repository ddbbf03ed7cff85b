package query

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/unicode/norm"
)

// Suggest looks up item names completing prefix and shows them in the
// dropdown. Prefixes shorter than the threshold clear the dropdown without
// a request. Lookup failures clear it silently.
func (o *Orchestrator) Suggest(ctx context.Context, prefix string) error {
	prefix = norm.NFC.String(prefix)
	seq := o.suggestLane.issue()

	if utf8.RuneCountInString(prefix) < o.minChars {
		o.suggestLane.commit(seq, func() { o.setSuggestions(nil) })
		return nil
	}

	if o.cache != nil {
		if v, ok := o.cache.Get(prefix); ok {
			o.suggestLane.commit(seq, func() { o.setSuggestions(v.([]string)) })
			return nil
		}
	}

	o.pending(&o.suggestPending, 1)
	v, _, err := o.do(ctx, "suggest:"+prefix, func(ctx context.Context) (any, error) {
		return o.backend.Suggestions(ctx, prefix)
	})
	o.pending(&o.suggestPending, -1)

	if err != nil {
		slog.Warn("suggestion lookup failed", "prefix", prefix, "error", err)
		o.suggestLane.commit(seq, func() { o.setSuggestions(nil) })
		return nil
	}

	names := v.([]string)
	if o.cache != nil {
		o.cache.Set(prefix, names, cache.DefaultExpiration)
	}

	if !o.suggestLane.commit(seq, func() { o.setSuggestions(names) }) {
		slog.Debug("discarding stale response",
			"lane", o.suggestLane.name,
			"prefix", prefix,
			"seq", seq,
			"latest", o.suggestLane.clock.Current(),
		)
	}
	return nil
}

// hideSuggestions closes the dropdown and supersedes lookups in flight so
// their responses cannot reopen it.
func (o *Orchestrator) hideSuggestions() {
	seq := o.suggestLane.issue()
	o.suggestLane.commit(seq, func() { o.setSuggestions(nil) })
}

func (o *Orchestrator) setSuggestions(names []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.search.Suggestions = append([]string{}, names...)
	o.search.ShowSuggestions = len(names) > 0
}
