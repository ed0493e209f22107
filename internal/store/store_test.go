package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typerush/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typerush.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func record(name string, level, wpm int, ended time.Time) model.SessionRecord {
	return model.SessionRecord{
		Name:         name,
		Level:        level,
		StartedAt:    ended.Add(-10 * time.Second),
		EndedAt:      ended,
		DurationMs:   10000,
		TotalChars:   level * 30,
		TypedChars:   level * 30,
		CorrectChars: level * 28,
		Mistakes:     level * 2,
		Accuracy:     93,
		WPM:          wpm,
		CPS:          3.25,
		Grade:        "B+",
	}
}

func TestInsertAndListRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	saved, err := st.InsertSession(ctx, record("Ada", 2, 44, base), []model.CharStats{
		{Char: "a", Correct: 5, Incorrect: 1},
		{Char: "b", Correct: 2, Incorrect: 0},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 || saved.UUID == "" {
		t.Fatalf("expected id and uuid to be assigned: %+v", saved)
	}

	records, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.UUID != saved.UUID || got.Name != "Ada" || got.Level != 2 || got.WPM != 44 || got.CPS != 3.25 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.EndedAt.Equal(base) {
		t.Fatalf("expected ended_at %v, got %v", base, got.EndedAt)
	}
}

func TestInsertKeepsProvidedUUID(t *testing.T) {
	st := openTestStore(t)
	rec := record("Ada", 1, 30, time.Now().UTC())
	rec.UUID = "fixed-id"
	saved, err := st.InsertSession(context.Background(), rec, nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.UUID != "fixed-id" {
		t.Fatalf("expected provided uuid to be kept, got %q", saved.UUID)
	}
	if _, err := st.InsertSession(context.Background(), rec, nil); err == nil {
		t.Fatalf("expected duplicate uuid to fail")
	}
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixtures := []model.SessionRecord{
		record("Ada", 1, 20, base),
		record("Bob", 1, 25, base.Add(time.Hour)),
		record("Ada", 2, 30, base.Add(2*time.Hour)),
		record("Ada", 2, 35, base.Add(3*time.Hour)),
	}
	for _, rec := range fixtures {
		if _, err := st.InsertSession(ctx, rec, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	byName, err := st.ListSessions(ctx, model.StatsConfig{Name: "Ada"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byName) != 3 {
		t.Fatalf("expected 3 records for Ada, got %d", len(byName))
	}

	byLevel, err := st.ListSessions(ctx, model.StatsConfig{Level: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(byLevel) != 2 {
		t.Fatalf("expected 2 level-2 records, got %d", len(byLevel))
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 || recent[0].WPM != 30 {
		t.Fatalf("unexpected since filter result: %+v", recent)
	}

	last, err := st.ListSessions(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(last) != 2 || last[0].WPM != 30 || last[1].WPM != 35 {
		t.Fatalf("expected the two most recent records in order, got %+v", last)
	}

	lastAda, ok, err := st.LastSession(ctx, "Ada")
	if err != nil || !ok {
		t.Fatalf("last session: ok=%v err=%v", ok, err)
	}
	if lastAda.WPM != 35 {
		t.Fatalf("expected latest Ada record, got %+v", lastAda)
	}

	best, err := st.BestWPM(ctx, "Bob")
	if err != nil {
		t.Fatalf("best: %v", err)
	}
	if best != 25 {
		t.Fatalf("expected best 25, got %d", best)
	}
}

func TestEmptyStoreHelpers(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, ok, err := st.LastSession(ctx, ""); err != nil || ok {
		t.Fatalf("expected no last session, ok=%v err=%v", ok, err)
	}
	best, err := st.BestWPM(ctx, "")
	if err != nil || best != 0 {
		t.Fatalf("expected best 0, got %d err=%v", best, err)
	}
}

func TestGetWeakCharsWindow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, err := st.InsertSession(ctx, record("Ada", 1, 20, base), []model.CharStats{
		{Char: "q", Correct: 0, Incorrect: 10},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("Ada", 1, 20, base.Add(time.Minute)), []model.CharStats{
		{Char: "a", Correct: 4, Incorrect: 1},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("Bob", 1, 20, base.Add(2*time.Minute)), []model.CharStats{
		{Char: "a", Correct: 1, Incorrect: 1},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	aggs, err := st.GetWeakChars(ctx, 1, "Ada")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Char != "a" || aggs[0].Correct != 4 {
		t.Fatalf("expected only the latest Ada result, got %+v", aggs)
	}

	all, err := st.GetWeakChars(ctx, 10, "")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	totals := map[string]model.CharAggregate{}
	for _, agg := range all {
		totals[agg.Char] = agg
	}
	if totals["a"].Correct != 5 || totals["a"].Incorrect != 2 || totals["q"].Incorrect != 10 {
		t.Fatalf("unexpected aggregates: %+v", all)
	}

	none, err := st.GetWeakChars(ctx, 0, "")
	if err != nil || none != nil {
		t.Fatalf("expected nil for zero window, got %+v err=%v", none, err)
	}
}

func TestListCharAggregatesForSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, err := st.InsertSession(ctx, record("Ada", 1, 20, base), []model.CharStats{{Char: "x", Correct: 1, Incorrect: 2}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	second, err := st.InsertSession(ctx, record("Ada", 1, 20, base.Add(time.Minute)), []model.CharStats{{Char: "x", Correct: 3, Incorrect: 0}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{first.ID, second.ID})
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Correct != 4 || aggs[0].Incorrect != 2 {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	if aggs[0].Accuracy() != 4.0/6.0 {
		t.Fatalf("unexpected accuracy %v", aggs[0].Accuracy())
	}
}

func TestSubSecondEndTimesSortChronologically(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	whole := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	half := whole.Add(500 * time.Millisecond)

	// Insert the later result first so row ids cannot mask the ordering.
	if _, err := st.InsertSession(ctx, record("Ada", 1, 20, half), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, record("Ada", 1, 10, whole), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	last, ok, err := st.LastSession(ctx, "Ada")
	if err != nil || !ok {
		t.Fatalf("last: ok=%v err=%v", ok, err)
	}
	if last.WPM != 20 || !last.EndedAt.Equal(half) {
		t.Fatalf("expected the 10:00:00.5 result, got wpm=%d ended=%v", last.WPM, last.EndedAt)
	}
	records, err := st.ListSessions(ctx, model.StatsConfig{Name: "Ada"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].WPM != 10 || records[1].WPM != 20 {
		t.Fatalf("expected oldest first, got %+v", records)
	}
}

func TestLocalTimesStoredAsUTC(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	zone := time.FixedZone("UTC+3", 3*60*60)
	ended := time.Date(2026, 3, 1, 12, 30, 0, 0, zone)
	if _, err := st.InsertSession(ctx, record("Ada", 1, 30, ended), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	since := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	records, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || !records[0].EndedAt.Equal(ended) {
		t.Fatalf("expected the result ending at %v, got %+v", ended, records)
	}
}

func TestTotals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	empty, err := st.Totals(ctx, "")
	if err != nil || empty.Sessions != 0 || empty.AvgWPM != 0 {
		t.Fatalf("expected zero totals, got %+v err=%v", empty, err)
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, wpm := range []int{30, 50} {
		if _, err := st.InsertSession(ctx, record("Ada", 1, wpm, base.Add(time.Duration(i)*time.Minute)), nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := st.InsertSession(ctx, record("Linus", 1, 90, base), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := st.Totals(ctx, "Ada")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if got.Sessions != 2 || got.AvgWPM != 40 || got.AvgAccuracy != 93 {
		t.Fatalf("unexpected totals: %+v", got)
	}
}
