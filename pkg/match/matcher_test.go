package match

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/jawab/pkg/store"
)

// fakeStore implements Store in memory, with per-operation error injection
// and call counting.
type fakeStore struct {
	records    []store.QARecord
	pingErr    error
	exactErr   error
	compactErr error
	containErr error
	calls      int
}

func (f *fakeStore) Ping(context.Context) error {
	f.calls++
	return f.pingErr
}

func (f *fakeStore) InsertIfAbsent(_ context.Context, rec store.QARecord) (bool, error) {
	f.calls++
	for _, r := range f.records {
		if r.QuestionNormalized == rec.QuestionNormalized {
			return false, nil
		}
	}
	f.records = append(f.records, rec)
	return true, nil
}

func (f *fakeStore) QueryExact(_ context.Context, normalized string) (*store.QARecord, error) {
	f.calls++
	if f.exactErr != nil {
		return nil, f.exactErr
	}
	for i := range f.records {
		if f.records[i].QuestionNormalized == normalized {
			return &f.records[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) QueryCompact(_ context.Context, compact string) (*store.QARecord, error) {
	f.calls++
	if f.compactErr != nil {
		return nil, f.compactErr
	}
	for i := range f.records {
		if NormalizeCompact(f.records[i].QuestionNormalized) == compact {
			return &f.records[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) QueryContainingAny(_ context.Context, keywords []string, limit int) ([]store.QARecord, error) {
	f.calls++
	if f.containErr != nil {
		return nil, f.containErr
	}
	var out []store.QARecord
	for _, r := range f.records {
		for _, kw := range keywords {
			if strings.Contains(r.QuestionNormalized, kw) {
				out = append(out, r)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func record(question, answer string) store.QARecord {
	return store.NewQARecord(question, Normalize(question), answer, "test")
}

// sqliteMatcher wires a Matcher over a real SQLite store in a temp dir.
func sqliteMatcher(t *testing.T, cfg Config) (*Matcher, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "qa.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, cfg, nil, testLogger()), db
}

func TestFindAnswer_TooShort(t *testing.T) {
	fs := &fakeStore{}
	m := New(fs, DefaultConfig(), nil, testLogger())

	for _, q := range []string{"h", "", "?!"} {
		res := m.FindAnswer(context.Background(), q)
		if res.Outcome != TooShort {
			t.Errorf("FindAnswer(%q) = %v, want too_short", q, res.Outcome)
		}
	}
	if fs.calls != 0 {
		t.Errorf("too-short queries touched the store %d times", fs.calls)
	}
}

func TestFindAnswer_BorderlineLength(t *testing.T) {
	// Length exactly at the threshold passes the precondition.
	m := New(&fakeStore{}, DefaultConfig(), nil, testLogger())
	res := m.FindAnswer(context.Background(), "hi")
	if res.Outcome != NotFound {
		t.Errorf("FindAnswer(\"hi\") = %v, want not_found", res.Outcome)
	}
}

func TestFindAnswer_StoreUnavailable(t *testing.T) {
	fs := &fakeStore{pingErr: errors.New("connection refused")}
	m := New(fs, DefaultConfig(), nil, testLogger())

	res := m.FindAnswer(context.Background(), "siapa presiden pertama indonesia")
	if res.Outcome != StoreUnavailable {
		t.Errorf("outcome = %v, want store_unavailable", res.Outcome)
	}
}

func TestFindAnswer_ShortAnswerOverride(t *testing.T) {
	canned := map[string]string{"Terima kasih": "Sama-sama!"}
	fs := &fakeStore{}
	m := New(fs, DefaultConfig(), canned, testLogger())

	res := m.FindAnswer(context.Background(), "terima KASIH!!")
	if res.Outcome != Found || res.Answer != "Sama-sama!" {
		t.Fatalf("result = %+v, want canned reply", res)
	}
	if res.Stage != StageShortAnswer {
		t.Errorf("stage = %q, want %q", res.Stage, StageShortAnswer)
	}
	if fs.calls != 0 {
		t.Errorf("canned reply queried the store %d times", fs.calls)
	}
}

func TestFindAnswer_ExactRoundTrip(t *testing.T) {
	m, _ := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	created, _, err := m.Teach(ctx, "Siapa presiden pertama Indonesia?", "Soekarno", "manual")
	if err != nil || !created {
		t.Fatalf("Teach: created=%v err=%v", created, err)
	}

	// Case, punctuation, and whitespace variations all hit the exact stage.
	for _, q := range []string{
		"Siapa presiden pertama Indonesia?",
		"siapa PRESIDEN pertama   indonesia?",
		"siapa presiden pertama indonesia",
	} {
		res := m.FindAnswer(ctx, q)
		if res.Outcome != Found || res.Answer != "Soekarno" {
			t.Fatalf("FindAnswer(%q) = %+v, want Soekarno", q, res)
		}
		if res.Stage != StageExact {
			t.Errorf("FindAnswer(%q) stage = %q, want %q", q, res.Stage, StageExact)
		}
	}
}

func TestFindAnswer_CompactMatch(t *testing.T) {
	m, _ := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	if _, _, err := m.Teach(ctx, "Ibu kota Jepang?", "Tokyo", "manual"); err != nil {
		t.Fatalf("Teach: %v", err)
	}

	// "ibukota" vs stored "ibu kota": differs only in spacing.
	res := m.FindAnswer(ctx, "ibukota jepang")
	if res.Outcome != Found || res.Answer != "Tokyo" {
		t.Fatalf("result = %+v, want Tokyo", res)
	}
	if res.Stage != StageCompact {
		t.Errorf("stage = %q, want %q", res.Stage, StageCompact)
	}
}

func TestFindAnswer_FuzzyFallback(t *testing.T) {
	m, _ := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	if _, _, err := m.Teach(ctx, "Ibukota Jepang adalah apa?", "Tokyo", "manual"); err != nil {
		t.Fatalf("Teach: %v", err)
	}

	// Same keywords, different order and filler words.
	res := m.FindAnswer(ctx, "apa ibukota jepang")
	if res.Outcome != Found || res.Answer != "Tokyo" {
		t.Fatalf("result = %+v, want Tokyo via fuzzy match", res)
	}
	if res.Stage != StageSimilarityHigh {
		t.Errorf("stage = %q, want %q", res.Stage, StageSimilarityHigh)
	}

	// Different country: one shared keyword must not clear any threshold.
	res = m.FindAnswer(ctx, "ibukota Prancis")
	if res.Outcome != NotFound {
		t.Errorf("FindAnswer(\"ibukota Prancis\") = %+v, want not_found", res)
	}
}

func TestFindAnswer_SparseOverlapRejected(t *testing.T) {
	m, _ := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	if _, _, err := m.Teach(ctx, "Harga sewa rumah di Jakarta Selatan?", "Lima juta per bulan", "manual"); err != nil {
		t.Fatalf("Teach: %v", err)
	}

	// Shares only "harga" out of five query keywords.
	res := m.FindAnswer(ctx, "harga tiket pesawat ke amerika murah")
	if res.Outcome != NotFound {
		t.Errorf("result = %+v, want not_found for sparse keyword overlap", res)
	}
}

func TestFindAnswer_KeywordRankStage(t *testing.T) {
	// Push the similarity thresholds out of reach so only the keyword-ranked
	// stage can accept.
	cfg := DefaultConfig()
	cfg.HighThreshold = 0.99
	cfg.LowThreshold = 0.99
	cfg.KeywordThreshold = 0.4

	m, _ := sqliteMatcher(t, cfg)
	ctx := context.Background()

	if _, _, err := m.Teach(ctx, "Ibukota Jepang adalah apa?", "Tokyo", "manual"); err != nil {
		t.Fatalf("Teach: %v", err)
	}

	res := m.FindAnswer(ctx, "apa ibukota jepang")
	if res.Outcome != Found || res.Answer != "Tokyo" {
		t.Fatalf("result = %+v, want Tokyo via keyword rank", res)
	}
	if res.Stage != StageKeywordRank {
		t.Errorf("stage = %q, want %q", res.Stage, StageKeywordRank)
	}
}

func TestFindAnswer_CascadeMonotonic(t *testing.T) {
	// A looser configuration must accept everything a stricter one accepts.
	strict := DefaultConfig()
	strict.HighThreshold = 0.95
	strict.KeywordThreshold = 0.95
	strict.LowThreshold = 0.95

	loose := DefaultConfig()
	loose.HighThreshold = 0.3
	loose.KeywordThreshold = 0.3
	loose.LowThreshold = 0.3

	queries := []string{"apa ibukota jepang", "ibukota jepang apa", "jepang ibukota"}

	ctx := context.Background()
	for _, cfgs := range []struct {
		name string
		cfg  Config
	}{{"strict", strict}, {"default", DefaultConfig()}, {"loose", loose}} {
		m, _ := sqliteMatcher(t, cfgs.cfg)
		if _, _, err := m.Teach(ctx, "Ibukota Jepang adalah apa?", "Tokyo", "manual"); err != nil {
			t.Fatalf("Teach: %v", err)
		}
		for _, q := range queries {
			res := m.FindAnswer(ctx, q)
			found := res.Outcome == Found
			switch cfgs.name {
			case "loose":
				if !found {
					t.Errorf("loose config missed %q", q)
				}
			case "default":
				if !found {
					t.Errorf("default config missed %q", q)
				}
			}
			// The strict config may miss; it must never error out.
			if res.Outcome != Found && res.Outcome != NotFound {
				t.Errorf("%s config on %q: outcome = %v", cfgs.name, q, res.Outcome)
			}
		}
	}
}

func TestFindAnswer_StageFaultAbsorbed(t *testing.T) {
	// Exact and compact stages fail; the similarity stage still answers.
	fs := &fakeStore{
		records:    []store.QARecord{record("Ibukota Jepang adalah apa?", "Tokyo")},
		exactErr:   errors.New("disk I/O error"),
		compactErr: errors.New("disk I/O error"),
	}
	m := New(fs, DefaultConfig(), nil, testLogger())

	res := m.FindAnswer(context.Background(), "apa ibukota jepang")
	if res.Outcome != Found || res.Answer != "Tokyo" {
		t.Fatalf("result = %+v, want Tokyo despite stage faults", res)
	}
}

func TestFindAnswer_AllStagesFault(t *testing.T) {
	boom := errors.New("disk I/O error")
	fs := &fakeStore{
		records:    []store.QARecord{record("Ibukota Jepang adalah apa?", "Tokyo")},
		exactErr:   boom,
		compactErr: boom,
		containErr: boom,
	}
	m := New(fs, DefaultConfig(), nil, testLogger())

	res := m.FindAnswer(context.Background(), "apa ibukota jepang")
	if res.Outcome != StoreUnavailable {
		t.Errorf("result = %+v, want store_unavailable when every stage faults", res)
	}
}

func TestTeach_Duplicate(t *testing.T) {
	m, db := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	created, rec, err := m.Teach(ctx, "Siapa presiden pertama Indonesia?", "Soekarno", "manual")
	if err != nil || !created {
		t.Fatalf("first Teach: created=%v err=%v", created, err)
	}
	if rec.Question != "Siapa presiden pertama Indonesia?" {
		t.Errorf("verbatim question not preserved: %q", rec.Question)
	}
	if rec.ID == "" {
		t.Error("record ID not assigned")
	}

	// Same question modulo case and punctuation: duplicate.
	created, _, err = m.Teach(ctx, "siapa presiden pertama indonesia", "Bung Karno", "manual")
	if err != nil {
		t.Fatalf("second Teach: %v", err)
	}
	if created {
		t.Error("duplicate insert reported created=true")
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("store holds %d records, want 1 (first wins)", n)
	}

	// First record's answer survives.
	res := m.FindAnswer(ctx, "siapa presiden pertama indonesia")
	if res.Answer != "Soekarno" {
		t.Errorf("answer = %q, want the first record's answer", res.Answer)
	}
}

func TestTeach_Validation(t *testing.T) {
	m, _ := sqliteMatcher(t, DefaultConfig())
	ctx := context.Background()

	if _, _, err := m.Teach(ctx, "x", "jawaban", "manual"); !errors.Is(err, ErrQuestionTooShort) {
		t.Errorf("short question: err = %v, want ErrQuestionTooShort", err)
	}
	if _, _, err := m.Teach(ctx, "pertanyaan valid", "   ", "manual"); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("blank answer: err = %v, want ErrEmptyAnswer", err)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Found, "found"},
		{NotFound, "not_found"},
		{TooShort, "too_short"},
		{StoreUnavailable, "store_unavailable"},
		{Outcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}
