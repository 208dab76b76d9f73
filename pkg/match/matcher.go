package match

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/jawab/pkg/store"
)

// Store is the record store adapter contract the matcher depends on. The
// matcher treats it as a remote service: queries may fail transiently, and it
// never mutates or deletes records — InsertIfAbsent is the only write.
type Store interface {
	Ping(ctx context.Context) error
	InsertIfAbsent(ctx context.Context, rec store.QARecord) (bool, error)
	QueryExact(ctx context.Context, normalized string) (*store.QARecord, error)
	QueryCompact(ctx context.Context, compact string) (*store.QARecord, error)
	QueryContainingAny(ctx context.Context, keywords []string, limit int) ([]store.QARecord, error)
}

// Outcome is the terminal state of a lookup. Only these four are surfaced to
// callers; stage faults are absorbed inside the cascade.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	TooShort
	StoreUnavailable
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case TooShort:
		return "too_short"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Stage labels, reported on Result for observability.
const (
	StageShortAnswer    = "short_answer"
	StageExact          = "exact"
	StageCompact        = "compact"
	StageSimilarityHigh = "similarity_high"
	StageKeywordRank    = "keyword_rank"
	StageSimilarityLow  = "similarity_low"
)

// Result is the outcome of FindAnswer: the answer when found, plus the stage
// and score that produced it.
type Result struct {
	Outcome  Outcome
	Answer   string
	RecordID string
	Stage    string
	Score    float64
}

// Config tunes the cascade. Thresholds are configuration, not contract: a
// looser stage must accept a superset of what a stricter one accepts.
type Config struct {
	MinQueryLen       int     // normalized length below which a query is rejected
	HighThreshold     float64 // first similarity pass
	KeywordThreshold  float64 // keyword-ranked pass
	LowThreshold      float64 // last-resort similarity pass
	KeywordBonus      float64 // added per query keyword a candidate contains
	KeywordBonusCap   float64
	PrefilterKeywords int // top-N longest keywords used to pre-filter candidates
	CandidateLimit    int // bound on the scored candidate window
}

// DefaultConfig returns the reference cascade tuning.
func DefaultConfig() Config {
	return Config{
		MinQueryLen:       2,
		HighThreshold:     0.7,
		KeywordThreshold:  0.45,
		LowThreshold:      0.5,
		KeywordBonus:      0.02,
		KeywordBonusCap:   0.10,
		PrefilterKeywords: 3,
		CandidateLimit:    50,
	}
}

// Teach validation errors.
var (
	ErrQuestionTooShort = errors.New("question too short")
	ErrEmptyAnswer      = errors.New("answer must not be empty")
)

// Matcher resolves free-text questions against the record store with a staged
// cascade: exact match, compact match, then keyword-filtered similarity
// ranking at progressively looser thresholds. Stateless per request; safe for
// concurrent use.
type Matcher struct {
	store        Store
	cfg          Config
	logger       *slog.Logger
	shortAnswers map[string]string // normalized question -> canned reply
}

// New creates a Matcher over the given store. shortAnswers maps canned
// questions to replies; keys are normalized here so they match however the
// caller spelled them.
func New(st Store, cfg Config, shortAnswers map[string]string, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	canned := make(map[string]string, len(shortAnswers))
	for q, a := range shortAnswers {
		if key := Normalize(q); key != "" {
			canned[key] = a
		}
	}
	return &Matcher{store: st, cfg: cfg, logger: logger, shortAnswers: canned}
}

// FindAnswer runs the staged cascade and always returns one of the four
// defined outcomes; no stage error escapes. Each stage's failure is logged
// and the cascade proceeds, so a transient fault in fuzzy scoring cannot mask
// an exact match and vice versa. If every store-touching stage faults, the
// aggregate is StoreUnavailable.
func (m *Matcher) FindAnswer(ctx context.Context, raw string) Result {
	normalized := Normalize(raw)
	if utf8.RuneCountInString(normalized) < m.cfg.MinQueryLen {
		return Result{Outcome: TooShort}
	}

	// Canned replies beat everything else: cheapest check, highest precedence.
	if answer, ok := m.shortAnswers[normalized]; ok {
		return Result{Outcome: Found, Answer: answer, Stage: StageShortAnswer, Score: 1.0}
	}

	if err := m.store.Ping(ctx); err != nil {
		m.logger.Warn("record store unreachable", "error", err)
		return Result{Outcome: StoreUnavailable}
	}

	var attempts, faults int

	// Stage: exact match on the normalized form.
	attempts++
	rec, err := m.store.QueryExact(ctx, normalized)
	switch {
	case err != nil:
		faults++
		m.logger.Error("exact stage failed", "error", err)
	case rec != nil:
		return foundResult(rec, StageExact, 1.0)
	}

	// Stage: compact match, spacing differences stripped on both sides.
	attempts++
	rec, err = m.store.QueryCompact(ctx, NormalizeCompact(normalized))
	switch {
	case err != nil:
		faults++
		m.logger.Error("compact stage failed", "error", err)
	case rec != nil:
		return foundResult(rec, StageCompact, 1.0)
	}

	// Stages 5-7 share one candidate window: records containing any of the
	// longest query keywords. Bounds scoring cost to the window instead of a
	// full table scan.
	keywords := ExtractKeywords(normalized)
	var candidates []store.QARecord
	if len(keywords) > 0 {
		attempts++
		cands, err := m.store.QueryContainingAny(ctx,
			TopLongestKeywords(keywords, m.cfg.PrefilterKeywords), m.cfg.CandidateLimit)
		if err != nil {
			faults++
			m.logger.Error("candidate pre-filter failed", "error", err)
		} else {
			candidates = cands
		}
	}

	if len(candidates) > 0 {
		if r, ok := m.bestBySimilarity(normalized, candidates, m.cfg.HighThreshold, StageSimilarityHigh); ok {
			return r
		}
		if r, ok := m.bestByKeywordRank(normalized, keywords, candidates); ok {
			return r
		}
		if r, ok := m.bestBySimilarity(normalized, candidates, m.cfg.LowThreshold, StageSimilarityLow); ok {
			return r
		}
	}

	if attempts > 0 && faults == attempts {
		return Result{Outcome: StoreUnavailable}
	}
	return Result{Outcome: NotFound}
}

// bestBySimilarity scores every candidate and accepts the best one if it
// exceeds the threshold. Ties keep the first-seen candidate: scores are
// floats, exact ties are rare, and store iteration order is stable enough.
func (m *Matcher) bestBySimilarity(normalized string, candidates []store.QARecord, threshold float64, stage string) (Result, bool) {
	var best *store.QARecord
	bestScore := 0.0
	for i := range candidates {
		score := Similarity(normalized, candidates[i].QuestionNormalized)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	if best != nil && bestScore > threshold {
		return foundResult(best, stage, bestScore), true
	}
	return Result{}, false
}

// bestByKeywordRank re-ranks the candidates by how many query keywords each
// one contains, adding a small per-keyword bonus on top of the similarity
// score, and accepts against the lower keyword threshold.
func (m *Matcher) bestByKeywordRank(normalized string, keywords []string, candidates []store.QARecord) (Result, bool) {
	var best *store.QARecord
	bestScore := 0.0
	for i := range candidates {
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(candidates[i].QuestionNormalized, kw) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		bonus := float64(matched) * m.cfg.KeywordBonus
		if bonus > m.cfg.KeywordBonusCap {
			bonus = m.cfg.KeywordBonusCap
		}
		score := clamp01(Similarity(normalized, candidates[i].QuestionNormalized) + bonus)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	if best != nil && bestScore > m.cfg.KeywordThreshold {
		return foundResult(best, StageKeywordRank, bestScore), true
	}
	return Result{}, false
}

// Teach normalizes a question and performs the duplicate-safe insert. Returns
// created=false when a record with the same normalized question already
// exists. The check and the write are not atomic across concurrent callers;
// the store's unique key on the normalized question settles that race.
func (m *Matcher) Teach(ctx context.Context, question, answer, source string) (bool, store.QARecord, error) {
	normalized := Normalize(question)
	if utf8.RuneCountInString(normalized) < m.cfg.MinQueryLen {
		return false, store.QARecord{}, ErrQuestionTooShort
	}
	if strings.TrimSpace(answer) == "" {
		return false, store.QARecord{}, ErrEmptyAnswer
	}

	rec := store.NewQARecord(question, normalized, answer, source)
	created, err := m.store.InsertIfAbsent(ctx, rec)
	if err != nil {
		return false, store.QARecord{}, err
	}
	if created {
		m.logger.Info("record taught", "id", rec.ID, "source", source, "normalized", normalized)
	}
	return created, rec, nil
}

func foundResult(rec *store.QARecord, stage string, score float64) Result {
	return Result{
		Outcome:  Found,
		Answer:   rec.Answer,
		RecordID: rec.ID,
		Stage:    stage,
		Score:    score,
	}
}
