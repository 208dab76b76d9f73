package store

import (
	"context"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "qa.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInsert(t *testing.T, db *DB, question, normalized, answer string) QARecord {
	t.Helper()
	rec := NewQARecord(question, normalized, answer, "manual")
	created, err := db.InsertIfAbsent(context.Background(), rec)
	if err != nil {
		t.Fatalf("InsertIfAbsent(%q): %v", question, err)
	}
	if !created {
		t.Fatalf("InsertIfAbsent(%q): expected created", question)
	}
	return rec
}

func TestOpenAndPing(t *testing.T) {
	db := testDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	n, err := db.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("Count = %d, want 0 on fresh db", n)
	}
}

func TestInsertIfAbsent_Duplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first := mustInsert(t, db, "Apa ibu kota Indonesia?", "apa ibu kota indonesia", "Jakarta")

	// Same normalized key, different verbatim text: must be rejected and the
	// first record must survive untouched.
	dup := NewQARecord("APA IBU KOTA INDONESIA???", "apa ibu kota indonesia", "Bandung", "import")
	created, err := db.InsertIfAbsent(ctx, dup)
	if err != nil {
		t.Fatalf("InsertIfAbsent duplicate: %v", err)
	}
	if created {
		t.Fatal("duplicate insert reported created")
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}

	got, err := db.QueryExact(ctx, "apa ibu kota indonesia")
	if err != nil {
		t.Fatalf("QueryExact: %v", err)
	}
	if got == nil {
		t.Fatal("QueryExact returned nil")
	}
	if got.ID != first.ID || got.Answer != "Jakarta" || got.Question != first.Question {
		t.Fatalf("first record overwritten: got %+v", got)
	}
}

func TestQueryExact_Miss(t *testing.T) {
	db := testDB(t)
	got, err := db.QueryExact(context.Background(), "tidak ada")
	if err != nil {
		t.Fatalf("QueryExact: %v", err)
	}
	if got != nil {
		t.Fatalf("QueryExact miss = %+v, want nil", got)
	}
}

func TestQueryCompact(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	rec := mustInsert(t, db, "Ibukota Jepang", "ibukota jepang", "Tokyo")
	mustInsert(t, db, "Cuaca hari ini", "cuaca hari ini", "Cerah")

	got, err := db.QueryCompact(ctx, "ibukotajepang")
	if err != nil {
		t.Fatalf("QueryCompact: %v", err)
	}
	if got == nil || got.ID != rec.ID {
		t.Fatalf("QueryCompact = %+v, want record %s", got, rec.ID)
	}

	got, err = db.QueryCompact(ctx, "ibukota jepang")
	if err != nil {
		t.Fatalf("QueryCompact: %v", err)
	}
	if got != nil {
		t.Fatalf("non-compact key matched: %+v", got)
	}
}

func TestQueryContainingAny(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a := mustInsert(t, db, "Ibu kota Jepang", "ibu kota jepang", "Tokyo")
	b := mustInsert(t, db, "Ibu kota Prancis", "ibu kota prancis", "Paris")
	mustInsert(t, db, "Resep nasi goreng", "resep nasi goreng", "Bawang, nasi, kecap")

	recs, err := db.QueryContainingAny(ctx, []string{"kota"}, 10)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// Insertion order, not alphabetical.
	if recs[0].ID != a.ID || recs[1].ID != b.ID {
		t.Fatalf("order = [%s %s], want [%s %s]", recs[0].ID, recs[1].ID, a.ID, b.ID)
	}

	recs, err = db.QueryContainingAny(ctx, []string{"kota", "goreng"}, 10)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	recs, err = db.QueryContainingAny(ctx, []string{"kota"}, 1)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != a.ID {
		t.Fatalf("limit=1 got %d records", len(recs))
	}
}

func TestQueryContainingAny_EscapesWildcards(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	mustInsert(t, db, "Harga 100%", "harga 100%", "Penuh")
	mustInsert(t, db, "Harga diskon", "harga diskon", "Setengah")

	// A literal percent keyword must not act as a LIKE wildcard.
	recs, err := db.QueryContainingAny(ctx, []string{"100%"}, 10)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if len(recs) != 1 || recs[0].Answer != "Penuh" {
		t.Fatalf("got %d records, want the literal match only", len(recs))
	}

	recs, err = db.QueryContainingAny(ctx, []string{"%"}, 10)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("bare %% matched %d records, want 1", len(recs))
	}
}

func TestQueryContainingAny_NoKeywords(t *testing.T) {
	db := testDB(t)
	recs, err := db.QueryContainingAny(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("QueryContainingAny: %v", err)
	}
	if recs != nil {
		t.Fatalf("got %v, want nil", recs)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qa.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := NewQARecord("Siapa presiden pertama?", "siapa presiden pertama", "Soekarno", "import")
	if _, err := db.InsertIfAbsent(ctx, rec); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := db.QueryExact(ctx, "siapa presiden pertama")
	if err != nil {
		t.Fatalf("QueryExact: %v", err)
	}
	if got == nil || got.Answer != "Soekarno" || got.Source != "import" {
		t.Fatalf("record did not survive reopen: %+v", got)
	}
}
