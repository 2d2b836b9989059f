package store

import (
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_indexes.sql":  {Data: []byte("CREATE INDEX x ON y (z);")},
		"002_payments.sql": {Data: []byte("CREATE TABLE payments ();")},
		"001_init.sql":     {Data: []byte("CREATE TABLE users ();")},
		"README.md":        {Data: []byte("notes")},
		"draft.sql":        {Data: []byte("-- no version")},
		"abc_bad.sql":      {Data: []byte("-- not a number")},
	}

	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []int{1, 2, 10}
	if len(migs) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(migs), len(want))
	}
	for i, v := range want {
		if migs[i].Version != v {
			t.Errorf("migs[%d].Version = %d, want %d", i, migs[i].Version, v)
		}
	}
	if migs[0].SQL != "CREATE TABLE users ();" {
		t.Errorf("unexpected body %q", migs[0].SQL)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migs, err := NewMigrator(nil).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) == 0 || migs[0].Version != 1 {
		t.Fatalf("expected the init migration first, got %+v", migs)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"ada":     "ada",
		"100%":    `100\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
		`%_\`:     `\%\_\\`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWhere(t *testing.T) {
	w := &where{}
	if w.String() != "" {
		t.Errorf("empty where = %q", w.String())
	}
	w.add("patient_id = ?", int64(7))
	w.add("(a ILIKE ? OR b ILIKE ?)", "%x%")
	if got := w.String(); got != " WHERE patient_id = $1 AND (a ILIKE $2 OR b ILIKE $2)" {
		t.Errorf("where = %q", got)
	}
	if got := w.page(20, 40); got != " LIMIT $3 OFFSET $4" {
		t.Errorf("page = %q", got)
	}
	if len(w.args) != 4 {
		t.Errorf("args = %v", w.args)
	}
}

func TestSetListUpdate(t *testing.T) {
	s := &setList{}
	s.add("full_name", "Ada")
	s.add("phone", "123")
	q, args := s.update("patients", 9, "id")
	want := `UPDATE patients SET full_name = $1, phone = $2, ` + touch + ` WHERE id = $3 RETURNING id`
	if q != want {
		t.Errorf("query =\n%s\nwant\n%s", q, want)
	}
	if len(args) != 3 || args[2] != int64(9) {
		t.Errorf("args = %v", args)
	}
}
