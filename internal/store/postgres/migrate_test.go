package postgres

import "testing"

func TestGooseUpSection(t *testing.T) {
	sql := `-- comment
-- +goose Up
CREATE TABLE a (id int);
CREATE INDEX a_id ON a (id);
-- +goose Down
DROP TABLE a;
`
	up, err := gooseUpSection(sql)
	if err != nil {
		t.Fatalf("gooseUpSection error: %v", err)
	}
	if want := "CREATE TABLE a (id int);\nCREATE INDEX a_id ON a (id);"; up != want {
		t.Fatalf("up = %q, want %q", up, want)
	}
}

func TestGooseUpSection_NoDownMarker(t *testing.T) {
	up, err := gooseUpSection("-- +goose Up\nSELECT 1;")
	if err != nil {
		t.Fatalf("gooseUpSection error: %v", err)
	}
	if up != "SELECT 1;" {
		t.Fatalf("up = %q", up)
	}
}

func TestGooseUpSection_MissingUpMarker(t *testing.T) {
	if _, err := gooseUpSection("CREATE TABLE a (id int);"); err == nil {
		t.Fatal("expected error")
	}
}
