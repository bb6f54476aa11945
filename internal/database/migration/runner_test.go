package migration

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_Embedded(t *testing.T) {
	migs, err := loadMigrations(Embedded())
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migs) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migs))
	}
	for i := 1; i < len(migs); i++ {
		if migs[i].Version <= migs[i-1].Version {
			t.Fatalf("migrations not sorted: %d after %d", migs[i].Version, migs[i-1].Version)
		}
	}
	if !strings.Contains(migs[0].SQL, "skill_nodes") {
		t.Fatalf("expected first migration to create skill_nodes")
	}
	if migs[0].Checksum == "" {
		t.Fatalf("expected checksum")
	}
}

func TestLoadMigrations_SkipsForeignFilesAndRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"V2__b.sql":  {Data: []byte("SELECT 2;")},
		"V1__a.sql":  {Data: []byte("SELECT 1;")},
		"README.md":  {Data: []byte("notes")},
		"v3_bad.sql": {Data: []byte("SELECT 3;")},
	}
	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations: %v", err)
	}
	if len(migs) != 2 || migs[0].Name != "a" || migs[1].Name != "b" {
		t.Fatalf("unexpected migrations: %+v", migs)
	}

	fsys["V2__c.sql"] = &fstest.MapFile{Data: []byte("SELECT 4;")}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoadMigrations_EmptyFile(t *testing.T) {
	fsys := fstest.MapFS{"V1__empty.sql": {Data: []byte("   ")}}
	if _, err := loadMigrations(fsys); err == nil {
		t.Fatalf("expected empty migration error")
	}
}
