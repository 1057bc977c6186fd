package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/pkg/apperrors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadCatalogDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CatalogFile, `
courses:
  - {code: col100, name: Introduction to Computer Science, credits: 4, prereqs: "[]"}
  - {code: COL106, name: Data Structures, credits: 5, prereqs: "[COL100]"}
  - {code: BAD1, name: Malformed, credits: 3}
  - {code: HUL211, name: Economics, credits: 45}
`)
	writeFile(t, dir, ProgramsFile, `
programs:
  - code: CS1
    name: Computer Science
    terms:
      - [COL100, HUL2XX]
      - [COL106]
    placeholders:
      - {tag: HUL2XX, category: hul, prefix: HUL2}
  - code: BROKEN
    terms: [[COL100, XYZ]]
    placeholders:
      - {tag: XYZ, category: astronomy, prefix: AST}
`)
	writeFile(t, dir, MinorsFile, `
minors:
  - name: Computing
    department: CSE
    core_courses:
      - {code: COL106, name: Data Structures, credits: 5}
`)

	src, err := LoadCatalogDir(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ctx := context.Background()

	cat, _ := src.Catalog(ctx)
	if len(cat) != 2 {
		t.Fatalf("catalog = %v, want the two valid courses", cat.Codes())
	}
	if _, ok := cat.Lookup("COL100"); !ok {
		t.Fatalf("course codes are not upper-cased")
	}

	program, err := src.Program(ctx, "CS1")
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	if ph, ok := program.Placeholder("HUL2XX"); !ok || ph.Category != models.CategoryHumanities {
		t.Fatalf("placeholder category not normalised: %+v", program.Placeholders)
	}
	if _, err := src.Program(ctx, "BROKEN"); !errors.Is(err, apperrors.ErrProgramNotFound) {
		t.Fatalf("invalid program was kept: %v", err)
	}

	minor, err := src.Minor(ctx, "COMPUTING")
	if err != nil || minor.Name != "Computing" {
		t.Fatalf("minor lookup: %+v, %v", minor, err)
	}
}

func TestLoadCatalogDirMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCatalogDir(dir, zerolog.Nop()); err == nil {
		t.Fatalf("expected an error without a catalog file")
	}

	// minors are optional
	writeFile(t, dir, CatalogFile, "courses: []\n")
	writeFile(t, dir, ProgramsFile, "programs: []\n")
	src, err := LoadCatalogDir(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	minors, _ := src.Minors(context.Background())
	if len(minors) != 0 {
		t.Fatalf("minors = %v", minors)
	}
	if _, err := src.Minor(context.Background(), "Any"); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestStaticCatalogListsSorted(t *testing.T) {
	src := NewStaticCatalog(nil,
		[]models.Program{{Code: "ME1"}, {Code: "CS1"}, {Code: "EE1"}},
		[]models.Minor{{Name: "Physics"}, {Name: "Economics"}},
	)
	programs, _ := src.Programs(context.Background())
	if programs[0].Code != "CS1" || programs[2].Code != "ME1" {
		t.Fatalf("programs not sorted: %+v", programs)
	}
	minors, _ := src.Minors(context.Background())
	if minors[0].Name != "Economics" {
		t.Fatalf("minors not sorted: %+v", minors)
	}
}
