package services

import (
	"context"
	"strings"
	"testing"

	"github.com/yigit/degreeplan/internal/app/models"
	"github.com/yigit/degreeplan/internal/app/repositories"
	"gopkg.in/yaml.v3"
)

func TestCourseDetailYAMLIsFlat(t *testing.T) {
	cat := models.Catalog{
		"COL100": {Code: "COL100", Name: "Intro to Programming", Credits: 4},
		"COL106": {Code: "COL106", Name: "Data Structures", Credits: 5, Prereqs: "[COL100]"},
	}
	svc := NewCatalogService(repositories.NewStaticCatalog(cat, nil, nil))

	detail, err := svc.GetCourse(context.Background(), "col106")
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	out, err := yaml.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	text := string(out)
	for _, want := range []string{"code: COL106\n", "prerequisite_paths:\n", "- - COL100\n"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in\n%s", want, text)
		}
	}
	if strings.Contains(text, "catalogcourse") {
		t.Fatalf("embedded course is nested:\n%s", text)
	}
}
