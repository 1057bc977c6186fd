package validation

import "testing"

type sampleProfile struct {
	Term    int      `json:"term" validate:"min=1,max=20"`
	Final   int      `json:"final,omitempty" validate:"omitempty,gtefield=Term"`
	Courses []string `json:"courses" validate:"dive,coursecode"`
	Note    string   `json:"-" validate:"max=5"`
}

type sampleRequest struct {
	Profile sampleProfile `json:"profile"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name  string
		in    sampleRequest
		field string
	}{
		{name: "valid", in: sampleRequest{Profile: sampleProfile{Term: 3, Final: 8, Courses: []string{"COL106"}}}},
		{name: "final unset", in: sampleRequest{Profile: sampleProfile{Term: 3}}},
		{name: "term too small", in: sampleRequest{Profile: sampleProfile{Term: 0}}, field: "profile.term"},
		{name: "final before term", in: sampleRequest{Profile: sampleProfile{Term: 5, Final: 4}}, field: "profile.final"},
		{name: "bad code", in: sampleRequest{Profile: sampleProfile{Term: 1, Courses: []string{"COL106", "col1"}}}, field: "profile.courses[1]"},
		{name: "untagged name", in: sampleRequest{Profile: sampleProfile{Term: 1, Note: "too long"}}, field: "profile.Note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := Struct(tt.in)
			if tt.field == "" {
				if len(problems) != 0 {
					t.Fatalf("unexpected problems %+v", problems)
				}
				return
			}
			if len(problems) != 1 || problems[0].Field != tt.field || problems[0].Message == "" {
				t.Fatalf("problems = %+v, want one on %s", problems, tt.field)
			}
		})
	}
}

func TestPrefixRange(t *testing.T) {
	tests := []struct {
		tag    string
		prefix string
		ok     bool
	}{
		{"HUL2XX", "HUL2", true},
		{"HUL3XX", "HUL3", true},
		{"DE", "", false},
		{"HUL21X", "", false},
	}
	for _, tt := range tests {
		prefix, ok := PrefixRange(tt.tag)
		if prefix != tt.prefix || ok != tt.ok {
			t.Fatalf("PrefixRange(%q) = %q, %v", tt.tag, prefix, ok)
		}
	}
}
