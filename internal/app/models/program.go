package models

// Placeholder describes a curriculum entry that expands to many courses.
// Either Codes or Prefix selects the courses.
type Placeholder struct {
	Tag      string   `json:"tag" yaml:"tag" db:"tag"`
	Category Category `json:"category" yaml:"category" db:"category"`
	Codes    []string `json:"codes,omitempty" yaml:"codes,omitempty" db:"codes"`
	Prefix   string   `json:"prefix,omitempty" yaml:"prefix,omitempty" db:"prefix"`
}

// Program is a degree program with its recommended per-term curriculum.
// Each Terms entry is either a course code or a placeholder tag.
type Program struct {
	Code                string        `json:"code" yaml:"code" db:"code"`
	Name                string        `json:"name" yaml:"name" db:"name"`
	Terms               [][]string    `json:"terms" yaml:"terms"`
	DepartmentElectives []string      `json:"departmentElectives,omitempty" yaml:"department_electives"`
	Placeholders        []Placeholder `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
}

// Placeholder returns the declared placeholder for tag.
func (p Program) Placeholder(tag string) (Placeholder, bool) {
	for _, ph := range p.Placeholders {
		if ph.Tag == tag {
			return ph, true
		}
	}
	return Placeholder{}, false
}
