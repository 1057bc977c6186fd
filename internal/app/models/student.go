package models

// CompletedCourses partitions a student's finished courses by category.
type CompletedCourses struct {
	Core               []string `json:"core" yaml:"core" validate:"dive,coursecode"`
	DepartmentElective []string `json:"departmentElective" yaml:"department_elective" validate:"dive,coursecode"`
	Humanities         []string `json:"humanities" yaml:"humanities" validate:"dive,coursecode"`
	Minor              []string `json:"minor" yaml:"minor" validate:"dive,coursecode"`
}

// All returns every completed code as a set.
func (c CompletedCourses) All() map[string]bool {
	set := make(map[string]bool)
	for _, group := range [][]string{c.Core, c.DepartmentElective, c.Humanities, c.Minor} {
		for _, code := range group {
			set[code] = true
		}
	}
	return set
}

// StudentProfile is the planning input describing one student. Zero
// FinalTerm, TotalTarget and Program fall back to the planner defaults.
type StudentProfile struct {
	Name        string           `json:"name" yaml:"name" validate:"max=100"`
	Program     string           `json:"program" yaml:"program" validate:"max=20"`
	CurrentTerm int              `json:"currentTerm" yaml:"current_term" validate:"min=1,max=20"`
	FinalTerm   int              `json:"finalTerm,omitempty" yaml:"final_term" validate:"omitempty,gtefield=CurrentTerm,max=20"`
	MinCredits  float64          `json:"minCredits" yaml:"min_credits" validate:"gte=0"`
	MaxCredits  float64          `json:"maxCredits" yaml:"max_credits" validate:"gt=0,gtefield=MinCredits"`
	TotalTarget float64          `json:"totalTarget,omitempty" yaml:"total_target" validate:"gte=0"`
	Completed   CompletedCourses `json:"completed" yaml:"completed"`
	Minor       string           `json:"minor,omitempty" yaml:"minor"`
}
