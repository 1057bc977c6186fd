package models

// MinorCourse is a course listed by a minor program.
type MinorCourse struct {
	Code    string         `json:"code" yaml:"code" db:"code"`
	Name    string         `json:"name" yaml:"name" db:"name"`
	Credits float64        `json:"credits" yaml:"credits" db:"credits"`
	Hours   *HourBreakdown `json:"hours,omitempty" yaml:"hours,omitempty"`
}

// Minor is a secondary program a student may complete alongside the home
// program. Zero thresholds fall back to the planner defaults.
type Minor struct {
	Name              string        `json:"name" yaml:"name" db:"name"`
	Department        string        `json:"department" yaml:"department" db:"department"`
	CoreCourses       []MinorCourse `json:"coreCourses" yaml:"core_courses"`
	ElectiveCourses   []MinorCourse `json:"electiveCourses" yaml:"elective_courses"`
	CoreCredits       float64       `json:"coreCreditsRequired" yaml:"core_credits_required" db:"core_credits"`
	ElectiveCredits   float64       `json:"electiveCreditsRequired" yaml:"elective_credits_required" db:"elective_credits"`
	UniqueCredits     float64       `json:"uniqueCreditsRequired,omitempty" yaml:"unique_credits_required" db:"unique_credits"`
	OpenChoiceCredits float64       `json:"openChoiceCredits,omitempty" yaml:"open_choice_credits" db:"open_choice_credits"`
	TotalCredits      float64       `json:"totalCredits,omitempty" yaml:"total_credits" db:"total_credits"`
	Note              string        `json:"note,omitempty" yaml:"note" db:"note"`
}

// Courses returns core courses followed by electives.
func (m Minor) Courses() []MinorCourse {
	out := make([]MinorCourse, 0, len(m.CoreCourses)+len(m.ElectiveCourses))
	out = append(out, m.CoreCourses...)
	return append(out, m.ElectiveCourses...)
}

// MinorDefaults carries the thresholds applied when a minor leaves them unset.
type MinorDefaults struct {
	UniqueCredits     float64
	OpenChoiceCredits float64
	TotalCredits      float64
}

// WithDefaults returns a copy of m with unset thresholds filled in.
func (m Minor) WithDefaults(d MinorDefaults) Minor {
	if m.UniqueCredits == 0 {
		m.UniqueCredits = d.UniqueCredits
	}
	if m.OpenChoiceCredits == 0 {
		m.OpenChoiceCredits = d.OpenChoiceCredits
	}
	if m.TotalCredits == 0 {
		m.TotalCredits = d.TotalCredits
	}
	m.CoreCourses = append([]MinorCourse(nil), m.CoreCourses...)
	m.ElectiveCourses = append([]MinorCourse(nil), m.ElectiveCourses...)
	return m
}
