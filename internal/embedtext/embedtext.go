// Package embedtext builds the normalized text blocks that get embedded.
// Each builder walks a fixed, kind-specific field order and emits
// "Label: value" segments joined by blank lines. Empty fields are omitted,
// so an entity with no usable data produces an empty string — callers treat
// that as "no data", not as an error.
package embedtext

import (
	"strings"

	"github.com/rareminds/skillhub/internal/models"
)

// Free-text fields are capped so one verbose description cannot dominate the
// embedding (and blow the provider's token limit).
const (
	maxCourseDescriptionRunes      = 500
	maxOpportunityDescriptionRunes = 1000
)

// shortDelim joins short tags (skill names, project titles); longDelim joins
// longer phrases (requirements, experience summaries).
const (
	shortDelim = ", "
	longDelim  = "; "
)

// BuildCourseText builds the embeddable text for a course.
func BuildCourseText(c *models.Course) string {
	var b builder

	b.add("Course", c.Title)
	b.add("Provider", c.Provider)
	b.add("Category", c.Category)
	b.add("Level", c.Level)
	b.addList("Skills", c.SkillsTaught, shortDelim)
	b.add("Description", truncateRunes(c.Description, maxCourseDescriptionRunes))

	return b.String()
}

// BuildStudentText builds the embeddable text for a student profile.
func BuildStudentText(s *models.Student) string {
	var b builder

	b.add("Name", s.Name)
	b.add("Field of Study", s.BranchField)
	b.add("Course", s.CourseName)
	b.add("University", s.University)
	b.addList("Technical Skills", s.Skills, shortDelim)
	b.addList("Experience", experienceSummaries(s.Experience), longDelim)
	b.addList("Projects", s.Projects, shortDelim)
	b.addList("Certifications", s.Certificates, shortDelim)
	b.addList("Training", s.Trainings, shortDelim)

	return b.String()
}

// BuildOpportunityText builds the embeddable text for a job opportunity.
func BuildOpportunityText(o *models.Opportunity) string {
	var b builder

	b.add("Job Title", o.JobTitle)
	b.add("Company", o.CompanyName)
	b.add("Department", o.Department)
	b.add("Type", o.EmploymentType)
	b.add("Experience", o.ExperienceLevel)
	b.add("Location", o.Location)
	b.addList("Required Skills", o.SkillsRequired, shortDelim)
	b.addList("Requirements", o.Requirements, longDelim)
	b.addList("Responsibilities", o.Responsibilities, longDelim)
	b.add("Description", truncateRunes(o.Description, maxOpportunityDescriptionRunes))

	return b.String()
}

// builder accumulates "Label: value" segments, silently dropping empties.
type builder struct {
	parts []string
}

func (b *builder) add(label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	b.parts = append(b.parts, label+": "+value)
}

func (b *builder) addList(label string, values []string, delim string) {
	kept := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			kept = append(kept, v)
		}
	}

	if len(kept) == 0 {
		return
	}

	b.parts = append(b.parts, label+": "+strings.Join(kept, delim))
}

func (b *builder) String() string {
	return strings.Join(b.parts, "\n\n")
}

func experienceSummaries(entries []models.ExperienceEntry) []string {
	out := make([]string, 0, len(entries))

	for _, e := range entries {
		role := strings.TrimSpace(e.Role)
		org := strings.TrimSpace(e.Organization)

		switch {
		case role != "" && org != "":
			out = append(out, role+" at "+org)
		case role != "":
			out = append(out, role)
		case org != "":
			out = append(out, org)
		}
	}

	return out
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max])
}
