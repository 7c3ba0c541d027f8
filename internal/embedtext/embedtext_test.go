package embedtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rareminds/skillhub/internal/models"
)

func TestBuildCourseText_allFields(t *testing.T) {
	course := &models.Course{
		Title:        "Go Fundamentals",
		Provider:     "Acme Academy",
		Category:     "Programming",
		Level:        "Beginner",
		SkillsTaught: []string{"Go", "Testing", "Concurrency"},
		Description:  "Learn Go from scratch.",
	}

	text := BuildCourseText(course)

	want := "Course: Go Fundamentals\n\n" +
		"Provider: Acme Academy\n\n" +
		"Category: Programming\n\n" +
		"Level: Beginner\n\n" +
		"Skills: Go, Testing, Concurrency\n\n" +
		"Description: Learn Go from scratch."
	assert.Equal(t, want, text)
}

func TestBuildCourseText_emptyFieldsOmitted(t *testing.T) {
	course := &models.Course{
		Title:        "Go Fundamentals",
		SkillsTaught: []string{"", "  "},
	}

	assert.Equal(t, "Course: Go Fundamentals", BuildCourseText(course))
}

func TestBuildCourseText_noEmbeddableData(t *testing.T) {
	assert.Equal(t, "", BuildCourseText(&models.Course{}))
	assert.Equal(t, "", BuildCourseText(&models.Course{Title: "   "}))
}

func TestBuildCourseText_descriptionTruncated(t *testing.T) {
	course := &models.Course{
		Title:       "Go Fundamentals",
		Description: strings.Repeat("x", 600),
	}

	text := BuildCourseText(course)

	assert.Contains(t, text, "Description: "+strings.Repeat("x", 500))
	assert.NotContains(t, text, strings.Repeat("x", 501))
}

func TestBuildStudentText_allFields(t *testing.T) {
	student := &models.Student{
		Name:        "Asha",
		BranchField: "Computer Science",
		CourseName:  "B.Tech",
		University:  "IIT Madras",
		Skills:      []string{"Go", "SQL"},
		Experience: []models.ExperienceEntry{
			{Role: "Intern", Organization: "Acme"},
			{Role: "Tutor"},
			{Organization: "Lab"},
		},
		Projects:     []string{"Chat app"},
		Certificates: []string{"AWS CCP"},
		Trainings:    []string{"Scrum basics"},
	}

	text := BuildStudentText(student)

	assert.Contains(t, text, "Name: Asha")
	assert.Contains(t, text, "Field of Study: Computer Science")
	assert.Contains(t, text, "Course: B.Tech")
	assert.Contains(t, text, "University: IIT Madras")
	assert.Contains(t, text, "Technical Skills: Go, SQL")
	assert.Contains(t, text, "Experience: Intern at Acme; Tutor; Lab")
	assert.Contains(t, text, "Projects: Chat app")
	assert.Contains(t, text, "Certifications: AWS CCP")
	assert.Contains(t, text, "Training: Scrum basics")
}

func TestBuildStudentText_noEmbeddableData(t *testing.T) {
	assert.Equal(t, "", BuildStudentText(&models.Student{}))
}

func TestBuildOpportunityText_allFields(t *testing.T) {
	opp := &models.Opportunity{
		JobTitle:         "Backend Engineer",
		CompanyName:      "Acme",
		Department:       "Platform",
		EmploymentType:   "Full-time",
		ExperienceLevel:  "Entry",
		Location:         "Chennai",
		SkillsRequired:   []string{"Go", "PostgreSQL"},
		Requirements:     []string{"B.Tech or equivalent", "Strong fundamentals"},
		Responsibilities: []string{"Build APIs", "Own services"},
		Description:      "Join the platform team.",
	}

	text := BuildOpportunityText(opp)

	assert.Contains(t, text, "Job Title: Backend Engineer")
	assert.Contains(t, text, "Company: Acme")
	assert.Contains(t, text, "Department: Platform")
	assert.Contains(t, text, "Type: Full-time")
	assert.Contains(t, text, "Experience: Entry")
	assert.Contains(t, text, "Location: Chennai")
	assert.Contains(t, text, "Required Skills: Go, PostgreSQL")
	assert.Contains(t, text, "Requirements: B.Tech or equivalent; Strong fundamentals")
	assert.Contains(t, text, "Responsibilities: Build APIs; Own services")
	assert.Contains(t, text, "Description: Join the platform team.")
}

func TestBuildOpportunityText_descriptionTruncated(t *testing.T) {
	opp := &models.Opportunity{
		JobTitle:    "Backend Engineer",
		Description: strings.Repeat("y", 1200),
	}

	text := BuildOpportunityText(opp)

	assert.Contains(t, text, strings.Repeat("y", 1000))
	assert.NotContains(t, text, strings.Repeat("y", 1001))
}
