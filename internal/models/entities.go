// Package models contains the domain entities shared across the application.
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind identifies one of the embeddable entity tables.
type EntityKind string

const (
	KindCourses       EntityKind = "courses"
	KindStudents      EntityKind = "students"
	KindOpportunities EntityKind = "opportunities"
)

// ParseEntityKind validates a kind string from flags or query parameters.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindCourses, KindStudents, KindOpportunities:
		return EntityKind(s), nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// Course is a course offering available for recommendation.
type Course struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Provider     string    `json:"provider"`
	Category     string    `json:"category"`
	Level        string    `json:"level"`
	SkillsTaught []string  `json:"skillsTaught"` //nolint:tagliatelle // API contract
	Description  string    `json:"description"`
	Embedding    []float32 `json:"-"`
}

// ExperienceEntry is one work or internship entry in a student profile.
type ExperienceEntry struct {
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

// Student is a learner profile used as the recommendation query side.
type Student struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	BranchField  string            `json:"branchField"` //nolint:tagliatelle // API contract
	CourseName   string            `json:"courseName"`  //nolint:tagliatelle // API contract
	University   string            `json:"university"`
	Skills       []string          `json:"skills"`
	Experience   []ExperienceEntry `json:"experience"`
	Projects     []string          `json:"projects"`
	Certificates []string          `json:"certificates"`
	Trainings    []string          `json:"trainings"`
	Embedding    []float32         `json:"-"`
}

// Opportunity is a job or internship opening available for recommendation.
type Opportunity struct {
	ID               uuid.UUID `json:"id"`
	JobTitle         string    `json:"jobTitle"`        //nolint:tagliatelle // API contract
	CompanyName      string    `json:"companyName"`     //nolint:tagliatelle // API contract
	Department       string    `json:"department"`
	EmploymentType   string    `json:"employmentType"`  //nolint:tagliatelle // API contract
	ExperienceLevel  string    `json:"experienceLevel"` //nolint:tagliatelle // API contract
	Location         string    `json:"location"`
	SkillsRequired   []string  `json:"skillsRequired"`  //nolint:tagliatelle // API contract
	Requirements     []string  `json:"requirements"`
	Responsibilities []string  `json:"responsibilities"`
	Description      string    `json:"description"`
	Embedding        []float32 `json:"-"`
}

// Coverage counts how many eligible entities of one kind carry an embedding.
type Coverage struct {
	Total       int `json:"total"`
	Embedded    int `json:"embedded"`
	NotEmbedded int `json:"notEmbedded"` //nolint:tagliatelle // API contract
}

// Percent returns the embedded share in percent, 0 for an empty table.
func (c Coverage) Percent() float64 {
	if c.Total == 0 {
		return 0
	}

	return float64(c.Embedded) / float64(c.Total) * 100
}
