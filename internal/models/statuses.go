package models

type EnrollmentStatus string
type CourseLevel string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"

	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

var CourseLevels = []CourseLevel{CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced}
