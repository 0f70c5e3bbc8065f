package models

import "time"

type Course struct {
	BaseModel
	Title        string      `gorm:"size:200;not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Category     string      `gorm:"size:100;index" json:"category"`
	Level        CourseLevel `gorm:"type:varchar(20);not null" json:"level"`
	Price        float64     `gorm:"not null" json:"price"`
	InstructorID string      `gorm:"type:varchar(36);not null;index" json:"instructorId"`
	MaxStudents  int         `gorm:"not null" json:"maxStudents"`
	IsPublished  bool        `gorm:"not null;index" json:"isPublished"`

	Instructor *User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
}

// Unlimited reports whether the course has no enrollment ceiling.
func (c *Course) Unlimited() bool {
	return c.MaxStudents <= 0
}

type Enrollment struct {
	BaseModel
	CourseID    string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_course_user" json:"courseId"`
	UserID      string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_course_user;index" json:"userId"`
	Progress    int              `gorm:"not null" json:"progress"`
	Status      EnrollmentStatus `gorm:"type:varchar(20);not null" json:"status"`
	EnrolledAt  time.Time        `gorm:"not null" json:"enrolledAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
