package services_test

import (
	"context"
	"testing"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/models"
	"edujobs_backend/internal/repositories"
	"edujobs_backend/internal/services/dto"
	"edujobs_backend/internal/testutil"
	"edujobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseService_CreateAndVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	instructor := testutil.CreateUser(t, f.db, "inst@example.com", "password1", auth.RoleInstructor)
	other := testutil.CreateUser(t, f.db, "other@example.com", "password1", auth.RoleInstructor)
	manager := testutil.CreateUser(t, f.db, "mgr@example.com", "password1", auth.RoleManager)

	course, err := f.course.Create(ctx, instructor, &dto.CreateCourseRequest{
		Title: "Intro to Go", Description: "Basics", Category: "programming", Level: "beginner", MaxStudents: 2,
	})
	require.NoError(t, err)
	assert.False(t, course.IsPublished)
	assert.Equal(t, instructor.ID, course.InstructorID)

	_, err = f.course.Get(ctx, nil, course.ID)
	assert.ErrorIs(t, err, repositories.ErrCourseNotFound)
	_, err = f.course.Get(ctx, other, course.ID)
	assert.ErrorIs(t, err, repositories.ErrCourseNotFound)
	_, err = f.course.Get(ctx, instructor, course.ID)
	require.NoError(t, err)
	_, err = f.course.Get(ctx, manager, course.ID)
	require.NoError(t, err)

	_, err = f.course.SetPublished(ctx, other, course.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
	_, err = f.course.SetPublished(ctx, instructor, course.ID, true)
	require.NoError(t, err)
	_, err = f.course.Get(ctx, nil, course.ID)
	require.NoError(t, err)

	_, err = f.course.Create(ctx, other, &dto.CreateCourseRequest{
		Title: "Borrowed", Description: "x", Category: "c", Level: "advanced", InstructorID: instructor.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	onBehalf, err := f.course.Create(ctx, manager, &dto.CreateCourseRequest{
		Title: "Managed", Description: "x", Category: "c", Level: "advanced", InstructorID: instructor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, instructor.ID, onBehalf.InstructorID)
}

func TestCourseService_EnrollRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	instructor := testutil.CreateUser(t, f.db, "inst@example.com", "password1", auth.RoleInstructor)
	s1 := testutil.CreateUser(t, f.db, "s1@example.com", "password1", auth.RoleStudent)
	s2 := testutil.CreateUser(t, f.db, "s2@example.com", "password1", auth.RoleStudent)
	course := testutil.CreateCourse(t, f.db, instructor.ID, 1)

	enrollment, err := f.course.Enroll(ctx, s1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.True(t, enrollment.EnrolledAt.Equal(f.clock.Now()))

	_, err = f.course.Enroll(ctx, s1, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	_, err = f.course.Enroll(ctx, s2, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseFull)

	_, err = f.course.Enroll(ctx, instructor, course.ID)
	assert.Error(t, err)

	require.NoError(t, f.course.Unenroll(ctx, s1, course.ID))
	err = f.course.Unenroll(ctx, s1, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	_, err = f.course.Enroll(ctx, s2, course.ID)
	require.NoError(t, err, "seat freed by unenroll")
}

func TestCourseService_EnrollDraftCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	instructor := testutil.CreateUser(t, f.db, "inst@example.com", "password1", auth.RoleInstructor)
	student := testutil.CreateUser(t, f.db, "s@example.com", "password1", auth.RoleStudent)
	course := testutil.CreateCourse(t, f.db, instructor.ID, 0)
	require.NoError(t, f.db.Model(course).Update("is_published", false).Error)

	_, err := f.course.Enroll(ctx, student, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotPublished)
}

func TestCourseService_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	instructor := testutil.CreateUser(t, f.db, "inst@example.com", "password1", auth.RoleInstructor)
	student := testutil.CreateUser(t, f.db, "s@example.com", "password1", auth.RoleStudent)
	outsider := testutil.CreateUser(t, f.db, "o@example.com", "password1", auth.RoleStudent)
	course := testutil.CreateCourse(t, f.db, instructor.ID, 0)

	_, err := f.course.UpdateProgress(ctx, outsider, course.ID, 50)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.HTTPCode)

	_, err = f.course.UpdateProgress(ctx, instructor, course.ID, 50)
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	_, err = f.course.Enroll(ctx, student, course.ID)
	require.NoError(t, err)

	e, err := f.course.UpdateProgress(ctx, student, course.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, e.Progress)
	assert.Nil(t, e.CompletedAt)

	e, err = f.course.UpdateProgress(ctx, student, course.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, e.Status)
	require.NotNil(t, e.CompletedAt)

	mine, err := f.course.MyEnrollments(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 100, mine[0].Progress)

	roster, err := f.course.Roster(ctx, instructor, course.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, student.ID, roster[0].UserID)

	_, err = f.course.Roster(ctx, student, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestCourseService_UpdateCapacityBelowEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	instructor := testutil.CreateUser(t, f.db, "inst@example.com", "password1", auth.RoleInstructor)
	s1 := testutil.CreateUser(t, f.db, "s1@example.com", "password1", auth.RoleStudent)
	s2 := testutil.CreateUser(t, f.db, "s2@example.com", "password1", auth.RoleStudent)
	course := testutil.CreateCourse(t, f.db, instructor.ID, 5)
	_, err := f.course.Enroll(ctx, s1, course.ID)
	require.NoError(t, err)
	_, err = f.course.Enroll(ctx, s2, course.ID)
	require.NoError(t, err)

	one := 1
	_, err = f.course.Update(ctx, instructor, course.ID, &dto.UpdateCourseRequest{MaxStudents: &one})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	title := "Renamed"
	updated, err := f.course.Update(ctx, instructor, course.ID, &dto.UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}
