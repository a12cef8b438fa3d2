package service

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gema-learn-api/internal/repository"
)

const gradebookSheet = "Gradebook"

var gradebookHeaders = []interface{}{
	"Submission ID", "Student", "Email", "Lesson", "Assignment", "Status", "Grade", "Feedback", "Graded At",
}

// GradebookExport is a rendered workbook ready to stream to the client.
type GradebookExport struct {
	FileName string
	Content  []byte
}

// GradebookService renders course submissions as a spreadsheet.
type GradebookService interface {
	Export(ctx context.Context, courseID uint, actor ActivityActor) (GradebookExport, error)
}

type gradebookService struct {
	courses     repository.CourseRepository
	submissions repository.SubmissionRepository
	strip       *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradebookService constructs a GradebookService.
func NewGradebookService(courses repository.CourseRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		courses:     courses,
		submissions: submissions,
		strip:       bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradebookService) Export(ctx context.Context, courseID uint, actor ActivityActor) (GradebookExport, error) {
	course, err := ownedCourse(ctx, s.courses, courseID, actor)
	if err != nil {
		return GradebookExport{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{CourseID: &course.ID})
	if err != nil {
		return GradebookExport{}, err
	}

	lessonTitles := make(map[uint]string, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessonTitles[lesson.ID] = lesson.Title
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	index, err := f.NewSheet(gradebookSheet)
	if err != nil {
		return GradebookExport{}, fmt.Errorf("create gradebook sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return GradebookExport{}, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(gradebookSheet, "A1", &gradebookHeaders); err != nil {
		return GradebookExport{}, fmt.Errorf("write gradebook header: %w", err)
	}

	for i, submission := range submissions {
		var grade interface{}
		if submission.Grade != nil {
			grade = *submission.Grade
		}
		gradedAt := ""
		if submission.GradedAt != nil {
			gradedAt = submission.GradedAt.UTC().Format(time.RFC3339)
		}

		row := []interface{}{
			submission.ID,
			submission.Student.Name,
			submission.Student.Email,
			lessonTitles[submission.LessonID],
			submission.AssignmentTitle,
			string(submission.Status),
			grade,
			html.UnescapeString(s.strip.Sanitize(submission.Feedback)),
			gradedAt,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return GradebookExport{}, err
		}
		if err := f.SetSheetRow(gradebookSheet, cell, &row); err != nil {
			return GradebookExport{}, fmt.Errorf("write gradebook row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return GradebookExport{}, fmt.Errorf("write gradebook: %w", err)
	}

	s.logger.Info().Uint("course_id", course.ID).Int("rows", len(submissions)).Msg("gradebook exported")
	return GradebookExport{
		FileName: fmt.Sprintf("gradebook-course-%d-%s.xlsx", course.ID, s.now().UTC().Format("20060102")),
		Content:  buf.Bytes(),
	}, nil
}
