package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/billing"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
)

type StudentRow struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Lessons  int             `json:"lessons"`
	MonthSum int             `json:"month_sum"`
	Attended map[string]bool `json:"attended"`
}

type JournalView struct {
	Month    billing.Month
	Students []StudentRow
	Total    int

	PrevYear  int
	PrevMonth time.Month
	NextYear  int
	NextMonth time.Month
}

type StudentsView struct {
	Students []models.Student
	Songs    []models.Song
	Assigned map[int64][]models.Song
}

type ToggleResult struct {
	Present  bool `json:"present"`
	MonthSum int  `json:"month_sum"`
	Total    int  `json:"total"`
}

// VisibleStudents is everyone for the teacher and own children for a parent.
func (s *Service) VisibleStudents(actor *models.User) ([]models.Student, error) {
	if actor == nil {
		return nil, ErrAuthRequired
	}
	if actor.IsTeacher() {
		return s.Store.ListStudents()
	}
	return s.Store.ListStudentsByParent(actor.ID)
}

// Journal builds the attendance grid of a month, zero year or month means the current one.
func (s *Service) Journal(actor *models.User, year int, month time.Month) (*JournalView, error) {
	today := s.now()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}

	m, err := billing.MonthInfo(year, month)
	if err != nil {
		return nil, invalid("month", err.Error())
	}

	students, err := s.VisibleStudents(actor)
	if err != nil {
		return nil, err
	}

	attendance, err := s.Store.ListAttendance(m.Start, m.End)
	if err != nil {
		return nil, err
	}

	attended := make(map[int64]map[string]bool, len(students))
	for _, st := range students {
		attended[st.ID] = map[string]bool{}
	}
	for _, a := range attendance {
		if days, ok := attended[a.StudentID]; ok {
			days[a.Date.String()] = true
		}
	}

	bills, total := s.Ledger.Statement(students, attendance, m)
	rows := make([]StudentRow, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, StudentRow{
			ID:       b.StudentID,
			Name:     b.Name,
			Lessons:  b.Lessons,
			MonthSum: b.MonthSum,
			Attended: attended[b.StudentID],
		})
	}

	view := &JournalView{
		Month:    m,
		Students: rows,
		Total:    total,
	}
	view.PrevYear, view.PrevMonth = m.Prev()
	view.NextYear, view.NextMonth = m.Next()
	return view, nil
}

func (s *Service) Students(actor *models.User) (*StudentsView, error) {
	students, err := s.VisibleStudents(actor)
	if err != nil {
		return nil, err
	}

	songs, err := s.Store.ListSongs()
	if err != nil {
		return nil, err
	}

	assignments, err := s.Store.ListAssignments()
	if err != nil {
		return nil, err
	}

	assigned := make(map[int64][]models.Song, len(students))
	for _, st := range students {
		assigned[st.ID] = []models.Song{}
	}
	for _, a := range assignments {
		if list, ok := assigned[a.StudentID]; ok {
			assigned[a.StudentID] = append(list, a.Song)
		}
	}

	return &StudentsView{
		Students: students,
		Songs:    songs,
		Assigned: assigned,
	}, nil
}

func (s *Service) Songs() ([]models.Song, error) {
	return s.Store.ListSongs()
}

// MonthSum is the bill of one student for the lessons within [start, end].
func (s *Service) MonthSum(studentID int64, start, end models.Date) (int, error) {
	return s.Ledger.MonthSum(studentID, start, end)
}

func (s *Service) ToggleAttendance(actor *models.User, req models.ToggleRequest) (*ToggleResult, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := models.Validate(&req); err != nil {
		return nil, validationError(err)
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, invalid("date", err.Error())
	}
	studentID := int64(req.StudentID)

	present, err := s.Store.ToggleAttendance(studentID, date)
	if err != nil {
		return nil, translateStoreError(err)
	}

	m := billing.MonthOf(date)
	monthSum, err := s.Ledger.MonthSum(studentID, m.Start, m.End)
	if err != nil {
		return nil, err
	}
	total, err := s.Ledger.Total(m.Start, m.End)
	if err != nil {
		return nil, err
	}

	logger.Debug.Printf("Attendance of student %d on %s toggled, present=%v", studentID, date, present)
	return &ToggleResult{Present: present, MonthSum: monthSum, Total: total}, nil
}

func (s *Service) AddStudent(actor *models.User, req models.StudentRequest) (*models.Student, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := models.Validate(&req); err != nil {
		return nil, validationError(err)
	}

	student := &models.Student{Name: req.Name}
	student.ParentID.Int64, student.ParentID.Valid = actor.ID, true
	if err := s.Store.CreateStudent(student); err != nil {
		return nil, err
	}
	logger.Info.Printf("Student %q added with id %d", student.Name, student.ID)
	return student, nil
}

func (s *Service) DeleteStudent(actor *models.User, id int64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.Store.DeleteStudent(id); err != nil {
		return err
	}
	logger.Info.Printf("Student %d deleted", id)
	return nil
}

func (s *Service) AddSong(actor *models.User, req models.SongRequest) (*models.Song, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := models.Validate(&req); err != nil {
		return nil, validationError(err)
	}

	song := &models.Song{
		Title:      req.Title,
		Author:     req.Author,
		Difficulty: req.DifficultyOrDefault(),
	}
	if err := s.Store.CreateSong(song); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return nil, invalid("title", "a song with this title already exists")
		}
		return nil, err
	}
	return song, nil
}

func (s *Service) DeleteSong(actor *models.User, id int64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	return s.Store.DeleteSong(id)
}

func (s *Service) Assign(actor *models.User, req models.AssignRequest) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if err := models.Validate(&req); err != nil {
		return validationError(err)
	}
	if err := s.Store.AssignSong(int64(req.StudentID), int64(req.SongID)); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func (s *Service) Unassign(actor *models.User, studentID, songID int64) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	return s.Store.UnassignSong(studentID, songID)
}

// LinkParent hands a student over to a parent account so the parent can follow the journal.
func (s *Service) LinkParent(actor *models.User, studentID int64, req models.ParentRequest) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := models.Validate(&req); err != nil {
		return validationError(err)
	}

	student, err := s.Store.GetStudent(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return fmt.Errorf("%w: student %d", ErrNotFound, studentID)
	}

	parent, err := s.Store.GetUserByEmail(req.Email)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("%w: user %s", ErrNotFound, req.Email)
	}
	if parent.Role != models.RoleParent {
		return invalid("email", "the account is not a parent one")
	}

	return s.Store.SetStudentParent(student.ID, parent.ID)
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrMissingStudent), errors.Is(err, store.ErrMissingSong):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrUniqueViolation):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
