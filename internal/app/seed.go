package app

import (
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

type seedSong struct {
	Title      string
	Author     string
	Difficulty int
}

var seedPupils = []string{
	"Діана", "Саша", "Андріана", "Маша", "Ліза", "Кіріл", "Остап",
	"Єва", "Валерія", "Аня", "Матвій", "Валентин", "Дем'ян",
	"Єгор", "Нікалай", "Глєб", "Георгій", "Данило",
}

var seedCatalogue = []seedSong{
	{"deluciuos of savior", "Slayer", 1},
	{"Bluestone Alley", "Wei Congfei", 2},
	{"memories and dreams", "Sally Face", 1},
	{"come as you are", "Nirvana", 1},
	{"smells like teen spirit", "Nirvana", 1},
	{"Horimia", "Масару Ёкояма", 3},
	{"falling down", "Lil Peep", 2},
	{"sweet dreams", "Marilyn Manson", 1},
	{"Chk chk boom", "Stray Kids", 3},
	{"Щедрик", "Микола Леонтович", 2},
	{"megalovania", "Undertale", 3},
	{"feel good", "Gorillaz", 1},
	{"Graze the roof", "Plants vs Zombies", 2},
	{"смішні голоси", "Ногу Свело", 2},
	{"маленький ковбой", "Олександр Вінницький", 3},
	{"The Last of Us", "G. Santaolalla", 3},
	{"носорігблюз", "Юрій Радзецький", 4},
	{"enemy", "Imagine Dragons", 1},
	{"Добрий вечір тобі", "Народна", 2},
	{"червона калина", "Степан Чарнецький", 2},
	{"snowdin town", "Undertale", 3},
	{"7 nation army", "The White Stripes", 1},
	{"Californication", "RHCP", 3},
	{"polly", "Nirvana", 1},
}

var seedAssignments = map[string][]string{
	"Діана":    {"feel good", "deluciuos of savior", "Graze the roof", "Bluestone Alley", "smells like teen spirit"},
	"Саша":     {"deluciuos of savior", "memories and dreams", "come as you are", "smells like teen spirit"},
	"Андріана": {"Bluestone Alley", "Horimia", "come as you are", "falling down"},
	"Маша":     {"sweet dreams", "smells like teen spirit", "memories and dreams", "Chk chk boom", "come as you are"},
	"Ліза":     {"sweet dreams", "Bluestone Alley", "Horimia", "Chk chk boom", "Щедрик"},
	"Кіріл": {
		"sweet dreams", "megalovania", "deluciuos of savior", "feel good", "Graze the roof",
		"смішні голоси", "falling down", "маленький ковбой",
	},
	"Остап": {
		"megalovania", "Добрий вечір тобі", "deluciuos of savior", "червона калина", "enemy",
		"snowdin town", "feel good", "come as you are", "sweet dreams", "sweet dreams",
	},
	"Єва":     {"Bluestone Alley", "deluciuos of savior", "falling down"},
	"Валерія": {"sweet dreams", "smells like teen spirit"},
	"Аня": {
		"falling down", "Californication", "The Last of Us", "Horimia", "deluciuos of savior",
		"memories and dreams", "sweet dreams", "come as you are", "polly",
	},
	"Валентин": {"sweet dreams", "deluciuos of savior", "смішні голоси"},
	"Дем'ян":   {"sweet dreams"},
	"Єгор":     {"7 nation army", "come as you are", "Graze the roof", "memories and dreams", "megalovania", "falling down"},
	"Нікалай":  {"falling down", "смішні голоси"},
	"Глєб":     {"смішні голоси", "носорігблюз", "The Last of Us"},
	"Георгій":  {"маленький ковбой", "носорігблюз", "Bluestone Alley"},
}

// Seed fills an empty journal with the teacher account, the pupils and the
// song catalogue. Every entity is looked up by its natural key first so it
// is safe to run on every start.
func (s *Service) Seed() error {
	teacher, err := s.seedTeacher()
	if err != nil {
		return err
	}

	students := make(map[string]int64, len(seedPupils))
	created := 0
	for _, name := range seedPupils {
		student, err := s.Store.GetStudentByName(name)
		if err != nil {
			return err
		}
		if student == nil {
			student = &models.Student{Name: name}
			if teacher != nil {
				student.ParentID.Int64, student.ParentID.Valid = teacher.ID, true
			}
			if err := s.Store.CreateStudent(student); err != nil {
				return fmt.Errorf("failed to seed student %q: %w", name, err)
			}
			created++
		}
		students[name] = student.ID
	}
	logger.Info.Printf("Seed: %d new students", created)

	songs := make(map[string]int64, len(seedCatalogue))
	created = 0
	for _, entry := range seedCatalogue {
		song, err := s.Store.GetSongByTitle(entry.Title)
		if err != nil {
			return err
		}
		if song == nil {
			song = &models.Song{Title: entry.Title, Author: entry.Author, Difficulty: entry.Difficulty}
			if err := s.Store.CreateSong(song); err != nil {
				return fmt.Errorf("failed to seed song %q: %w", entry.Title, err)
			}
			created++
		}
		songs[entry.Title] = song.ID
	}
	logger.Info.Printf("Seed: %d new songs", created)

	for pupil, titles := range seedAssignments {
		for _, title := range titles {
			songID, ok := songs[title]
			if !ok {
				logger.Debug.Printf("Seed: no song %q for %s", title, pupil)
				continue
			}
			if err := s.Store.AssignSong(students[pupil], songID); err != nil {
				return fmt.Errorf("failed to seed assignment %s -> %s: %w", pupil, title, err)
			}
		}
	}

	return nil
}

// seedTeacher creates the teacher only in an empty journal and returns the user
// owning the seeded pupils, nil if there is none.
func (s *Service) seedTeacher() (*models.User, error) {
	email := models.NormalizeEmail(s.Config.Seed.TeacherEmail)

	n, err := s.Store.CountUsers()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return s.Store.GetUserByEmail(email)
	}

	teacher := &models.User{Email: email, Role: models.RoleTeacher}
	if err := teacher.SetPassword(s.Config.Seed.TeacherPassword); err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}
	if err := s.Store.CreateUser(teacher); err != nil {
		return nil, fmt.Errorf("failed to seed teacher: %w", err)
	}
	logger.Info.Printf("Seed: teacher account %s created", teacher.Email)
	return teacher, nil
}
