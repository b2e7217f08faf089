package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
)

// setupTestDB starts a throwaway Postgres container and applies the migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(&store.DBConfig{
		DSN:           dsn,
		Type:          store.DBTypePostgres,
		MigrationsDir: "../../../migrations",
	})
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestRebind(t *testing.T) {
	assert.Equal(t,
		"SELECT 1 FROM attendance WHERE student_id = $1 AND date BETWEEN $2 AND $3",
		rebind("SELECT 1 FROM attendance WHERE student_id = ? AND date BETWEEN ? AND ?"),
	)
}

func TestJournalRoundTrip(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	teacher := &models.User{Email: "teacher@example.com", Password: "hash", Role: models.RoleTeacher}
	require.NoError(t, s.CreateUser(teacher))
	assert.ErrorIs(t, s.CreateUser(&models.User{Email: teacher.Email, Password: "x", Role: models.RoleParent}), store.ErrUniqueViolation)

	diana := &models.Student{Name: "Діана"}
	require.NoError(t, s.CreateStudent(diana))

	song := &models.Song{Title: "polly", Author: "Nirvana", Difficulty: 1}
	require.NoError(t, s.CreateSong(song))
	require.NoError(t, s.AssignSong(diana.ID, song.ID))
	require.NoError(t, s.AssignSong(diana.ID, song.ID))

	day := models.NewDate(2024, 2, 10)
	start, end := models.NewDate(2024, 2, 1), models.NewDate(2024, 2, 29)

	present, err := s.ToggleAttendance(diana.ID, day)
	require.NoError(t, err)
	assert.True(t, present)

	rows, err := s.ListAttendance(start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, day, rows[0].Date)

	n, err := s.CountAttendance(diana.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	present, err = s.ToggleAttendance(diana.ID, day)
	require.NoError(t, err)
	assert.False(t, present)

	_, err = s.ToggleAttendance(diana.ID, day)
	require.NoError(t, err)
	require.NoError(t, s.DeleteStudent(diana.ID))

	all, err := s.CountAllAttendance(start, end)
	require.NoError(t, err)
	assert.Zero(t, all)

	assignments, err := s.ListAssignments()
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
