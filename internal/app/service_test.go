package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
	"github.com/shrimpsizemoose/zhurnal/internal/store/sqlite"
)

type testEnv struct {
	svc     *Service
	redis   *miniredis.Miniredis
	teacher *models.User
	parent  *models.User
}

func setupTestService(t *testing.T) *testEnv {
	s, err := sqlite.NewSQLiteStore(&store.DBConfig{
		DSN:           ":memory:",
		Type:          store.DBTypeSQLite,
		MigrationsDir: "../../migrations",
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	config := DefaultConfig()
	config.Server.SecretKey = "test-secret"
	sessions := NewSessionsWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), config)

	svc := New(config, s, sessions)
	svc.now = func() time.Time { return time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { svc.Close() })

	teacher, err := svc.Register(models.RegisterForm{Email: "teacher@example.com", Password: "secret1", Role: models.RoleTeacher})
	require.NoError(t, err)
	parent, err := svc.Register(models.RegisterForm{Email: "mom@example.com", Password: "secret1"})
	require.NoError(t, err)

	return &testEnv{svc: svc, redis: mr, teacher: teacher, parent: parent}
}

func TestRegister(t *testing.T) {
	env := setupTestService(t)

	t.Run("default role is parent", func(t *testing.T) {
		assert.Equal(t, models.RoleParent, env.parent.Role)
		assert.NotEqual(t, "secret1", env.parent.Password)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := env.svc.Register(models.RegisterForm{Email: " MOM@example.com", Password: "another1"})
		assert.ErrorIs(t, err, ErrEmailExists)

		n, err := env.svc.Store.CountUsers()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("bad payload", func(t *testing.T) {
		_, err := env.svc.Register(models.RegisterForm{Email: "not-an-email", Password: "secret1"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Field)
	})
}

func TestLoginLogout(t *testing.T) {
	env := setupTestService(t)
	ctx := context.Background()

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, _, err := env.svc.Login(ctx, models.LoginForm{Email: "teacher@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = env.svc.Login(ctx, models.LoginForm{Email: "ghost@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("session lifecycle", func(t *testing.T) {
		token, user, err := env.svc.Login(ctx, models.LoginForm{Email: " Teacher@Example.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, env.teacher.ID, user.ID)

		actor, err := env.svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, env.teacher.ID, actor.ID)

		require.NoError(t, env.svc.Logout(ctx, token))
		_, err = env.svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("expired session", func(t *testing.T) {
		token, _, err := env.svc.Login(ctx, models.LoginForm{Email: "mom@example.com", Password: "secret1"})
		require.NoError(t, err)

		env.redis.FastForward(env.svc.Sessions.TTL() + time.Minute)
		_, err = env.svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("forged token", func(t *testing.T) {
		_, err := env.svc.Authenticate(ctx, "eyJhbGciOiJIUzI1NiJ9.e30.garbage")
		assert.ErrorIs(t, err, ErrAuthRequired)
		_, err = env.svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrAuthRequired)
	})
}

func TestRequireAdmin(t *testing.T) {
	assert.ErrorIs(t, RequireAdmin(nil), ErrAuthRequired)
	assert.ErrorIs(t, RequireAdmin(&models.User{Role: models.RoleParent}), ErrForbidden)
	assert.NoError(t, RequireAdmin(&models.User{Role: models.RoleTeacher}))
}

func TestToggleAttendanceExample(t *testing.T) {
	env := setupTestService(t)

	diana, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "Діана"})
	require.NoError(t, err)

	req := models.ToggleRequest{StudentID: models.ID(diana.ID), Date: "2024-02-10"}
	start, end := models.NewDate(2024, 2, 1), models.NewDate(2024, 2, 29)

	res, err := env.svc.ToggleAttendance(env.teacher, req)
	require.NoError(t, err)
	assert.True(t, res.Present)
	assert.Equal(t, 130, res.MonthSum)
	assert.Equal(t, 130, res.Total)

	sum, err := env.svc.MonthSum(diana.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 130, sum)

	res, err = env.svc.ToggleAttendance(env.teacher, req)
	require.NoError(t, err)
	assert.False(t, res.Present)
	assert.Equal(t, 0, res.MonthSum)

	sum, err = env.svc.MonthSum(diana.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestToggleAttendanceErrors(t *testing.T) {
	env := setupTestService(t)
	diana, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "Діана"})
	require.NoError(t, err)

	_, err = env.svc.ToggleAttendance(env.parent, models.ToggleRequest{StudentID: models.ID(diana.ID), Date: "2024-02-10"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.svc.ToggleAttendance(env.teacher, models.ToggleRequest{StudentID: models.ID(diana.ID), Date: "10.02.2024"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = env.svc.ToggleAttendance(env.teacher, models.ToggleRequest{StudentID: 4242, Date: "2024-02-10"})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := env.svc.Store.CountAllAttendance(models.NewDate(2024, 1, 1), models.NewDate(2024, 12, 31))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestJournalVisibility(t *testing.T) {
	env := setupTestService(t)

	diana, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "Діана"})
	require.NoError(t, err)
	sasha, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "Саша"})
	require.NoError(t, err)
	require.NoError(t, env.svc.LinkParent(env.teacher, diana.ID, models.ParentRequest{Email: "mom@example.com"}))

	for _, r := range []models.ToggleRequest{
		{StudentID: models.ID(diana.ID), Date: "2024-02-03"},
		{StudentID: models.ID(diana.ID), Date: "2024-02-10"},
		{StudentID: models.ID(sasha.ID), Date: "2024-02-10"},
		{StudentID: models.ID(sasha.ID), Date: "2024-03-02"},
	} {
		_, err := env.svc.ToggleAttendance(env.teacher, r)
		require.NoError(t, err)
	}

	t.Run("teacher sees everyone, current month by default", func(t *testing.T) {
		view, err := env.svc.Journal(env.teacher, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "2024-02", view.Month.String())
		assert.Len(t, view.Month.Days, 29)
		require.Len(t, view.Students, 2)
		assert.Equal(t, 260, view.Students[0].MonthSum)
		assert.True(t, view.Students[0].Attended["2024-02-03"])
		assert.Equal(t, 130, view.Students[1].MonthSum)
		assert.False(t, view.Students[1].Attended["2024-03-02"])
		assert.Equal(t, 390, view.Total)
		assert.Equal(t, time.January, view.PrevMonth)
		assert.Equal(t, time.March, view.NextMonth)
	})

	t.Run("parent sees only own children", func(t *testing.T) {
		view, err := env.svc.Journal(env.parent, 2024, time.February)
		require.NoError(t, err)
		require.Len(t, view.Students, 1)
		assert.Equal(t, diana.ID, view.Students[0].ID)
		assert.Equal(t, 260, view.Total)

		students, err := env.svc.VisibleStudents(env.parent)
		require.NoError(t, err)
		for _, st := range students {
			assert.True(t, st.OwnedBy(env.parent.ID))
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		_, err := env.svc.Journal(env.teacher, 2024, 13)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestCatalogueOperations(t *testing.T) {
	env := setupTestService(t)

	diana, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "  Діана "})
	require.NoError(t, err)
	assert.Equal(t, "Діана", diana.Name)
	assert.True(t, diana.OwnedBy(env.teacher.ID))

	t.Run("blank inputs", func(t *testing.T) {
		var verr *ValidationError
		_, err := env.svc.AddStudent(env.teacher, models.StudentRequest{Name: "   "})
		assert.ErrorAs(t, err, &verr)
		_, err = env.svc.AddSong(env.teacher, models.SongRequest{Title: "x", Author: " "})
		assert.ErrorAs(t, err, &verr)
		err = env.svc.Assign(env.teacher, models.AssignRequest{StudentID: models.ID(diana.ID)})
		assert.ErrorAs(t, err, &verr)
	})

	song, err := env.svc.AddSong(env.teacher, models.SongRequest{Title: "polly", Author: "Nirvana"})
	require.NoError(t, err)
	assert.Equal(t, 1, song.Difficulty)

	t.Run("duplicate title", func(t *testing.T) {
		_, err := env.svc.AddSong(env.teacher, models.SongRequest{Title: "polly", Author: "someone else"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "title", verr.Field)
	})

	t.Run("assign is idempotent", func(t *testing.T) {
		req := models.AssignRequest{StudentID: models.ID(diana.ID), SongID: models.ID(song.ID)}
		require.NoError(t, env.svc.Assign(env.teacher, req))
		require.NoError(t, env.svc.Assign(env.teacher, req))

		view, err := env.svc.Students(env.teacher)
		require.NoError(t, err)
		assert.Len(t, view.Assigned[diana.ID], 1)
		assert.Len(t, view.Songs, 1)
	})

	t.Run("assign unknown song", func(t *testing.T) {
		err := env.svc.Assign(env.teacher, models.AssignRequest{StudentID: models.ID(diana.ID), SongID: 999})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("parent cannot mutate", func(t *testing.T) {
		_, err := env.svc.AddStudent(env.parent, models.StudentRequest{Name: "Intruder"})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, env.svc.DeleteStudent(env.parent, diana.ID), ErrForbidden)
		assert.ErrorIs(t, env.svc.DeleteSong(env.parent, song.ID), ErrForbidden)
		assert.ErrorIs(t, env.svc.Unassign(env.parent, diana.ID, song.ID), ErrForbidden)

		students, err := env.svc.VisibleStudents(env.teacher)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("link parent checks the account", func(t *testing.T) {
		err := env.svc.LinkParent(env.teacher, diana.ID, models.ParentRequest{Email: "teacher@example.com"})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		err = env.svc.LinkParent(env.teacher, diana.ID, models.ParentRequest{Email: "ghost@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
		err = env.svc.LinkParent(env.teacher, 999, models.ParentRequest{Email: "mom@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete student drops links and attendance", func(t *testing.T) {
		_, err := env.svc.ToggleAttendance(env.teacher, models.ToggleRequest{StudentID: models.ID(diana.ID), Date: "2024-02-10"})
		require.NoError(t, err)
		require.NoError(t, env.svc.DeleteStudent(env.teacher, diana.ID))

		assignments, err := env.svc.Store.ListAssignments()
		require.NoError(t, err)
		assert.Empty(t, assignments)
		n, err := env.svc.Store.CountAttendance(diana.ID, models.NewDate(2024, 2, 1), models.NewDate(2024, 2, 29))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSeedIsIdempotent(t *testing.T) {
	s, err := sqlite.NewSQLiteStore(&store.DBConfig{DSN: ":memory:", MigrationsDir: "../../migrations"})
	require.NoError(t, err)
	svc := New(DefaultConfig(), s, nil)
	defer svc.Close()

	require.NoError(t, svc.Seed())
	require.NoError(t, svc.Seed())

	users, err := s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, users)

	teacher, err := s.GetUserByEmail("teacher@example.com")
	require.NoError(t, err)
	require.NotNil(t, teacher)
	assert.True(t, teacher.CheckPassword("secret"))

	students, err := s.ListStudents()
	require.NoError(t, err)
	assert.Len(t, students, len(seedPupils))
	for _, st := range students {
		assert.True(t, st.OwnedBy(teacher.ID))
	}

	songs, err := s.ListSongs()
	require.NoError(t, err)
	assert.Len(t, songs, len(seedCatalogue))

	expected := 0
	for _, titles := range seedAssignments {
		unique := map[string]bool{}
		for _, title := range titles {
			unique[title] = true
		}
		expected += len(unique)
	}
	assignments, err := s.ListAssignments()
	require.NoError(t, err)
	assert.Len(t, assignments, expected)
}
