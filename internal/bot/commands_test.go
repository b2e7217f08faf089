package bot

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
	"github.com/shrimpsizemoose/zhurnal/internal/store/sqlite"
)

func setupTestBot(t *testing.T) (*Bot, *models.Student) {
	s, err := sqlite.NewSQLiteStore(&store.DBConfig{
		DSN:           ":memory:",
		Type:          store.DBTypeSQLite,
		MigrationsDir: "../../migrations",
	})
	require.NoError(t, err)

	config := app.DefaultConfig()
	config.Bot.AdminIDs = []int64{42}
	svc := app.New(config, s, nil)
	t.Cleanup(func() { svc.Close() })

	b := newBot(svc)
	student := &models.Student{Name: "Діана"}
	require.NoError(t, svc.Store.CreateStudent(student))
	return b, student
}

func TestAdmins(t *testing.T) {
	b, _ := setupTestBot(t)
	assert.True(t, b.admins[42])
	assert.False(t, b.admins[7])
}

func TestMarkAndMonth(t *testing.T) {
	b, student := setupTestBot(t)
	sid := models.ID(student.ID)

	text := b.reply("mark", []string{itoa(sid), "2024-02-10"})
	assert.Contains(t, text, "✅")
	assert.Contains(t, text, "За місяць: 130")

	text = b.reply("month", []string{"2024-02"})
	assert.Contains(t, text, "Рахунки за 2024-02")
	assert.Contains(t, text, "Діана: 1 занять, 130")
	assert.Contains(t, text, "Разом: 130")

	text = b.reply("mark", []string{itoa(sid), "2024-02-10"})
	assert.Contains(t, text, "❌")

	text = b.reply("month", []string{"2024-02"})
	assert.NotContains(t, text, "Діана")
	assert.Contains(t, text, "Разом: 0")
}

func TestCommandErrors(t *testing.T) {
	b, _ := setupTestBot(t)

	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"unknown command", "lab", nil, "Невідома команда"},
		{"mark without args", "mark", nil, "використання"},
		{"mark with bad id", "mark", []string{"x", "2024-02-10"}, "некоректний id"},
		{"mark with bad date", "mark", []string{"1", "2024-13-01"}, "Помилка"},
		{"mark unknown student", "mark", []string{"999", "2024-02-10"}, "Помилка"},
		{"month with bad arg", "month", []string{"February"}, "некоректний місяць"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, b.reply(tt.cmd, tt.args), tt.want)
		})
	}
}

func TestStudentsList(t *testing.T) {
	b, student := setupTestBot(t)
	text := b.reply("students", nil)
	assert.Contains(t, text, itoa(models.ID(student.ID))+". Діана")
	assert.Contains(t, b.reply("help", nil), "/mark")
}

func itoa(id models.ID) string {
	return strconv.FormatInt(int64(id), 10)
}
