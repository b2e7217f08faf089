package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	var req AssignRequest
	require.NoError(t, json.Unmarshal([]byte(`{"student_id": "3", "song_id": 5}`), &req))
	assert.Equal(t, ID(3), req.StudentID)
	assert.Equal(t, ID(5), req.SongID)

	require.NoError(t, json.Unmarshal([]byte(`{"student_id": null}`), &req))
	assert.Equal(t, ID(0), req.StudentID)
	assert.Error(t, Validate(&req))
}

func TestDifficultyOrDefault(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want int
	}{
		{"absent", `{}`, 1},
		{"number", `{"difficulty": 3}`, 3},
		{"numeric string", `{"difficulty": "4"}`, 4},
		{"garbage", `{"difficulty": "hard"}`, 1},
		{"out of range is kept", `{"difficulty": 9}`, 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req SongRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.want, req.DifficultyOrDefault())
		})
	}
}

func TestRegisterFormValidation(t *testing.T) {
	form := RegisterForm{Email: "  Mom@Example.com ", Password: "secret1"}
	form.Normalize()
	assert.Equal(t, "mom@example.com", form.Email)
	assert.Equal(t, RoleParent, form.Role)
	assert.NoError(t, Validate(&form))

	form.Role = "admin"
	assert.Error(t, Validate(&form))

	form.Role = RoleTeacher
	form.Password = "123"
	assert.Error(t, Validate(&form))
}

func TestDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)

	var scanned Date
	require.NoError(t, scanned.Scan("2024-02-29 00:00:00+00:00"))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.Scan([]byte("2024-03-01")))
	assert.Equal(t, "2024-03-01", scanned.String())

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
