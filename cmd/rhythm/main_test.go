package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoulFlags = []string{
	"--birth-date", "1990-01-15",
	"--birth-time", "14:30",
	"--gender", "male",
	"--place", "Seoul",
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestChartCommand(t *testing.T) {
	out, err := execute(t, append([]string{"chart", "--date", "2026-01-21"}, seoulFlags...)...)
	require.NoError(t, err)

	var ch struct {
		Pillars struct {
			Day struct {
				Stem   string `json:"stem"`
				Branch string `json:"branch"`
			} `json:"day"`
		} `json:"pillars"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &ch))
	assert.Equal(t, "庚", ch.Pillars.Day.Stem)
	assert.Equal(t, "辰", ch.Pillars.Day.Branch)

	out, err = execute(t, append([]string{"chart", "--date", "2026-01-21", "-o", "markdown"}, seoulFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "| Hour | Day | Month | Year |")
}

func TestDayCommand(t *testing.T) {
	out, err := execute(t, append([]string{"day", "--date", "2026-01-21", "--role", "student"}, seoulFlags...)...)
	require.NoError(t, err)

	var doc struct {
		Scale  string `json:"scale"`
		Period string `json:"period"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "day", doc.Scale)
	assert.Equal(t, "2026-01-21", doc.Period)
	assert.Equal(t, "student", doc.Role)
}

func TestRangeCommand_Markdown(t *testing.T) {
	out, err := execute(t, append([]string{"range", "--from", "2026-01-20", "--to", "2026-01-22", "--format", "md"}, seoulFlags...)...)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n---\n"))
	assert.Contains(t, out, "2026-01-20")
	assert.Contains(t, out, "2026-01-22")
}

func TestMonthAndYearCommands(t *testing.T) {
	out, err := execute(t, append([]string{"month", "--year", "2026", "--month", "3"}, seoulFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"period": "2026-03"`)

	out, err = execute(t, append([]string{"year", "--year", "2027"}, seoulFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"period": "2027"`)
}

func TestCommands_Reject(t *testing.T) {
	_, err := execute(t, append([]string{"day", "--date", "2026-01-21", "--format", "yaml"}, seoulFlags...)...)
	assert.Error(t, err)

	_, err = execute(t, append([]string{"day", "--date", "2026-01-21", "--role", "pilot"}, seoulFlags...)...)
	assert.Error(t, err)

	_, err = execute(t, append([]string{"range", "--from", "2026-01-01", "--to", "2026-03-01"}, seoulFlags...)...)
	assert.Error(t, err)

	_, err = execute(t, "day", "--date", "2026-01-21")
	assert.Error(t, err, "birth flags are required")
}
