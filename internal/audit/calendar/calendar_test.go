package calendar_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/internal/audit/calendar"
	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
)

const doc = `
holidays:
  - date: "2025-12-25"
    name: Christmas Day
  - date: 2025-01-01
    name: New Year's Day
  - date: "2025-12-25"
    name: Duplicate
`

func TestLoad(t *testing.T) {
	c, err := calendar.Load(strings.NewReader(doc))
	require.NoError(t, err)

	holidays := c.Holidays()
	require.Len(t, holidays, 2)
	assert.Equal(t, domain.MustParseDate("2025-01-01"), holidays[0].Date)
	assert.Equal(t, "Christmas Day", holidays[1].Name)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad date", "holidays:\n  - date: 25.12.2025\n"},
		{"unknown field", "holidays:\n  - day: 2025-12-25\n"},
		{"not a list", "holidays: yes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calendar.Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	c, err := calendar.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Holidays())
}

func TestBetween(t *testing.T) {
	c, err := calendar.Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t,
		[]domain.Date{domain.MustParseDate("2025-12-25")},
		c.Between(domain.MustParseDate("2025-12-01"), domain.MustParseDate("2025-12-31")),
	)
	assert.Empty(t, c.Between(domain.MustParseDate("2025-02-01"), domain.MustParseDate("2025-02-28")))
	assert.Empty(t, calendar.Empty().Between(domain.MustParseDate("2025-01-01"), domain.MustParseDate("2025-12-31")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := calendar.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, c.Holidays(), 2)

	c, err = calendar.LoadFile("")
	require.NoError(t, err)
	assert.Empty(t, c.Holidays())

	_, err = calendar.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
