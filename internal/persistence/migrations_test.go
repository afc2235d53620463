package persistence_test

import (
	"os"
	"reflect"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketron/ticketron/internal/api/forms"
)

var maxTag = regexp.MustCompile(`(?:^|,)max=(\d+)`)

// Every form field bounded by max=N must land in a column at least that wide,
// otherwise valid input fails on insert instead of at validation.
func TestMigrations_ColumnWidthsMatchFormLimits(t *testing.T) {
	tests := []struct {
		name      string
		form      any
		migration string
	}{
		{name: "clients", form: forms.ClientForm{}, migration: "migrations/00001_create_catalog.sql"},
		{name: "tickets", form: forms.TicketForm{}, migration: "migrations/00001_create_catalog.sql"},
		{name: "tasks", form: forms.TaskForm{}, migration: "migrations/00003_create_tasks.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := os.ReadFile(tt.migration)
			require.NoError(t, err)
			schema := string(raw)

			typ := reflect.TypeOf(tt.form)
			for i := 0; i < typ.NumField(); i++ {
				field := typ.Field(i)
				m := maxTag.FindStringSubmatch(field.Tag.Get("validate"))
				if m == nil {
					continue
				}
				column := field.Tag.Get("form")
				assert.Regexp(t, regexp.MustCompile(`(?m)^\s*`+column+`\s+VARCHAR\(`+m[1]+`\)`), schema,
					"column %s should be VARCHAR(%s)", column, m[1])
			}
		})
	}
}
