package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketron/ticketron/internal/domain"
)

func TestTicketForm_Input(t *testing.T) {
	tests := []struct {
		name      string
		form      TicketForm
		wantField string
		wantMsg   string
	}{
		{name: "valid", form: TicketForm{Title: "VPN down", Severity: "h", Status: "3"}},
		{name: "missing title", form: TicketForm{Severity: "m"}, wantField: "title", wantMsg: "This field is required."},
		{name: "bad severity", form: TicketForm{Title: "x", Severity: "q"}, wantField: "severity", wantMsg: "Select a valid choice."},
		{name: "bad status", form: TicketForm{Title: "x", Status: "abc"}, wantField: "status", wantMsg: "Select a valid choice."},
		{name: "bad client", form: TicketForm{Title: "x", Client: "nope"}, wantField: "client", wantMsg: "Select a valid choice."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, errs := tt.form.Input()
			if tt.wantField == "" {
				assert.Empty(t, errs)
				require.NotNil(t, input.StatusID)
				assert.Equal(t, int64(3), *input.StatusID)
				assert.Equal(t, domain.SeverityHigh, input.Severity)
				return
			}
			assert.Equal(t, tt.wantMsg, errs[tt.wantField])
		})
	}
}

func TestClientForm_Input(t *testing.T) {
	input, errs := ClientForm{FirstName: "Ada", Email: "ada@example.com", ClientSince: "12/10/1843"}.Input()
	assert.Empty(t, errs)
	require.NotNil(t, input.ClientSince)
	assert.Equal(t, time.Date(1843, 12, 10, 0, 0, 0, 0, time.UTC), *input.ClientSince)

	_, errs = ClientForm{Email: "not-an-email", ClientSince: "yesterday"}.Input()
	assert.Equal(t, "Enter a valid email address.", errs["email"])
	assert.Equal(t, "Enter a valid date.", errs["client_since"])
}

func TestNewClientForm_DefaultsClientSince(t *testing.T) {
	assert.Equal(t, "2019-01-01", NewClientForm().ClientSince)
}

func TestTaskForm_Checkbox(t *testing.T) {
	input, errs := TaskForm{WorkSummary: "rack server", Done: "on"}.Input()
	assert.Empty(t, errs)
	assert.True(t, input.Done)

	_, errs = TaskForm{}.Input()
	assert.Equal(t, "This field is required.", errs["work_summary"])
}
