package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ticketron/ticketron/internal/auth"
	"github.com/ticketron/ticketron/internal/config"
	"github.com/ticketron/ticketron/internal/domain"
	"github.com/ticketron/ticketron/internal/events"
	"github.com/ticketron/ticketron/internal/repository"
	"github.com/ticketron/ticketron/internal/repository/memory"
	"github.com/ticketron/ticketron/internal/service"
)

const testPassword = "correct-horse-battery"

type harness struct {
	app      *fiber.App
	cfg      *config.Config
	store    *repository.Store
	services *service.Services
	today    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	cfg := &config.Config{
		App:     config.AppConfig{Name: "ticketron-test", Version: "test"},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", CookieName: "ticketron_auth", LoginPath: "/accounts/login/"},
		Session: config.SessionConfig{CookieName: "ticketron_session"},
	}
	store := memory.NewStore()
	enforcer, err := auth.NewEnforcer(store.Grants, logger)
	require.NoError(t, err)

	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	services := service.NewServices(service.Options{
		Store:      store,
		Dispatcher: events.NewInMemoryDispatcher(logger),
		Clock:      service.Clock{Now: func() time.Time { return now }},
		BcryptCost: bcrypt.MinCost,
		Reloader:   enforcer,
		Logger:     logger,
	})

	app := NewApp(AppDependencies{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Services: services,
		Checker:  enforcer,
	})
	return &harness{app: app, cfg: cfg, store: store, services: services, today: domain.DateOf(now)}
}

func (h *harness) createUser(t *testing.T, username string, canMark bool) *domain.User {
	t.Helper()
	ctx := context.Background()
	user, err := h.services.Users.Create(ctx, service.CreateUserInput{Username: username, Password: testPassword})
	require.NoError(t, err)
	if canMark {
		require.NoError(t, h.services.Permissions.GrantUser(ctx, username, domain.PermCanMarkReturned))
	}
	return user
}

func (h *harness) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	resp := h.do(t, fiber.MethodPost, "/accounts/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == h.cfg.Auth.CookieName {
			return cookie
		}
	}
	t.Fatalf("login did not set %s", h.cfg.Auth.CookieName)
	return nil
}

func (h *harness) do(t *testing.T, method, target string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestHealthLive(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, fiber.MethodGet, "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"alive"`)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, fiber.MethodGet, "/nowhere/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "404 Not Found")
}

func TestClientListPagination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 13; i++ {
		_, err := h.services.Clients.Create(ctx, nil, service.ClientInput{LastName: fmt.Sprintf("Client%02d", i)})
		require.NoError(t, err)
	}

	resp := h.do(t, fiber.MethodGet, "/authors/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Page 1 of 2.")
	assert.Equal(t, 10, strings.Count(body, `<a href="/client/`))

	resp = h.do(t, fiber.MethodGet, "/authors/?page=last", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = readBody(t, resp)
	assert.Contains(t, body, "Page 2 of 2.")
	assert.Equal(t, 3, strings.Count(body, `<a href="/client/`))

	for _, page := range []string{"3", "0", "abc"} {
		resp = h.do(t, fiber.MethodGet, "/authors/?page="+page, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "page=%s", page)
	}
}

func TestEmptyTicketListIsOnePage(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, fiber.MethodGet, "/tickets/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "There are no tickets.")
	assert.NotContains(t, body, "pagination")
}

func TestTicketDetailMalformedIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, fiber.MethodGet, "/ticket/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGatedRoutesRedirectAnonymousToLogin(t *testing.T) {
	const ticketID = "0b9e4a57-3f55-4c1e-9d7a-6c2f1f0e8a11"
	const clientID = "5f3c2d18-7a41-4b6e-8c90-1d2e3f4a5b6c"

	tests := []struct {
		method string
		target string
		next   string
	}{
		{fiber.MethodGet, "/borrowed/", "/borrowed/"},
		{fiber.MethodGet, "/borrowed/?page=2", "/borrowed/%3Fpage%3D2"},
		{fiber.MethodGet, "/mytickets/", "/mytickets/"},
		{fiber.MethodGet, "/ticket/7/renew/", "/ticket/7/renew/"},
		{fiber.MethodPost, "/ticket/7/renew/", "/ticket/7/renew/"},
		{fiber.MethodGet, "/ticket/create/", "/ticket/create/"},
		{fiber.MethodGet, "/ticket/" + ticketID + "/update/", "/ticket/" + ticketID + "/update/"},
		{fiber.MethodGet, "/ticket/" + ticketID + "/delete/", "/ticket/" + ticketID + "/delete/"},
		{fiber.MethodGet, "/client/create/", "/client/create/"},
		{fiber.MethodGet, "/client/" + clientID + "/update/", "/client/" + clientID + "/update/"},
		{fiber.MethodPost, "/client/" + clientID + "/delete/", "/client/" + clientID + "/delete/"},
		{fiber.MethodGet, "/admin/", "/admin/"},
	}

	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp := h.do(t, tt.method, tt.target, nil)
			assert.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, "/accounts/login/?next="+tt.next, resp.Header.Get(fiber.HeaderLocation))
		})
	}
}

func TestBorrowedForbiddenWithoutPermission(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "reader", false)
	cookie := h.login(t, "reader")

	resp := h.do(t, fiber.MethodGet, "/borrowed/", nil, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMyTicketsListsOwnOpenTasks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.createUser(t, "worker", false)
	other := h.createUser(t, "other", false)
	ticket, err := h.services.Tickets.Create(ctx, nil, service.TicketInput{Title: "Broken printer", Severity: domain.SeverityHigh})
	require.NoError(t, err)

	day := h.today
	_, err = h.services.Tasks.Create(ctx, service.TaskInput{TicketID: &ticket.ID, WorkSummary: "mine", ScheduledDay: &day, EmployeeID: &user.ID})
	require.NoError(t, err)
	_, err = h.services.Tasks.Create(ctx, service.TaskInput{TicketID: &ticket.ID, WorkSummary: "theirs", ScheduledDay: &day, EmployeeID: &other.ID})
	require.NoError(t, err)
	_, err = h.services.Tasks.Create(ctx, service.TaskInput{TicketID: &ticket.ID, WorkSummary: "finished", ScheduledDay: &day, EmployeeID: &user.ID, Done: true})
	require.NoError(t, err)

	resp := h.do(t, fiber.MethodGet, "/mytickets/", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	cookie := h.login(t, "worker")
	resp = h.do(t, fiber.MethodGet, "/mytickets/", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(readBody(t, resp), "Broken printer"))
}

func TestRenewTask(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "librarian", true)
	cookie := h.login(t, "librarian")

	scheduled := h.today.AddDate(0, 0, -2)
	task, err := h.services.Tasks.Create(ctx, service.TaskInput{WorkSummary: "swap drive", ScheduledDay: &scheduled})
	require.NoError(t, err)
	path := fmt.Sprintf("/ticket/%d/renew/", task.ID)

	resp := h.do(t, fiber.MethodGet, path, nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "2024-03-31")

	t.Run("past date", func(t *testing.T) {
		resp := h.do(t, fiber.MethodPost, path, url.Values{"renewal_date": {"2024-03-09"}}, cookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), service.MsgRenewalInPast)
	})

	t.Run("beyond four weeks", func(t *testing.T) {
		resp := h.do(t, fiber.MethodPost, path, url.Values{"renewal_date": {"2024-04-08"}}, cookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), service.MsgRenewalTooFar)
	})

	t.Run("valid date", func(t *testing.T) {
		resp := h.do(t, fiber.MethodPost, path, url.Values{"renewal_date": {"2024-04-07"}}, cookie)
		require.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/borrowed/", resp.Header.Get(fiber.HeaderLocation))

		stored, err := h.store.Tasks.GetByID(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, "2024-04-07", domain.FormatDate(stored.ScheduledDay))
	})

	t.Run("unknown task", func(t *testing.T) {
		for _, id := range []string{"9999", "abc"} {
			resp := h.do(t, fiber.MethodGet, "/ticket/"+id+"/renew/", nil, cookie)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, id)
		}
	})
}

func TestCreateTicketRequiresTitle(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "editor", true)
	cookie := h.login(t, "editor")

	resp := h.do(t, fiber.MethodPost, "/ticket/create/", url.Values{"title": {""}, "severity": {"m"}}, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "This field is required.")

	resp = h.do(t, fiber.MethodPost, "/ticket/create/", url.Values{"title": {"Outage"}, "severity": {"h"}}, cookie)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderLocation), "/ticket/"))
}

func TestDeleteClientKeepsTickets(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "editor", true)
	cookie := h.login(t, "editor")

	client, err := h.services.Clients.Create(ctx, nil, service.ClientInput{CompanyName: "Acme"})
	require.NoError(t, err)
	ticket, err := h.services.Tickets.Create(ctx, nil, service.TicketInput{Title: "Dead fax", Severity: domain.SeverityLow, ClientID: &client.ID})
	require.NoError(t, err)

	resp := h.do(t, fiber.MethodGet, "/client/"+client.ID+"/delete/", nil, cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = h.do(t, fiber.MethodPost, "/client/"+client.ID+"/delete/", url.Values{}, cookie)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/authors/", resp.Header.Get(fiber.HeaderLocation))

	stored, err := h.store.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ClientID)
}

func TestIndexCountsVisits(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, fiber.MethodGet, "/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "visited this page 0 times.")

	var session *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == h.cfg.Session.CookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)

	resp = h.do(t, fiber.MethodGet, "/", nil, session)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "visited this page 1 time.")

	resp = h.do(t, fiber.MethodGet, "/", nil, session)
	assert.Contains(t, readBody(t, resp), "visited this page 2 times.")
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "alice", false)

	resp := h.do(t, fiber.MethodGet, "/accounts/login/?next=/mytickets/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="/mytickets/"`)

	resp = h.do(t, fiber.MethodPost, "/accounts/login/", url.Values{"username": {"alice"}, "password": {"wrong-password"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please enter a correct username and password.")

	resp = h.do(t, fiber.MethodPost, "/accounts/login/", url.Values{"username": {"alice"}, "password": {testPassword}, "next": {"/mytickets/"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/mytickets/", resp.Header.Get(fiber.HeaderLocation))

	resp = h.do(t, fiber.MethodPost, "/accounts/login/", url.Values{"username": {"alice"}, "password": {testPassword}, "next": {"//evil.example"}})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))
}

func TestAdminRequiresStaff(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "plain", true)
	_, err := h.services.Users.Create(ctx, service.CreateUserInput{Username: "root", Password: testPassword, IsSuperuser: true})
	require.NoError(t, err)

	resp := h.do(t, fiber.MethodGet, "/admin/", nil, h.login(t, "plain"))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	root := h.login(t, "root")
	resp = h.do(t, fiber.MethodGet, "/admin/", nil, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Site administration")

	resp = h.do(t, fiber.MethodPost, "/admin/statuses/add/", url.Values{"name": {"New"}}, root)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	statuses, err := h.store.Statuses.List(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "New", statuses[0].Name)
}

func TestAdminTaskFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.services.Users.Create(ctx, service.CreateUserInput{Username: "root", Password: testPassword, IsSuperuser: true})
	require.NoError(t, err)
	root := h.login(t, "root")

	today := h.today
	lastYear := h.today.AddDate(-1, 0, 0)
	_, err = h.services.Tasks.Create(ctx, service.TaskInput{WorkSummary: "current", ScheduledDay: &today})
	require.NoError(t, err)
	_, err = h.services.Tasks.Create(ctx, service.TaskInput{WorkSummary: "ancient", ScheduledDay: &lastYear, Done: true})
	require.NoError(t, err)

	resp := h.do(t, fiber.MethodGet, "/admin/tasks/?done=no", nil, root)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "2024-03-10")
	assert.NotContains(t, body, "2023-03-10")

	resp = h.do(t, fiber.MethodGet, "/admin/tasks/?scheduled=today", nil, root)
	body = readBody(t, resp)
	assert.Contains(t, body, "2024-03-10")
	assert.NotContains(t, body, "2023-03-10")
}
