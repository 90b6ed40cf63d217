package state

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/campus-events/tui/internal/client"
	"github.com/campus-events/tui/internal/entities"
	"github.com/campus-events/tui/internal/session"
	"github.com/campus-events/tui/internal/stubapi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api     *stubapi.Server
	backend *session.MemoryBackend
	store   *session.Store
	state   *State
	url     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := stubapi.New(stubapi.WithSecret("test-secret"))
	require.NoError(t, api.AddUser("Ana", "a@b.com", "secret", stubapi.RoleAdmin))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	h := &harness{api: api, backend: session.NewMemoryBackend(), url: srv.URL}
	h.store, h.state = build(srv.URL, h.backend)
	return h
}

func build(url string, backend session.Backend) (*session.Store, *State) {
	c := client.NewHTTPClient(url)
	store := session.NewStore(backend, zerolog.Nop())
	return store, New(c, store, entities.NewSynchronizer(c, zerolog.Nop()), zerolog.Nop())
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.state.UpdateLogin(func(f *LoginForm) {
		f.Email = "a@b.com"
		f.Password = "secret"
	})
	require.NoError(t, h.state.Login(context.Background()))
	h.api.ResetRequests()
}

func id(n int64) client.ID {
	return client.ID(strconv.FormatInt(n, 10))
}

func TestLoginScenario(t *testing.T) {
	var (
		mu   sync.Mutex
		auth []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in client.LoginRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "a@b.com" || in.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"token":"t1","user":{"id":1,"name":"Ana","role":"ADMIN"}}`)
	})
	list := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = append(auth, r.URL.Path+" "+r.Header.Get("Authorization"))
		mu.Unlock()
		io.WriteString(w, `[]`)
	}
	mux.HandleFunc("GET /students", list)
	mux.HandleFunc("GET /events", list)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	backend := session.NewMemoryBackend()
	_, st := build(srv.URL, backend)
	st.UpdateLogin(func(f *LoginForm) {
		f.Email = "a@b.com"
		f.Password = "secret"
	})
	require.NoError(t, st.Login(context.Background()))

	raw, err := backend.Read(session.StorageKey)
	require.NoError(t, err)
	persisted, err := session.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "t1", persisted.Token)
	require.Equal(t, "Ana", persisted.User.Name)

	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"/students Bearer t1", "/events Bearer t1"}, auth)

	f := st.Frame()
	require.True(t, f.SignedIn)
	require.True(t, f.IsAdmin())
	require.Empty(t, f.Login.Password)
	require.False(t, f.Status.Pending)
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	h.state.UpdateLogin(func(f *LoginForm) {
		f.Email = "a@b.com"
		f.Password = "wrong"
	})

	err := h.state.Login(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)

	f := h.state.Frame()
	require.False(t, f.SignedIn)
	require.Equal(t, "Invalid credentials", f.Status.Err)
	require.False(t, f.Status.Pending)
	_, err = h.backend.Read(session.StorageKey)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	h.state.SetAuthMode(ModeRegister)

	h.state.UpdateRegister(func(f *RegisterForm) {
		f.Email = "bad"
		f.Password = "123"
	})
	require.Error(t, h.state.Register(context.Background()))
	require.Equal(t,
		"name should not be empty, email must be an email, password must be longer than or equal to 6 characters",
		h.state.Frame().Status.Err)

	h.state.UpdateRegister(func(f *RegisterForm) {
		f.Name = "Bia"
		f.Email = "bia@b.com"
		f.Password = "secret"
	})
	require.NoError(t, h.state.Register(context.Background()))

	f := h.state.Frame()
	require.Equal(t, ModeLogin, f.Mode)
	require.Equal(t, "bia@b.com", f.Login.Email)
	require.Empty(t, f.Login.Password)
	require.Equal(t, NoticeRegistered, f.Status.Notice)
	require.Empty(t, f.Status.Err)
	require.False(t, f.SignedIn)
}

func TestSetAuthModeClearsMessages(t *testing.T) {
	h := newHarness(t)
	h.state.UpdateLogin(func(f *LoginForm) { f.Email = "nobody@b.com" })
	h.state.Login(context.Background())
	require.NotEmpty(t, h.state.Frame().Status.Err)

	h.state.SetAuthMode(ModeRegister)
	f := h.state.Frame()
	require.Equal(t, ModeRegister, f.Mode)
	require.Empty(t, f.Status.Err)
	require.Empty(t, f.Status.Notice)
}

func TestResumeRestoresAndLoads(t *testing.T) {
	h := newHarness(t)
	h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	h.signIn(t)

	// A second client over the same storage simulates a restart.
	_, restarted := build(h.url, h.backend)
	require.True(t, restarted.Resume(context.Background()))

	f := restarted.Frame()
	require.True(t, f.SignedIn)
	require.Len(t, f.Students, 1)
	require.Equal(t, "Bia", f.Students[0].FirstName)
}

func TestResumeWithCorruptRecord(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.backend.Write(session.StorageKey, []byte(`{"user":null}`)))
	require.False(t, h.state.Resume(context.Background()))
	require.False(t, h.state.Frame().SignedIn)
	require.Empty(t, h.api.Requests())
}

func TestCreateStudentShowsServerTruth(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.state.UpdateStudentForm(func(f *StudentForm) {
		f.FirstName = "Bia"
		f.LastName = "Lima"
		f.Email = "BIA@B.COM"
	})
	require.NoError(t, h.state.SubmitStudent(context.Background()))

	f := h.state.Frame()
	// The server lowercases emails; the snapshot must show its version.
	require.Len(t, f.Students, 1)
	require.Equal(t, "bia@b.com", f.Students[0].Email)
	require.Equal(t, h.api.Students()[0].ID, mustInt(t, f.Students[0].ID))
	require.Equal(t, NoticeStudentCreated, f.Status.Notice)
	require.Equal(t, StudentForm{}, f.StudentEdit.Form)
	require.False(t, f.StudentEdit.Editing())

	var methods []string
	for _, r := range h.api.Requests() {
		methods = append(methods, r.Method+" "+r.Path)
	}
	require.Equal(t, "POST /students", methods[0])
	require.ElementsMatch(t, []string{"GET /students", "GET /events"}, methods[1:])
}

func TestEditStudentScenario(t *testing.T) {
	h := newHarness(t)
	// Ids are shared across kinds; the admin took id 1.
	for i := 0; i < 3; i++ {
		h.api.SeedStudent("Filler", strconv.Itoa(i), "f"+strconv.Itoa(i)+"@b.com")
	}
	target := h.api.SeedStudent("Caio", "Souza", "caio@b.com")
	require.Equal(t, int64(5), target.ID)
	h.signIn(t)

	require.NoError(t, h.state.EditStudent("5"))
	f := h.state.Frame()
	require.Equal(t, TabStudents, f.Tab)
	require.Equal(t, client.ID("5"), f.StudentEdit.Target)
	require.Equal(t, StudentForm{FirstName: "Caio", LastName: "Souza", Email: "caio@b.com"}, f.StudentEdit.Form)

	h.state.UpdateStudentForm(func(f *StudentForm) { f.LastName = "Pereira" })
	require.NoError(t, h.state.SubmitStudent(context.Background()))

	reqs := h.api.Requests()
	require.Equal(t, http.MethodPatch, reqs[0].Method)
	require.Equal(t, "/students/5", reqs[0].Path)
	require.JSONEq(t, `{"firstName":"Caio","lastName":"Pereira","email":"caio@b.com"}`, reqs[0].Body)

	f = h.state.Frame()
	require.False(t, f.StudentEdit.Editing())
	require.Equal(t, StudentForm{}, f.StudentEdit.Form)
	require.Equal(t, NoticeStudentUpdated, f.Status.Notice)
	var found bool
	for _, st := range f.Students {
		if st.ID == "5" {
			found = true
			require.Equal(t, "Pereira", st.LastName)
		}
	}
	require.True(t, found)
}

func TestEditUnknownRecord(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	require.ErrorIs(t, h.state.EditStudent("404"), ErrUnknownRecord)
	require.ErrorIs(t, h.state.EditEvent("404"), ErrUnknownRecord)
	require.False(t, h.state.Frame().StudentEdit.Editing())
}

func TestCancelStudentEditResetsForm(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	h.signIn(t)

	require.NoError(t, h.state.EditStudent(id(st.ID)))
	h.state.CancelStudentEdit()
	f := h.state.Frame()
	require.False(t, f.StudentEdit.Editing())
	require.Equal(t, StudentForm{}, f.StudentEdit.Form)
}

func TestEventCreateAndEditDates(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.state.UpdateEventForm(func(f *EventForm) {
		f.Title = "Welcome talk"
		f.Description = "**Bring** a laptop"
		f.Date = "2026-03-01T10:00"
		f.Location = "Room 101"
	})
	require.NoError(t, h.state.SubmitEvent(context.Background()))
	require.JSONEq(t,
		`{"title":"Welcome talk","description":"**Bring** a laptop","date":"2026-03-01T10:00:00Z","location":"Room 101"}`,
		h.api.Requests()[0].Body)

	f := h.state.Frame()
	require.Len(t, f.Events, 1)
	require.Equal(t, client.EventScheduled, f.Events[0].Status)
	require.Equal(t, NoticeEventCreated, f.Status.Notice)

	require.NoError(t, h.state.EditEvent(f.Events[0].ID))
	f = h.state.Frame()
	require.Equal(t, TabEvents, f.Tab)
	require.Equal(t, "2026-03-01T10:00", f.EventEdit.Form.Date)
	require.Equal(t, "Room 101", f.EventEdit.Form.Location)

	h.api.ResetRequests()
	h.state.UpdateEventForm(func(f *EventForm) { f.Date = "tomorrow" })
	err := h.state.SubmitEvent(context.Background())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Empty(t, h.api.Requests())
	require.True(t, h.state.Frame().EventEdit.Editing(), "a rejected submit keeps the edit target")
}

func TestCancelEventScenario(t *testing.T) {
	h := newHarness(t)
	ev := h.api.SeedEvent("Old talk", "2026-01-01T10:00:00.000Z", "", stubapi.StatusCanceled)
	h.signIn(t)

	err := h.state.CancelEvent(context.Background(), id(ev.ID))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Empty(t, h.api.Requests())
	require.Equal(t, MsgEventAlreadyCanceled, h.state.Frame().Status.Err)
}

func TestCancelEventRefreshes(t *testing.T) {
	h := newHarness(t)
	ev := h.api.SeedEvent("Talk", "2026-01-01T10:00:00.000Z", "", "")
	h.signIn(t)
	require.NoError(t, h.state.EditEvent(id(ev.ID)))

	require.NoError(t, h.state.CancelEvent(context.Background(), id(ev.ID)))
	f := h.state.Frame()
	require.Equal(t, client.EventCanceled, f.Events[0].Status)
	require.Equal(t, NoticeEventCanceled, f.Status.Notice)
	require.False(t, f.EventEdit.Editing())
}

func TestSubscribeRequiresSelection(t *testing.T) {
	h := newHarness(t)
	ev := h.api.SeedEvent("Talk", "2026-01-01T10:00:00.000Z", "", "")
	h.signIn(t)

	err := h.state.Subscribe(context.Background(), id(ev.ID))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, MsgSelectStudentSubscribe, h.state.Frame().Status.Err)

	err = h.state.Unsubscribe(context.Background(), id(ev.ID))
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, MsgSelectStudentUnsubscribe, h.state.Frame().Status.Err)

	require.Empty(t, h.api.Requests())
}

func TestSubscribeCanceledEventRejected(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	ev := h.api.SeedEvent("Old talk", "2026-01-01T10:00:00.000Z", "", stubapi.StatusCanceled)
	h.signIn(t)

	h.state.SelectStudent(id(ev.ID), id(st.ID))
	require.Error(t, h.state.Subscribe(context.Background(), id(ev.ID)))
	require.Equal(t, MsgEventCanceledNoSubscribe, h.state.Frame().Status.Err)
	require.Empty(t, h.api.Requests())
}

func TestSubscribeUnsubscribeKeepSelection(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	ev := h.api.SeedEvent("Talk", "2026-01-01T10:00:00.000Z", "", "")
	h.signIn(t)

	h.state.SelectStudent(id(ev.ID), id(st.ID))
	require.NoError(t, h.state.Subscribe(context.Background(), id(ev.ID)))
	require.True(t, h.api.Subscribed(ev.ID, st.ID))
	require.Equal(t, NoticeSubscribed, h.state.Frame().Status.Notice)

	// No refresh follows a subscription.
	reqs := h.api.Requests()
	require.Len(t, reqs, 1)
	require.Equal(t, "/events/"+strconv.FormatInt(ev.ID, 10)+"/subscribe/"+strconv.FormatInt(st.ID, 10), reqs[0].Path)

	selected, ok := h.state.SelectedStudent(id(ev.ID))
	require.True(t, ok)
	require.Equal(t, id(st.ID), selected)

	require.NoError(t, h.state.Unsubscribe(context.Background(), id(ev.ID)))
	require.False(t, h.api.Subscribed(ev.ID, st.ID))
	require.Equal(t, NoticeUnsubscribed, h.state.Frame().Status.Notice)

	err := h.state.Unsubscribe(context.Background(), id(ev.ID))
	require.Error(t, err)
	require.Equal(t, "Subscription not found", h.state.Frame().Status.Err)
}

func TestMutationFailureLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	h.signIn(t)
	require.NoError(t, h.state.Refresh(context.Background()))
	require.NoError(t, h.state.EditStudent(id(st.ID)))
	before := h.state.Frame()
	h.api.ResetRequests()

	err := h.state.DeleteStudent(context.Background(), "99")
	require.Error(t, err)

	f := h.state.Frame()
	require.Equal(t, "Student 99 not found", f.Status.Err)
	require.Empty(t, f.Status.Notice)
	require.Equal(t, before.Students, f.Students)
	require.Equal(t, before.StudentEdit, f.StudentEdit)
	require.Len(t, h.api.Requests(), 1, "no refresh after a failed write")
}

func TestRefreshFailureAfterWrite(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.api.Fail(http.MethodGet, "/events", http.StatusInternalServerError, `{"message":["events unavailable","try later"]}`)

	h.state.UpdateStudentForm(func(f *StudentForm) {
		f.FirstName = "Bia"
		f.LastName = "Lima"
		f.Email = "bia@b.com"
	})
	err := h.state.SubmitStudent(context.Background())
	require.Error(t, err)

	f := h.state.Frame()
	require.Len(t, h.api.Students(), 1, "the write reached the server")
	require.Empty(t, f.Students, "a half-fetched snapshot is never committed")
	require.Equal(t, "events unavailable, try later", f.Status.Err)
	require.Equal(t, NoticeStudentCreated, f.Status.Notice, "the write is still reported")
	require.False(t, f.StudentEdit.Editing())
	require.False(t, f.Loading)

	h.api.Recover()
	require.NoError(t, h.state.Refresh(context.Background()))
	f = h.state.Frame()
	require.Len(t, f.Students, 1)
	require.Empty(t, f.Status.Err)
}

func TestDeleteStudentClearsEditAndSelections(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	other := h.api.SeedStudent("Caio", "Souza", "caio@b.com")
	ev := h.api.SeedEvent("Talk", "2026-01-01T10:00:00.000Z", "", "")
	ev2 := h.api.SeedEvent("Workshop", "2026-01-02T10:00:00.000Z", "", "")
	h.signIn(t)

	require.NoError(t, h.state.EditStudent(id(st.ID)))
	h.state.SelectStudent(id(ev.ID), id(st.ID))
	h.state.SelectStudent(id(ev2.ID), id(other.ID))

	require.NoError(t, h.state.DeleteStudent(context.Background(), id(st.ID)))
	f := h.state.Frame()
	require.False(t, f.StudentEdit.Editing())
	require.Len(t, f.Students, 1)
	require.Equal(t, map[client.ID]client.ID{id(ev2.ID): id(other.ID)}, f.Selection)
	require.Equal(t, NoticeStudentDeleted, f.Status.Notice)
}

func TestBusyGuard(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	h.state.mu.Lock()
	h.state.status.Pending = true
	h.state.mu.Unlock()

	require.ErrorIs(t, h.state.SubmitStudent(context.Background()), ErrBusy)
	require.ErrorIs(t, h.state.DeleteStudent(context.Background(), "1"), ErrBusy)
	require.ErrorIs(t, h.state.Login(context.Background()), ErrBusy)
	require.Empty(t, h.api.Requests())
}

func TestCommandsRequireSession(t *testing.T) {
	h := newHarness(t)
	require.ErrorIs(t, h.state.DeleteStudent(context.Background(), "1"), ErrSignedOut)
	require.Equal(t, MsgSignInFirst, h.state.Frame().Status.Err)
	require.NoError(t, h.state.Refresh(context.Background()))
	require.Empty(t, h.api.Requests())
}

func TestLogoutResetsState(t *testing.T) {
	h := newHarness(t)
	st := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	ev := h.api.SeedEvent("Talk", "2026-01-01T10:00:00.000Z", "", "")
	h.signIn(t)

	require.NoError(t, h.state.EditStudent(id(st.ID)))
	require.NoError(t, h.state.EditEvent(id(ev.ID)))
	h.state.SelectStudent(id(ev.ID), id(st.ID))
	h.state.SetTab(TabStudents)
	h.state.Subscribe(context.Background(), "404")

	require.NoError(t, h.state.Logout())
	once := h.state.Frame()
	require.NoError(t, h.state.Logout())
	twice := h.state.Frame()

	require.Equal(t, once, twice)
	require.False(t, once.SignedIn)
	require.Empty(t, once.Students)
	require.Empty(t, once.Events)
	require.False(t, once.StudentEdit.Editing())
	require.False(t, once.EventEdit.Editing())
	require.Equal(t, StudentForm{}, once.StudentEdit.Form)
	require.Equal(t, EventForm{}, once.EventEdit.Form)
	require.Empty(t, once.Selection)
	require.Equal(t, TabEvents, once.Tab)
	require.Equal(t, Status{}, once.Status)

	_, err := h.backend.Read(session.StorageKey)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSelectionIsPerEvent(t *testing.T) {
	h := newHarness(t)
	a := h.api.SeedStudent("Bia", "Lima", "bia@b.com")
	b := h.api.SeedStudent("Caio", "Souza", "caio@b.com")
	h.signIn(t)
	require.NoError(t, h.state.Refresh(context.Background()))

	h.state.SelectStudent("e1", id(a.ID))
	h.state.SelectStudent("e2", id(b.ID))
	got, _ := h.state.SelectedStudent("e1")
	require.Equal(t, id(a.ID), got)

	require.Equal(t, id(b.ID), h.state.CycleSelection("e1", 1))
	require.Equal(t, client.ID(""), h.state.CycleSelection("e1", 1))
	_, ok := h.state.SelectedStudent("e1")
	require.False(t, ok)
	require.Equal(t, id(b.ID), h.state.CycleSelection("e1", -1))

	got, _ = h.state.SelectedStudent("e2")
	require.Equal(t, id(b.ID), got, "other events are untouched")

	h.state.SelectStudent("e2", "")
	_, ok = h.state.SelectedStudent("e2")
	require.False(t, ok)
}

func mustInt(t *testing.T, id client.ID) int64 {
	t.Helper()
	n, err := strconv.ParseInt(string(id), 10, 64)
	require.NoError(t, err)
	return n
}
