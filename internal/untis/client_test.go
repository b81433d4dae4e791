package untis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

const (
	testSchool   = "demo-school"
	testSecret   = "JBSWY3DPEHPK3PXP"
	testSession  = "ABC123"
	qrSession    = "QR456"
	testPersonID = 4711
)

// wednesday in the week of 2024-03-04
var testNow = time.Date(2024, time.March, 6, 7, 15, 0, 0, time.UTC)

type recordedCall struct {
	Method string
	Query  string
	Cookie string
	Params json.RawMessage
}

type fakeUntis struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	calls    []recordedCall
	lessons  []rawLesson
	schools  []map[string]string
	loginErr bool
}

func newFakeUntis(t *testing.T) *fakeUntis {
	t.Helper()

	f := &fakeUntis{t: t}
	f.srv = httptest.NewTLSServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUntis) host() string {
	return strings.TrimPrefix(f.srv.URL, "https://")
}

func (f *fakeUntis) client() *Client {
	return f.clientIn(time.UTC)
}

func (f *fakeUntis) clientIn(loc *time.Location) *Client {
	c := New(Options{
		HTTPClient:        f.srv.Client(),
		SchoolSearchURL:   f.srv.URL + "/ms/schoolquery2",
		RequestsPerMinute: 60000,
		Location:          loc,
	}, zap.NewNop())
	c.now = func() time.Time { return testNow }
	return c
}

func (f *fakeUntis) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	methods := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		methods = append(methods, c.Method)
	}
	return methods
}

func (f *fakeUntis) call(method string) recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.calls {
		if c.Method == method {
			return c
		}
	}
	f.t.Fatalf("no %s call recorded", method)
	return recordedCall{}
}

func (f *fakeUntis) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: req.Method,
		Query:  r.URL.RawQuery,
		Cookie: r.Header.Get("Cookie"),
		Params: req.Params,
	})
	f.mu.Unlock()

	switch req.Method {
	case "authenticate":
		var p map[string]string
		_ = json.Unmarshal(req.Params, &p)
		if f.loginErr || p["password"] != "hunter2" {
			writeRPC(w, nil, map[string]any{"code": -8504, "message": "bad credentials"})
			return
		}
		writeRPC(w, map[string]any{"sessionId": testSession, "personType": elementStudent, "personId": testPersonID}, nil)
	case "getUserData2017":
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: qrSession})
		writeRPC(w, map[string]any{"userData": map[string]any{"elemType": "STUDENT", "elemId": testPersonID}}, nil)
	case "getTimetable":
		if !strings.Contains(r.Header.Get("Cookie"), "JSESSIONID=") {
			writeRPC(w, nil, map[string]any{"code": -8520, "message": "not authenticated"})
			return
		}
		writeRPC(w, f.lessons, nil)
	case "logout":
		writeRPC(w, nil, nil)
	case "searchSchool":
		writeRPC(w, map[string]any{"schools": f.schools}, nil)
	default:
		http.Error(w, "unknown method", http.StatusNotFound)
	}
}

func writeRPC(w http.ResponseWriter, result, rpcErr any) {
	resp := map[string]any{"jsonrpc": "2.0", "id": "1", "result": result}
	if rpcErr != nil {
		resp["error"] = rpcErr
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeUntis) passwordUser() *entity.User {
	return &entity.User{
		ID:         "u1",
		Credential: &entity.PasswordCredential{User: "jdoe", Password: "hunter2"},
		SchoolName: testSchool,
		Server:     f.host(),
	}
}

func (f *fakeUntis) qrUser(t *testing.T) *entity.User {
	t.Helper()

	cred, err := entity.ParseQRCredential("untis://setschool?url=" + f.host() + "&school=" + testSchool + "&user=jdoe&key=" + testSecret)
	require.NoError(t, err)
	return &entity.User{ID: "u2", Credential: cred, SchoolName: cred.School, Server: cred.Server}
}

func TestClient_Fetch(t *testing.T) {
	f := newFakeUntis(t)
	f.lessons = []rawLesson{
		{ID: 3, Date: 20240305, StartTime: 800, EndTime: 845, Subjects: []rawElement{{Name: "M", LongName: "Math"}}, Teachers: []rawElement{{Name: "SMI"}}},
		{ID: 1, Date: 20240304, StartTime: 945, EndTime: 1030, Code: "cancelled", Subjects: []rawElement{{Name: "E", LongName: "English"}}},
		{ID: 2, Date: 20240304, StartTime: 800, EndTime: 845, Subjects: []rawElement{{Name: "BIO"}}, Teachers: []rawElement{{Name: "---"}}},
	}

	snapshot, err := f.client().Fetch(context.Background(), f.passwordUser())

	require.NoError(t, err)
	assert.Equal(t, entity.Snapshot{
		{Subject: "BIO", OccursAt: time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC), Cancelled: true},
		{Subject: "English", OccursAt: time.Date(2024, time.March, 4, 9, 45, 0, 0, time.UTC), Cancelled: true},
		{Subject: "Math", OccursAt: time.Date(2024, time.March, 5, 8, 0, 0, 0, time.UTC), Cancelled: false},
	}, snapshot)

	assert.Equal(t, []string{"authenticate", "getTimetable", "logout"}, f.methods())

	timetable := f.call("getTimetable")
	assert.Equal(t, "school="+testSchool, timetable.Query)
	assert.Contains(t, timetable.Cookie, "JSESSIONID="+testSession)
	assert.Contains(t, timetable.Cookie, `schoolname="_ZGVtby1zY2hvb2w="`)

	var params struct {
		Options struct {
			Element   map[string]int `json:"element"`
			StartDate int            `json:"startDate"`
			EndDate   int            `json:"endDate"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(timetable.Params, &params))
	assert.Equal(t, map[string]int{"id": testPersonID, "type": elementStudent}, params.Options.Element)
	assert.Equal(t, 20240304, params.Options.StartDate)
	assert.Equal(t, 20240310, params.Options.EndDate)
}

func TestClient_Fetch_weekInSchoolTimeZone(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		loc       *time.Location
		wantStart int
		wantEnd   int
	}{
		{
			name:      "sunday night in UTC is already monday in the school zone",
			now:       time.Date(2024, time.March, 10, 23, 30, 0, 0, time.UTC),
			loc:       time.FixedZone("CEST", 2*60*60),
			wantStart: 20240311,
			wantEnd:   20240317,
		},
		{
			name:      "same instant in UTC stays in the current week",
			now:       time.Date(2024, time.March, 10, 23, 30, 0, 0, time.UTC),
			loc:       time.UTC,
			wantStart: 20240304,
			wantEnd:   20240310,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeUntis(t)
			c := f.clientIn(tt.loc)
			c.now = func() time.Time { return tt.now }

			_, err := c.Fetch(context.Background(), f.passwordUser())
			require.NoError(t, err)

			var params struct {
				Options struct {
					StartDate int `json:"startDate"`
					EndDate   int `json:"endDate"`
				} `json:"options"`
			}
			require.NoError(t, json.Unmarshal(f.call("getTimetable").Params, &params))
			assert.Equal(t, tt.wantStart, params.Options.StartDate)
			assert.Equal(t, tt.wantEnd, params.Options.EndDate)
		})
	}
}

func TestClient_Fetch_loginFailure(t *testing.T) {
	f := newFakeUntis(t)
	f.loginErr = true

	_, err := f.client().Fetch(context.Background(), f.passwordUser())

	require.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, []string{"authenticate"}, f.methods())
}

func TestClient_Fetch_serverDown(t *testing.T) {
	f := newFakeUntis(t)
	c := f.client()
	user := f.passwordUser()
	f.srv.Close()

	_, err := c.Fetch(context.Background(), user)

	require.ErrorIs(t, err, domain.ErrFetch)
}

func TestClient_Fetch_qrLogin(t *testing.T) {
	f := newFakeUntis(t)
	f.lessons = []rawLesson{
		{ID: 1, Date: 20240306, StartTime: 1000, Subjects: []rawElement{{LongName: "Art"}}},
	}

	snapshot, err := f.client().Fetch(context.Background(), f.qrUser(t))

	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Art", snapshot[0].Subject)

	assert.Equal(t, []string{"getUserData2017", "getTimetable", "logout"}, f.methods())

	login := f.call("getUserData2017")
	assert.Contains(t, login.Query, "m=getUserData2017")
	assert.Contains(t, login.Query, "school="+testSchool)

	var params []struct {
		Auth struct {
			ClientTime int64  `json:"clientTime"`
			User       string `json:"user"`
			OTP        string `json:"otp"`
		} `json:"auth"`
	}
	require.NoError(t, json.Unmarshal(login.Params, &params))
	require.Len(t, params, 1)

	wantOTP, err := totp.GenerateCode(testSecret, testNow)
	require.NoError(t, err)
	assert.Equal(t, wantOTP, params[0].Auth.OTP)
	assert.Equal(t, "jdoe", params[0].Auth.User)
	assert.Equal(t, testNow.UnixMilli(), params[0].Auth.ClientTime)

	assert.Contains(t, f.call("getTimetable").Cookie, "JSESSIONID="+qrSession)
}

func TestClient_CheckCredentials(t *testing.T) {
	tests := []struct {
		name     string
		loginErr bool
		want     bool
	}{
		{name: "should accept valid credentials", want: true},
		{name: "should reject invalid credentials", loginErr: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeUntis(t)
			f.loginErr = tt.loginErr

			got := f.client().CheckCredentials(context.Background(), f.passwordUser())

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ResolveSchool(t *testing.T) {
	t.Run("should return the first match", func(t *testing.T) {
		f := newFakeUntis(t)
		f.schools = []map[string]string{
			{"server": "korfu.webuntis.com", "loginName": "demo-school", "displayName": "Demo School"},
			{"server": "other.webuntis.com", "loginName": "demo-annex", "displayName": "Demo Annex"},
		}

		school, err := f.client().ResolveSchool(context.Background(), "Demo")

		require.NoError(t, err)
		assert.Equal(t, &entity.School{LoginName: "demo-school", Server: "korfu.webuntis.com"}, school)

		var params []map[string]string
		require.NoError(t, json.Unmarshal(f.call("searchSchool").Params, &params))
		assert.Equal(t, []map[string]string{{"search": "Demo"}}, params)
	})

	t.Run("should fail when nothing matches", func(t *testing.T) {
		f := newFakeUntis(t)

		_, err := f.client().ResolveSchool(context.Background(), "Nowhere")

		require.ErrorIs(t, err, domain.ErrNoSchoolFound)
	})
}
