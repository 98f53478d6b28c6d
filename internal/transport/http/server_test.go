package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"breate/internal/config"
	"breate/internal/domain/models"
	"breate/internal/lib/hasher"
	"breate/internal/lib/logger/handlers/slogdiscard"
	appmw "breate/internal/middleware"
	"breate/internal/services/auth"
	catalogsvc "breate/internal/services/catalog_service"
	coalitionsvc "breate/internal/services/coalition_service"
	collabsvc "breate/internal/services/collab_service"
	projectsvc "breate/internal/services/project_service"
	tokensvc "breate/internal/services/token_service"
	usersvc "breate/internal/services/user_service"
	"breate/internal/storage"
	httprouters "breate/internal/transport/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var authCfg = config.AuthConfig{
	AccessSecret:  "access-secret",
	RefreshSecret: "refresh-secret",
	AccessTTL:     15 * time.Minute,
	RefreshTTL:    7 * 24 * time.Hour,
}

type RoutersSuite struct {
	suite.Suite

	e          *echo.Echo
	now        time.Time
	users      *memUsers
	revoked    *memRevocations
	catalog    *mockCatalog
	coalitions *mockCoalitions
	projects   *mockProjects
	collab     *mockCollab
	db         *mockDB
}

func TestRoutersSuite(t *testing.T) {
	suite.Run(t, new(RoutersSuite))
}

func (s *RoutersSuite) SetupTest() {
	log := slogdiscard.NewDiscardLogger()

	s.now = time.Now().Truncate(time.Second)
	s.users = newMemUsers()
	s.revoked = &memRevocations{ids: map[string]bool{}}
	s.catalog = new(mockCatalog)
	s.coalitions = new(mockCoalitions)
	s.projects = new(mockProjects)
	s.collab = new(mockCollab)
	s.db = new(mockDB)

	tokens := tokensvc.NewTokenService(authCfg, tokensvc.WithClock(func() time.Time { return s.now }))
	pwHasher := hasher.New(config.HasherConfig{Memory: 64, Iterations: 1, Parallelism: 1})
	authService := auth.New(log, s.users, s.users, pwHasher, tokens, s.revoked)

	routers := httprouters.NewRouter(log,
		httprouters.CookieConfig{MaxAge: authCfg.RefreshTTL},
		httprouters.Services{
			Auth:       authService,
			Users:      usersvc.NewUserService(log, s.users),
			Catalog:    s.catalog,
			Coalitions: s.coalitions,
			Projects:   s.projects,
			Collab:     s.collab,
			DB:         s.db,
		},
	)

	s.e = echo.New()
	s.e.Validator = httprouters.NewValidator()
	s.e.HTTPErrorHandler = httprouters.ErrorHandler(log)

	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	routers.Mount(s.e, appmw.Authenticate(log, authService), passthrough)
}

func (s *RoutersSuite) TearDownTest() {
	s.catalog.AssertExpectations(s.T())
	s.coalitions.AssertExpectations(s.T())
	s.projects.AssertExpectations(s.T())
	s.collab.AssertExpectations(s.T())
	s.db.AssertExpectations(s.T())
}

type call struct {
	method  string
	path    string
	body    string
	form    url.Values
	token   string
	cookies []*http.Cookie
}

func (s *RoutersSuite) do(c call) *httptest.ResponseRecorder {
	var req *http.Request
	switch {
	case c.form != nil:
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	case c.body != "":
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	default:
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func (s *RoutersSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

func (s *RoutersSuite) detail(rec *httptest.ResponseRecorder) string {
	d, _ := s.decode(rec)["detail"].(string)

	return d
}

func (s *RoutersSuite) register(email, password string) {
	rec := s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   `{"email":"` + email + `","password":"` + password + `"}`,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

// login returns the access token and the refresh cookie.
func (s *RoutersSuite) login(email, password string) (string, *http.Cookie) {
	rec := s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   `{"email":"` + email + `","password":"` + password + `"}`,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var refresh *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "refresh_token" {
			refresh = ck
		}
	}
	s.Require().NotNil(refresh)

	access, _ := s.decode(rec)["access_token"].(string)
	s.Require().NotEmpty(access)

	return access, refresh
}

func (s *RoutersSuite) TestRegister() {
	rec := s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   `{"email":"a@x.com","password":"secret123"}`,
	})
	s.Equal(http.StatusOK, rec.Code)

	body := s.decode(rec)
	s.Equal("User registered successfully", body["message"])
	user := body["user"].(map[string]any)
	s.Equal("a", user["username"])
	s.Equal("a@x.com", user["email"])
	s.NotContains(rec.Body.String(), "password")

	dup := s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   `{"email":"a@x.com","password":"other"}`,
	})
	s.Equal(http.StatusBadRequest, dup.Code)
	s.Equal("Email already registered", s.detail(dup))
}

func (s *RoutersSuite) TestRegister_Validation() {
	rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/register", body: `{"email":"not-an-email","password":"x"}`})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(s.detail(rec), "email")

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/auth/register", body: `{"email":`})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RoutersSuite) TestSignup() {
	rec := s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/users/signup",
		body:   `{"email":"b@x.com","password":"secret123","archetype_id":1,"tier_id":2}`,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	body := s.decode(rec)
	s.EqualValues(1, body["archetype_id"])
	s.EqualValues(2, body["tier_id"])
	s.Nil(body["username"])

	// Same local part, different email: no username is stored, so nothing clashes.
	rec = s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/users/signup",
		body:   `{"email":"b@y.com","password":"secret123","archetype_id":1,"tier_id":2}`,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Nil(s.decode(rec)["username"])

	rec = s.do(call{
		method: http.MethodPost,
		path:   "/api/v1/users/signup",
		body:   `{"email":"b@x.com","password":"other123","archetype_id":1,"tier_id":2}`,
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Email already registered", s.detail(rec))
}

func (s *RoutersSuite) TestLogin() {
	s.register("a@x.com", "secret123")

	s.Run("wrong password issues nothing", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"a@x.com","password":"nope"}`})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Invalid email or password", s.detail(rec))
		s.NotContains(rec.Body.String(), "access_token")
		s.Empty(rec.Result().Cookies())
	})

	s.Run("unknown email", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"z@x.com","password":"secret123"}`})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("json", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"a@x.com","password":"secret123"}`})
		s.Require().Equal(http.StatusOK, rec.Code)

		body := s.decode(rec)
		s.Equal("bearer", body["token_type"])
		s.NotEmpty(body["access_token"])
		s.NotEmpty(body["refresh_token"])

		cookies := rec.Result().Cookies()
		s.Require().Len(cookies, 1)
		s.Equal("refresh_token", cookies[0].Name)
		s.Equal(body["refresh_token"], cookies[0].Value)
		s.True(cookies[0].HttpOnly)
		s.Equal(http.SameSiteLaxMode, cookies[0].SameSite)
	})

	s.Run("oauth2 form", func() {
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/v1/users/login",
			form:   url.Values{"username": {"a@x.com"}, "password": {"secret123"}},
		})
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})
}

func (s *RoutersSuite) TestMe() {
	s.register("a@x.com", "secret123")
	access, refresh := s.login("a@x.com", "secret123")

	rec := s.do(call{method: http.MethodGet, path: "/api/v1/users/me", token: access})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("a@x.com", s.decode(rec)["email"])

	s.Run("no token", func() {
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/users/me"})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	})

	s.Run("refresh token as bearer", func() {
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/users/me", token: refresh.Value})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Invalid access token", s.detail(rec))
	})

	s.Run("expired", func() {
		s.now = s.now.Add(authCfg.AccessTTL + time.Second)
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/users/me", token: access})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Access token has expired", s.detail(rec))
	})

	s.Run("deleted account", func() {
		fresh, _ := s.login("a@x.com", "secret123")
		s.users.delete("a@x.com")

		rec := s.do(call{method: http.MethodGet, path: "/api/v1/users/me", token: fresh})
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("User not found", s.detail(rec))
	})
}

func (s *RoutersSuite) TestRefresh() {
	s.register("a@x.com", "secret123")
	access, refresh := s.login("a@x.com", "secret123")

	s.Run("missing cookie", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/refresh"})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Refresh token missing", s.detail(rec))
	})

	s.Run("access token in cookie", func() {
		rec := s.do(call{
			method:  http.MethodPost,
			path:    "/api/v1/auth/refresh",
			cookies: []*http.Cookie{{Name: "refresh_token", Value: access}},
		})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Invalid refresh token", s.detail(rec))
	})

	s.Run("valid", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/users/refresh", cookies: []*http.Cookie{refresh}})
		s.Require().Equal(http.StatusOK, rec.Code)

		body := s.decode(rec)
		s.Equal("bearer", body["token_type"])
		s.NotContains(body, "refresh_token")

		me := s.do(call{method: http.MethodGet, path: "/api/v1/users/me", token: body["access_token"].(string)})
		s.Equal(http.StatusOK, me.Code)
	})

	s.Run("expired", func() {
		s.now = s.now.Add(authCfg.RefreshTTL + time.Second)

		rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh}})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Refresh token has expired", s.detail(rec))
		s.NotContains(rec.Body.String(), "access_token")
	})
}

func (s *RoutersSuite) TestLogout() {
	s.register("a@x.com", "secret123")
	_, refresh := s.login("a@x.com", "secret123")

	rec := s.do(call{method: http.MethodPost, path: "/api/v1/auth/logout", cookies: []*http.Cookie{refresh}})
	s.Require().Equal(http.StatusOK, rec.Code)

	cleared := rec.Result().Cookies()
	s.Require().Len(cleared, 1)
	s.Equal("", cleared[0].Value)
	s.Less(cleared[0].MaxAge, 0)

	again := s.do(call{method: http.MethodPost, path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh}})
	s.Equal(http.StatusUnauthorized, again.Code)
	s.Equal("Refresh token has been revoked", s.detail(again))
}

func (s *RoutersSuite) TestChangePassword() {
	s.register("a@x.com", "secret123")
	access, _ := s.login("a@x.com", "secret123")

	rec := s.do(call{
		method: http.MethodPut,
		path:   "/api/v1/users/me/password",
		token:  access,
		body:   `{"current_password":"wrong","new_password":"n3w-secret"}`,
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Current password is incorrect", s.detail(rec))

	rec = s.do(call{
		method: http.MethodPut,
		path:   "/api/v1/users/me/password",
		token:  access,
		body:   `{"current_password":"secret123","new_password":"n3w-secret"}`,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.login("a@x.com", "n3w-secret")
	old := s.do(call{method: http.MethodPost, path: "/api/v1/auth/login", body: `{"email":"a@x.com","password":"secret123"}`})
	s.Equal(http.StatusUnauthorized, old.Code)
}

func (s *RoutersSuite) TestProfile() {
	s.register("a@x.com", "secret123")
	s.register("b@x.com", "secret123")
	ownerToken, _ := s.login("a@x.com", "secret123")
	otherToken, _ := s.login("b@x.com", "secret123")

	s.Run("public read", func() {
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/profile/a"})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("a@x.com", s.decode(rec)["email"])
		s.NotContains(rec.Body.String(), "password")
	})

	s.Run("unknown user", func() {
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/profile/ghost"})
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("User not found", s.detail(rec))
	})

	s.Run("someone else", func() {
		rec := s.do(call{method: http.MethodPut, path: "/api/v1/profile/a", token: otherToken, body: `{"bio":"hacked"}`})
		s.Equal(http.StatusForbidden, rec.Code)
		s.Equal("Not authorized to edit this profile", s.detail(rec))
	})

	s.Run("field outside the allow-list", func() {
		rec := s.do(call{method: http.MethodPut, path: "/api/v1/profile/a", token: ownerToken, body: `{"bio":"x","email":"evil@x.com"}`})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Contains(s.detail(rec), "email")

		u, err := s.users.UserByUsername(context.Background(), "a")
		s.Require().NoError(err)
		s.Equal("a@x.com", u.Email)
		s.Nil(u.Bio)
	})

	s.Run("owner", func() {
		rec := s.do(call{method: http.MethodPut, path: "/api/v1/profile/a", token: ownerToken, body: `{"bio":"painter","full_name":"Ana"}`})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("Profile updated successfully", s.decode(rec)["message"])

		u, err := s.users.UserByUsername(context.Background(), "a")
		s.Require().NoError(err)
		s.Equal("painter", *u.Bio)
		s.Equal("Ana", *u.FullName)
	})

	s.Run("username already taken", func() {
		rec := s.do(call{method: http.MethodPut, path: "/api/v1/profile/a", token: ownerToken, body: `{"username":"b"}`})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("Username already taken", s.detail(rec))
	})

	s.Run("no token", func() {
		rec := s.do(call{method: http.MethodPut, path: "/api/v1/profile/a", body: `{"bio":"x"}`})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *RoutersSuite) TestDiscover() {
	rec := s.do(call{method: http.MethodGet, path: "/api/v1/discover?archetype_id=abc"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	s.register("ana@x.com", "secret123")
	rec = s.do(call{method: http.MethodGet, path: "/api/v1/discover?name=an"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"username":"ana"`)
}

func (s *RoutersSuite) TestArchetypes() {
	ctx := mock.Anything

	s.catalog.On("ListArchetypes", ctx).Return([]models.Archetype{}, catalogsvc.ErrNoArchetypes).Once()
	rec := s.do(call{method: http.MethodGet, path: "/api/v1/archetypes"})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("No archetypes found", s.detail(rec))

	s.catalog.On("Archetype", ctx, int64(4)).Return(models.Archetype{ID: 4, Name: "Visionary"}, nil).Once()
	rec = s.do(call{method: http.MethodGet, path: "/api/v1/archetypes/4"})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Visionary", s.decode(rec)["name"])

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/archetypes/abc"})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/archetypes", body: `{"name":"Builder"}`})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RoutersSuite) TestTiers() {
	s.register("a@x.com", "secret123")
	token, _ := s.login("a@x.com", "secret123")

	s.catalog.On("CreateTier", mock.Anything, models.Tier{Name: "Gold", Level: 3}).
		Return(models.Tier{ID: 1, Name: "Gold", Level: 3}, nil).Once()
	rec := s.do(call{method: http.MethodPost, path: "/api/v1/tiers", token: token, body: `{"name":"Gold","level":3}`})
	s.Equal(http.StatusCreated, rec.Code)

	s.catalog.On("DeleteTier", mock.Anything, int64(1)).Return(catalogsvc.ErrInUse).Once()
	rec = s.do(call{method: http.MethodDelete, path: "/api/v1/tiers/1", token: token})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *RoutersSuite) TestCoalitions() {
	s.register("a@x.com", "secret123")
	token, _ := s.login("a@x.com", "secret123")
	me, _ := s.users.UserByEmail(context.Background(), "a@x.com")

	s.Run("join twice", func() {
		s.coalitions.On("Join", mock.Anything, int64(1), me.ID).Return(nil).Once()
		s.coalitions.On("Get", mock.Anything, int64(1)).
			Return(models.Coalition{ID: 1, Name: "Berlin Sound", Members: []models.Member{{ID: me.ID, Email: me.Email}}}, nil).Once()

		rec := s.do(call{method: http.MethodPost, path: "/api/v1/coalitions/1/join", token: token})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"email":"a@x.com"`)

		s.coalitions.On("Join", mock.Anything, int64(1), me.ID).Return(coalitionsvc.ErrAlreadyMember).Once()
		rec = s.do(call{method: http.MethodPost, path: "/api/v1/coalitions/1/join", token: token})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("User already a member", s.detail(rec))
	})

	s.Run("leave as non-member", func() {
		s.coalitions.On("Leave", mock.Anything, int64(2), me.ID).Return(coalitionsvc.ErrNotMember).Once()
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/coalitions/2/leave", token: token})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("User not a member of this coalition", s.detail(rec))
	})

	s.Run("list filters", func() {
		s.coalitions.On("List", mock.Anything, models.CoalitionFilter{Search: "music", Region: "All"}).
			Return([]models.Coalition{}, nil).Once()
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/coalitions?search=music&region=All"})
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.Run("create", func() {
		s.coalitions.On("Create", mock.Anything, mock.MatchedBy(func(c models.Coalition) bool { return c.Name == "Lagos Film" })).
			Return(models.Coalition{ID: 5, Name: "Lagos Film", Members: []models.Member{}}, nil).Once()
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/coalitions", token: token, body: `{"name":"Lagos Film","location":"Lagos"}`})
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("delete", func() {
		s.coalitions.On("Delete", mock.Anything, int64(5)).Return("Lagos Film", nil).Once()
		rec := s.do(call{method: http.MethodDelete, path: "/api/v1/coalitions/5", token: token})
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Coalition 'Lagos Film' deleted successfully", s.detail(rec))
	})

	s.Run("members of unknown coalition", func() {
		s.coalitions.On("Members", mock.Anything, int64(9)).Return([]models.User(nil), coalitionsvc.ErrCoalitionNotFound).Once()
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/coalitions/9/members"})
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("Coalition not found", s.detail(rec))
	})
}

func (s *RoutersSuite) TestProjects() {
	s.register("a@x.com", "secret123")
	token, _ := s.login("a@x.com", "secret123")

	s.Run("create sets poster", func() {
		s.projects.On("Create", mock.Anything,
			mock.MatchedBy(func(u models.User) bool { return u.Email == "a@x.com" }),
			mock.MatchedBy(func(p models.Project) bool {
				return p.Title == "Mural" && len(p.NeededArchetypes) == 1 && p.CoalitionTags != nil
			}),
		).Return(models.Project{ID: 1, Title: "Mural"}, nil).Once()

		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/v1/projects",
			token:  token,
			body:   `{"title":"Mural","objective":"paint","project_type":"art","needed_archetypes":["Builder"]}`,
		})
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})

	s.Run("missing fields", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/projects", token: token, body: `{"title":"Mural"}`})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("delete by poster", func() {
		s.projects.On("Delete", mock.Anything, mock.Anything, int64(1)).Return("Mural", nil).Once()
		rec := s.do(call{method: http.MethodDelete, path: "/api/v1/projects/1", token: token})
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Project 'Mural' deleted successfully", s.decode(rec)["message"])
	})

	s.Run("delete by someone else", func() {
		s.projects.On("Delete", mock.Anything, mock.Anything, int64(2)).Return("", projectsvc.ErrForbidden).Once()
		rec := s.do(call{method: http.MethodDelete, path: "/api/v1/projects/2", token: token})
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("list filters", func() {
		s.projects.On("List", mock.Anything, models.ProjectFilter{Archetype: "Builder", Region: "Accra"}).
			Return([]models.Project{{ID: 2}, {ID: 1}}, nil).Once()
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/projects?archetype=Builder&region=Accra"})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("unknown", func() {
		s.projects.On("Get", mock.Anything, int64(7)).Return(models.Project{}, projectsvc.ErrProjectNotFound).Once()
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/projects/7"})
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("Project not found", s.detail(rec))
	})
}

func (s *RoutersSuite) TestCollabCircle() {
	s.register("ana@x.com", "secret123")
	token, _ := s.login("ana@x.com", "secret123")
	project := "Mural"

	s.Run("create", func() {
		s.collab.On("Create", mock.Anything, mock.Anything, "ana", "ben", &project).
			Return(models.CollabLink{ID: 12}, nil).Once()
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/v1/collabcircle/create",
			token:  token,
			body:   `{"user_a_username":"ana","user_b_username":"ben","project_name":"Mural"}`,
		})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"message":"Collaboration link created successfully.","link_id":"12"}`, rec.Body.String())
	})

	s.Run("duplicate", func() {
		s.collab.On("Create", mock.Anything, mock.Anything, "ben", "ana", (*string)(nil)).
			Return(models.CollabLink{}, collabsvc.ErrCollabExists).Once()
		rec := s.do(call{
			method: http.MethodPost,
			path:   "/api/v1/collabcircle/create",
			token:  token,
			body:   `{"user_a_username":"ben","user_b_username":"ana"}`,
		})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("Collaboration already exists", s.detail(rec))
	})

	s.Run("verify", func() {
		s.collab.On("Verify", mock.Anything, mock.Anything, "ana", "ben").
			Return(models.CollabLink{ID: 12, Status: models.CollabStatusVerified}, nil).Once()
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/collabcircle/verify?user_a_username=ana&user_b_username=ben", token: token})
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Collaboration verified successfully.", s.decode(rec)["message"])
	})

	s.Run("verify without usernames", func() {
		rec := s.do(call{method: http.MethodPost, path: "/api/v1/collabcircle/verify", token: token})
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("circle", func() {
		s.collab.On("Circle", mock.Anything, "ana").Return([]models.CollabEntry{
			{CollaboratorUsername: "ben", ProjectName: &project, Status: models.CollabStatusPending},
		}, nil).Once()
		rec := s.do(call{method: http.MethodGet, path: "/api/v1/collabcircle/ana"})
		s.Require().Equal(http.StatusOK, rec.Code)
		s.JSONEq(`{"collab_circle":[{"collaborator_username":"ben","project_name":"Mural","status":"pending","verified_at":null}]}`, rec.Body.String())
	})
}

func (s *RoutersSuite) TestHealth() {
	rec := s.do(call{method: http.MethodGet, path: "/"})
	s.JSONEq(`{"message":"Welcome to the Breate API!"}`, rec.Body.String())

	rec = s.do(call{method: http.MethodGet, path: "/health"})
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())

	s.db.On("Version", mock.Anything).Return("PostgreSQL 15.6", nil).Once()
	rec = s.do(call{method: http.MethodGet, path: "/health/db"})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("PostgreSQL 15.6", s.decode(rec)["postgres_version"])
}

// memUsers is an in-memory credential store with the uniqueness rules of the
// users table.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]models.User{}}
}

func (m *memUsers) SaveUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if u.Email == user.Email {
			return models.User{}, storage.ErrUserExists
		}
		if user.Username != nil && u.Username != nil && *u.Username == *user.Username {
			return models.User{}, storage.ErrUsernameTaken
		}
	}

	m.nextID++
	user.ID = m.nextID
	m.byID[user.ID] = user

	return user, nil
}

func (m *memUsers) find(match func(models.User) bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if match(u) {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (m *memUsers) UserByEmail(_ context.Context, email string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) UserByUsername(_ context.Context, username string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Username != nil && *u.Username == username })
}

func (m *memUsers) UserByID(_ context.Context, id int64) (models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUsers) UpdateProfile(_ context.Context, id int64, update models.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	if update.Username != nil {
		for _, other := range m.byID {
			if other.ID != id && other.Username != nil && *other.Username == *update.Username {
				return storage.ErrUsernameTaken
			}
		}
	}

	update.Apply(&u)
	m.byID[id] = u

	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.byID[id] = u

	return nil
}

func (m *memUsers) ListUsers(_ context.Context, filter models.UserFilter) ([]models.Creator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Creator{}
	for _, u := range m.byID {
		if filter.Name != "" && (u.Username == nil || !strings.Contains(strings.ToLower(*u.Username), strings.ToLower(filter.Name))) {
			continue
		}
		out = append(out, models.Creator{ID: u.ID, Username: u.Username, Bio: u.Bio})
	}

	return out, nil
}

func (m *memUsers) delete(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, u := range m.byID {
		if u.Email == email {
			delete(m.byID, id)
		}
	}
}

type memRevocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memRevocations) RevokeRefreshToken(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl > 0 {
		m.ids[tokenID] = true
	}

	return nil
}

func (m *memRevocations) IsRefreshTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ids[tokenID], nil
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) ListArchetypes(ctx context.Context) ([]models.Archetype, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Archetype), args.Error(1)
}

func (m *mockCatalog) Archetype(ctx context.Context, id int64) (models.Archetype, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Archetype), args.Error(1)
}

func (m *mockCatalog) CreateArchetype(ctx context.Context, a models.Archetype) (models.Archetype, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(models.Archetype), args.Error(1)
}

func (m *mockCatalog) DeleteArchetype(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalog) ListTiers(ctx context.Context) ([]models.Tier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Tier), args.Error(1)
}

func (m *mockCatalog) Tier(ctx context.Context, id int64) (models.Tier, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Tier), args.Error(1)
}

func (m *mockCatalog) CreateTier(ctx context.Context, t models.Tier) (models.Tier, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(models.Tier), args.Error(1)
}

func (m *mockCatalog) DeleteTier(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCoalitions struct{ mock.Mock }

func (m *mockCoalitions) List(ctx context.Context, filter models.CoalitionFilter) ([]models.Coalition, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Coalition), args.Error(1)
}

func (m *mockCoalitions) Get(ctx context.Context, id int64) (models.Coalition, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Coalition), args.Error(1)
}

func (m *mockCoalitions) Create(ctx context.Context, c models.Coalition) (models.Coalition, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(models.Coalition), args.Error(1)
}

func (m *mockCoalitions) Delete(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockCoalitions) Join(ctx context.Context, coalitionID, userID int64) error {
	return m.Called(ctx, coalitionID, userID).Error(0)
}

func (m *mockCoalitions) Leave(ctx context.Context, coalitionID, userID int64) error {
	return m.Called(ctx, coalitionID, userID).Error(0)
}

func (m *mockCoalitions) Members(ctx context.Context, coalitionID int64) ([]models.User, error) {
	args := m.Called(ctx, coalitionID)
	return args.Get(0).([]models.User), args.Error(1)
}

type mockProjects struct{ mock.Mock }

func (m *mockProjects) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjects) Get(ctx context.Context, id int64) (models.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *mockProjects) Create(ctx context.Context, poster models.User, p models.Project) (models.Project, error) {
	args := m.Called(ctx, poster, p)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *mockProjects) Delete(ctx context.Context, actor models.User, id int64) (string, error) {
	args := m.Called(ctx, actor, id)
	return args.String(0), args.Error(1)
}

type mockCollab struct{ mock.Mock }

func (m *mockCollab) Create(ctx context.Context, actor models.User, userA, userB string, projectName *string) (models.CollabLink, error) {
	args := m.Called(ctx, actor, userA, userB, projectName)
	return args.Get(0).(models.CollabLink), args.Error(1)
}

func (m *mockCollab) Verify(ctx context.Context, actor models.User, userA, userB string) (models.CollabLink, error) {
	args := m.Called(ctx, actor, userA, userB)
	return args.Get(0).(models.CollabLink), args.Error(1)
}

func (m *mockCollab) Circle(ctx context.Context, username string) ([]models.CollabEntry, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]models.CollabEntry), args.Error(1)
}

type mockDB struct{ mock.Mock }

func (m *mockDB) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
