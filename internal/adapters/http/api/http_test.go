package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/okian/avaliece/internal/adapters/http/api"
	"github.com/okian/avaliece/internal/adapters/render"
	"github.com/okian/avaliece/internal/adapters/session"
	"github.com/okian/avaliece/internal/domain/auth"
	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/model"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		panic(err)
	}
}

// fakeDeps wires real domain pieces around a fixed table.
type fakeDeps struct {
	verifier auth.Verifier
	sessions *session.Store
	builder  *view.Builder
	table    *model.Table
	loadErr  error
	selected []filter.Selection
}

func newFakeDeps() *fakeDeps {
	schema := model.DefaultSchema()
	return &fakeDeps{
		verifier: auth.NewStatic("Formace", "Formace"),
		sessions: session.NewStore(),
		builder:  view.New(schema, filter.New(schema)),
		table: model.NewTable(
			[]string{"NM_ENTIDADE", "VL_FILTRO_REDE", "VL_FILTRO_ETAPA", "VL_FILTRO_DISCIPLINA",
				"CD_HABILIDADE", "DC_HABILIDADE", "TX_ACERTO", "DC_FILTRO_AVALIACAO"},
			[][]string{
				{"CREDE 01", "Estadual", "9", "Matemática", "H1", "Ler", "70", "Prova A"},
				{"CREDE 01", "Estadual", "9", "Matemática", "H1", "Ler", "90", "Prova A"},
				{"CREDE 01", "Estadual", "9", "Matemática", "H2", "Somar", "50", "Prova A"},
				{"CREDE 02", "Municipal", "5", "Português", "H3", "Interpretar", "0", "Prova B"},
			},
		),
	}
}

func (f *fakeDeps) Verify(ctx context.Context, u, p string) bool { return f.verifier.Verify(ctx, u, p) }
func (f *fakeDeps) Login(ctx context.Context, u string) session.Session {
	return f.sessions.Login(ctx, u)
}
func (f *fakeDeps) Logout(ctx context.Context, id string) { f.sessions.Logout(ctx, id) }
func (f *fakeDeps) Session(ctx context.Context, id string) session.Session {
	return f.sessions.Get(ctx, id)
}
func (f *fakeDeps) BuildView(_ context.Context, sel filter.Selection) view.Model {
	f.selected = append(f.selected, sel)
	return f.builder.Build(view.Input{Table: f.table, LoadErr: f.loadErr, Source: "dados.csv", Selection: sel})
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]any { return map[string]any{"started": true} }

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, render.New(), fakeStats{}).Register(context.Background(), mux)
	return mux
}

func login(mux *http.ServeMux, user, pass string) *httptest.ResponseRecorder {
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "avaliece_session" {
			return c
		}
	}
	return nil
}

func get(mux *http.ServeMux, target string, c *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if c != nil {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	Convey("Given a registered server", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When an anonymous user opens the dashboard", func() {
			w := get(mux, "/", nil)

			Convey("Then they are sent to the login form", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/login")
			})
		})

		Convey("When the login form is requested", func() {
			w := get(mux, "/login", nil)

			Convey("Then it renders the credential fields", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "🔐 Login")
				So(w.Body.String(), ShouldContainSubstring, `name="password"`)
				So(w.Body.String(), ShouldNotContainSubstring, "Usuário ou senha incorretos.")
			})
		})

		Convey("When wrong credentials are posted", func() {
			w := login(mux, "Formace", "errada")

			Convey("Then the form is shown again with the inline error", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(w.Body.String(), ShouldContainSubstring, api.LoginFailedMessage)
				So(sessionCookie(w), ShouldBeNil)
				So(deps.sessions.Count(), ShouldEqual, 0)
			})
		})

		Convey("When the right credentials are posted", func() {
			w := login(mux, "Formace", "Formace")
			c := sessionCookie(w)

			Convey("Then a session cookie is issued and the dashboard follows", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/")
				So(c, ShouldNotBeNil)
				So(c.HttpOnly, ShouldBeTrue)
				So(c.SameSite, ShouldEqual, http.SameSiteLaxMode)
			})

			Convey("Then the login form redirects to the dashboard", func() {
				w := get(mux, "/login", c)
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/")
			})

			Convey("And the user logs out", func() {
				req := httptest.NewRequest(http.MethodPost, "/logout", nil)
				req.AddCookie(c)
				out := httptest.NewRecorder()
				mux.ServeHTTP(out, req)

				Convey("Then the session is gone and the cookie cleared", func() {
					So(out.Code, ShouldEqual, http.StatusSeeOther)
					So(out.Header().Get("Location"), ShouldEqual, "/login")
					cleared := sessionCookie(out)
					So(cleared, ShouldNotBeNil)
					So(cleared.MaxAge, ShouldBeLessThan, 0)
					So(get(mux, "/", c).Code, ShouldEqual, http.StatusSeeOther)
				})

				Convey("Then logging back in starts from unfiltered defaults", func() {
					again := sessionCookie(login(mux, "Formace", "Formace"))
					w := get(mux, "/api/view", again)
					var m view.Model
					So(json.Unmarshal(w.Body.Bytes(), &m), ShouldBeNil)
					for _, dd := range m.Dropdowns {
						So(dd.Selected, ShouldEqual, filter.All)
					}
				})
			})
		})

		Convey("When logout is requested with GET", func() {
			w := get(mux, "/logout", nil)

			Convey("Then it is not routed", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestDashboard(t *testing.T) {
	Convey("Given a logged in user", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)
		c := sessionCookie(login(mux, "Formace", "Formace"))

		Convey("When the dashboard is opened without filters", func() {
			w := get(mux, "/", c)
			body := w.Body.String()

			Convey("Then the page shows table, totals, charts and feedback", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(body, ShouldContainSubstring, view.PageTitle)
				So(body, ShouldContainSubstring, "✅ Total de registros: 4")
				So(body, ShouldContainSubstring, "📝 Prova A")
				So(body, ShouldContainSubstring, "<svg")
				So(body, ShouldContainSubstring, "80.0%")
				So(body, ShouldContainSubstring, "<strong>por favor, compartilhe com a equipe responsável.</strong>")
				So(body, ShouldContainSubstring, "Sair")
				So(body, ShouldContainSubstring, "/chart.png?avaliacao=Prova+A")
			})
		})

		Convey("When a search has no match", func() {
			w := get(mux, "/?q=inexistente", c)

			Convey("Then the empty notice is shown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Nenhum registro encontrado.")
				So(w.Body.String(), ShouldContainSubstring, "💬 Sua opinião é importante!")
			})
		})

		Convey("When the dataset file is missing", func() {
			deps.loadErr = fmt.Errorf("open dados.csv: %w", fs.ErrNotExist)
			w := get(mux, "/", c)

			Convey("Then the shell renders with the localized message", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Arquivo &#39;dados.csv&#39; não encontrado.")
				So(w.Body.String(), ShouldContainSubstring, "Sair")
			})
		})

		Convey("When filters are passed in the query", func() {
			get(mux, "/?crede=CREDE+01&rede=Estadual&etapa=9&disciplina=Todas&q=ler", c)

			Convey("Then they reach the view builder", func() {
				So(len(deps.selected), ShouldEqual, 1)
				So(deps.selected[0], ShouldResemble, filter.Selection{
					Region: "CREDE 01", Network: "Estadual", Stage: "9", Subject: "Todas", Search: "ler",
				})
			})
		})

		Convey("When an unknown path is requested", func() {
			So(get(mux, "/nada", c).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestViewAPI(t *testing.T) {
	Convey("Given the JSON view endpoint", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)

		Convey("When called anonymously", func() {
			w := get(mux, "/api/view", nil)

			Convey("Then it answers 401 with an error body", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "unauthorized")
			})
		})

		Convey("When called with a session and a region", func() {
			c := sessionCookie(login(mux, "Formace", "Formace"))
			w := get(mux, "/api/view?crede=CREDE+02", c)

			var m view.Model
			So(json.Unmarshal(w.Body.Bytes(), &m), ShouldBeNil)

			Convey("Then the filtered model is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(m.Total, ShouldEqual, 1)
				So(m.Selection.Region, ShouldEqual, "CREDE 02")
				So(m.Dropdowns[1].Options, ShouldResemble, []string{"Todas", "Municipal"})
			})

			Convey("Then assessments with no positive rate get an empty chart", func() {
				So(len(m.Sections), ShouldEqual, 1)
				So(m.Sections[0].Figure.Bars, ShouldBeEmpty)
			})
		})

		Convey("When a request id is supplied", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})
	})
}

func TestChartPNG(t *testing.T) {
	Convey("Given a logged in user", t, func() {
		deps := newFakeDeps()
		mux := newMux(deps)
		c := sessionCookie(login(mux, "Formace", "Formace"))

		Convey("When the chart of an assessment with bars is requested", func() {
			w := get(mux, "/chart.png?avaliacao=Prova+A", c)

			Convey("Then a PNG is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(strings.HasPrefix(w.Body.String(), "\x89PNG"), ShouldBeTrue)
			})
		})

		Convey("When the assessment has no bars", func() {
			So(get(mux, "/chart.png?avaliacao=Prova+B", c).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the assessment is filtered out", func() {
			So(get(mux, "/chart.png?crede=CREDE+02&avaliacao=Prova+A", c).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When no assessment is named", func() {
			So(get(mux, "/chart.png", c).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the dataset cannot be loaded", func() {
			deps.loadErr = errors.New("boom")
			So(get(mux, "/chart.png?avaliacao=Prova+A", c).Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When called anonymously", func() {
			So(get(mux, "/chart.png?avaliacao=Prova+A", nil).Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a registered server", t, func() {
		mux := newMux(newFakeDeps())

		Convey("Then /healthz exposes Prometheus metrics", func() {
			login(mux, "Formace", "errada")
			w := get(mux, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "avaliece_dashboard_login_attempts_total")
		})

		Convey("Then /stats returns the provider's map", func() {
			w := get(mux, "/stats", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})
	})
}

func TestKind(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.login", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.login: bad request: eof")
		})

		Convey("Then a bare kind prints its operation", func() {
			So(api.NewKind("api.view", api.ErrUnauthorized).Error(), ShouldEqual, "api.view: login required")
		})
	})
}
