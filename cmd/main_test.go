package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/avaliece/internal/config"
	"github.com/okian/avaliece/internal/domain/auth"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		panic(err)
	}
}

const dataset = `NM_ENTIDADE,VL_FILTRO_REDE,VL_FILTRO_ETAPA,VL_FILTRO_DISCIPLINA,CD_HABILIDADE,DC_HABILIDADE,TX_ACERTO,DC_FILTRO_AVALIACAO
CREDE 01,Estadual,9,Matemática,H1,Ler,70,Prova A
CREDE 01,Estadual,9,Matemática,H1,Ler,90,Prova A
CREDE 02,Municipal,5,Português,H3,Interpretar,40,Prova B
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.csv")
	if err := os.WriteFile(path, []byte(dataset), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		cmd := newRootCmd()

		convey.Convey("Then it should expose serve, report and hash-password", func() {
			names := map[string]bool{}
			for _, c := range cmd.Commands() {
				names[c.Name()] = true
			}
			convey.So(names["serve"], convey.ShouldBeTrue)
			convey.So(names["report"], convey.ShouldBeTrue)
			convey.So(names["hash-password"], convey.ShouldBeTrue)
		})
	})
}

func TestHashPasswordCommand(t *testing.T) {
	convey.Convey("Given the hash-password command", t, func() {
		convey.Convey("When hashing a password", func() {
			out, err := run("hash-password", "segredo")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the hash verifies the same password", func() {
				v, err := auth.NewBcrypt("Formace", strings.TrimSpace(out))
				convey.So(err, convey.ShouldBeNil)
				convey.So(v.Verify(context.Background(), "Formace", "segredo"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the password is missing", func() {
			_, err := run("hash-password")

			convey.Convey("Then it fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestReportCommand(t *testing.T) {
	convey.Convey("Given a dataset configured through the environment", t, func() {
		t.Setenv("AVALIECE_DATASET__PATH", writeDataset(t))

		convey.Convey("When reporting one region", func() {
			out, err := run("report", "--crede", "CREDE 01")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it prints the selection and the Prova A table", func() {
				convey.So(out, convey.ShouldContainSubstring, view.PageTitle)
				convey.So(out, convey.ShouldContainSubstring, "Crede: CREDE 01")
				convey.So(out, convey.ShouldContainSubstring, "📝 Prova A")
				convey.So(out, convey.ShouldContainSubstring, "80.00")
				convey.So(out, convey.ShouldNotContainSubstring, "Prova B")
			})
		})

		convey.Convey("When the search matches nothing", func() {
			out, err := run("report", "--q", "zzz")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it prints the empty warning", func() {
				convey.So(out, convey.ShouldContainSubstring, view.EmptyMessage)
			})
		})
	})

	convey.Convey("Given a missing dataset", t, func() {
		t.Setenv("AVALIECE_DATASET__PATH", filepath.Join(t.TempDir(), "dados.csv"))

		convey.Convey("Then the report fails with the not-found message", func() {
			out, err := run("report")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(out, convey.ShouldContainSubstring, "não encontrado")
		})
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()
		cfg.Dataset.Path = writeDataset(t)
		cfg.Dataset.Watch = false
		log := logger.Get()

		convey.Convey("When the password hash is invalid", func() {
			cfg.Auth.PasswordHash = "not-a-hash"
			_, err := newService(cfg, log)

			convey.Convey("Then the service is not built", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When building the mux", func() {
			ctx := context.Background()
			svc, err := newService(cfg, log)
			convey.So(err, convey.ShouldBeNil)
			mux := newMux(ctx, cfg, svc, log)

			status := func(target string) int {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
				return w.Code
			}

			convey.Convey("Then every surface is routed", func() {
				convey.So(status("/healthz"), convey.ShouldEqual, http.StatusOK)
				convey.So(status("/login"), convey.ShouldEqual, http.StatusOK)
				convey.So(status("/static/style.css"), convey.ShouldEqual, http.StatusOK)
				convey.So(status("/api-docs"), convey.ShouldEqual, http.StatusOK)
				convey.So(status("/openapi.yaml"), convey.ShouldEqual, http.StatusOK)
				convey.So(status("/"), convey.ShouldEqual, http.StatusSeeOther)
				convey.So(status("/api/view"), convey.ShouldEqual, http.StatusUnauthorized)
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("And the loop returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}
