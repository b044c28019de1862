package probe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/avaliece/internal/adapters/http/api"
	"github.com/okian/avaliece/internal/adapters/render"
	service "github.com/okian/avaliece/internal/app"
	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/view"
	"github.com/okian/avaliece/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		panic(err)
	}
}

const probeCSV = `NM_ENTIDADE,VL_FILTRO_REDE,VL_FILTRO_ETAPA,VL_FILTRO_DISCIPLINA,CD_HABILIDADE,DC_HABILIDADE,TX_ACERTO,DC_FILTRO_AVALIACAO
CREDE 01,Estadual,9,Matemática,H1,Ler,70,Prova A
CREDE 01,Municipal,9,Matemática,H2,Somar,50,Prova A
CREDE 02,Municipal,5,Português,H3,Interpretar,40,Prova B
CREDE 03,Estadual,5,Português,H3,Interpretar,60,Prova B
`

func newDashboard(t *testing.T, csv string) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.csv")
	if err := os.WriteFile(path, []byte(csv), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	svc := service.New(service.WithDataset(path, ',', ""))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, render.New(), svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running dashboard", t, func() {
		srv := newDashboard(t, probeCSV)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When probing with valid credentials", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:  srv.URL,
				Username: "Formace",
				Password: "Formace",
				Workers:  2,
				Verbose:  true,
			})

			Convey("Then every region is checked without violations", func() {
				So(err, ShouldBeNil)
				So(stats.OK(), ShouldBeTrue)
				So(stats.Regions, ShouldEqual, 3)
				So(stats.Checked, ShouldEqual, 3)
				So(stats.TotalRows, ShouldEqual, 4)
				So(stats.RegionRows, ShouldEqual, 4)
			})
		})

		Convey("When probing with wrong credentials", func() {
			_, err := Run(ctx, &Config{BaseURL: srv.URL, Username: "Formace", Password: "nope"})

			Convey("Then the login is rejected", func() {
				So(errors.Is(err, ErrLoginRejected), ShouldBeTrue)
			})
		})
	})

	Convey("Given nothing listening", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		Convey("Then the health check fails", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCheckRegion(t *testing.T) {
	dd := func(name string, selected string, opts ...string) filter.Dropdown {
		return filter.Dropdown{Name: name, Selected: selected, Options: append([]string{filter.All}, opts...)}
	}
	base := view.Model{
		Outcome: view.OutcomeOK,
		Total:   4,
		Dropdowns: []filter.Dropdown{
			dd("crede", filter.All, "CREDE 01", "CREDE 02"),
			dd("rede", filter.All, "Estadual", "Municipal"),
			dd("etapa", filter.All, "5", "9"),
			dd("disciplina", filter.All, "Matemática"),
		},
		Sections: []view.Section{{Assessment: "Prova A"}},
	}

	Convey("Given the unfiltered view", t, func() {
		Convey("It lists the concrete region options", func() {
			So(regionOptions(base), ShouldResemble, []string{"CREDE 01", "CREDE 02"})
		})

		Convey("A consistent slice passes", func() {
			slice := base
			slice.Total = 2
			slice.Dropdowns = []filter.Dropdown{
				dd("crede", "CREDE 01", "CREDE 01", "CREDE 02"),
				dd("rede", filter.All, "Estadual"),
				dd("etapa", filter.All, "9"),
				dd("disciplina", filter.All, "Matemática"),
			}
			So(checkRegion(base, slice, "CREDE 01"), ShouldBeEmpty)
		})

		Convey("A slice that grows or offers new options fails", func() {
			slice := base
			slice.Total = 5
			slice.Dropdowns = []filter.Dropdown{
				{Name: "crede", Selected: filter.All, Reset: true},
				dd("rede", filter.All, "Privada"),
				dd("etapa", filter.All, "9"),
				dd("disciplina", filter.All, "Matemática"),
			}
			slice.Sections = []view.Section{{Assessment: "Prova Z"}}

			v := checkRegion(base, slice, "CREDE 01")
			So(len(v), ShouldEqual, 4)
			So(v[0], ShouldContainSubstring, "exceeds unfiltered total")
			So(v[1], ShouldContainSubstring, "reset")
			So(v[2], ShouldContainSubstring, `"Privada"`)
			So(v[3], ShouldContainSubstring, `"Prova Z"`)
		})

		Convey("An error outcome short-circuits", func() {
			v := checkRegion(base, view.Model{Outcome: view.OutcomeError}, "CREDE 01")
			So(v, ShouldResemble, []string{`CREDE 01: outcome "error"`})
		})
	})
}
