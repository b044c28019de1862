package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/avaliece/internal/adapters/http/api"
	"github.com/okian/avaliece/internal/adapters/render"
	service "github.com/okian/avaliece/internal/app"
	"github.com/okian/avaliece/internal/domain/filter"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given the service behind the HTTP API", t, func() {
		path := writeDataset(t)
		svc := service.New(service.WithDataset(path, ',', ""), service.WithWatch(true))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, render.New(), svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		}

		form := url.Values{"username": {"Formace"}, "password": {"Formace"}}
		resp, err := client.PostForm(srv.URL+"/login", form)
		So(err, ShouldBeNil)
		resp.Body.Close()
		So(resp.StatusCode, ShouldEqual, http.StatusSeeOther)
		cookies := resp.Cookies()
		So(cookies, ShouldNotBeEmpty)

		get := func(target string) *http.Response {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+target, nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			r, err := client.Do(req)
			So(err, ShouldBeNil)
			return r
		}

		Convey("When the dashboard is requested", func() {
			r := get("/?crede=CREDE+01")
			defer r.Body.Close()

			Convey("Then it renders", func() {
				So(r.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the dataset file is replaced", func() {
			updated := strings.Replace(sampleCSV, "CREDE 02", "CREDE 03", 1)
			So(os.WriteFile(path, []byte(updated), 0o600), ShouldBeNil)
			later := time.Now().Add(time.Minute)
			So(os.Chtimes(path, later, later), ShouldBeNil)

			Convey("Then the next view sees the new rows", func() {
				m := svc.BuildView(ctx, selectionFor("CREDE 03"))
				So(m.Total, ShouldEqual, 1)
			})
		})

		Convey("When the dataset file is removed", func() {
			So(os.Remove(path), ShouldBeNil)

			Convey("Then the chart endpoint reports the dataset as unavailable", func() {
				r := get("/chart.png?avaliacao=Prova+A")
				defer r.Body.Close()
				So(r.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func selectionFor(region string) filter.Selection {
	return filter.Selection{Region: region}
}
