package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/enhealth/internal/adapters/http/api"
	service "github.com/okian/enhealth/internal/app"
	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
)

const artifactDir = "../adapters/repository/testdata"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(
		service.WithModelDir(artifactDir),
		service.WithModelFiles(map[string]string{"diabetes": "diabetes.json"}),
	)
	So(svc.Start(ctx), ShouldBeNil)
	return httptest.NewServer(api.NewServer(svc, svc).Router(ctx)), svc
}

func TestIncomplete(t *testing.T) {
	Convey("Given the canned samples", t, func() {
		Convey("When the last field is dropped", func() {
			payload, dropped := incomplete(types.Sleep)

			Convey("Then only that field is missing and the sample is untouched", func() {
				So(dropped, ShouldEqual, "diastolicBP")
				So(payload, ShouldNotContainKey, "diastolicBP")
				So(Samples[types.Sleep], ShouldContainKey, "diastolicBP")
				So(len(payload), ShouldEqual, len(Samples[types.Sleep])-1)
			})
		})

		Convey("Then every condition has a sample covering its fields", func() {
			for _, c := range types.Conditions {
				for _, f := range specs[c].Fields() {
					So(Samples[c], ShouldContainKey, f)
				}
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a server backed by the fixture artifacts", t, func() {
		ctx := context.Background()
		srv, svc := newTestServer(ctx)
		Reset(func() {
			srv.Close()
			svc.Stop()
		})

		config := &Config{BaseURL: srv.URL, Repeat: 3, Workers: 2, Timeout: 5 * time.Second}

		Convey("When the probe runs", func() {
			report, err := Run(ctx, config)

			Convey("Then every endpoint passes", func() {
				So(err, ShouldBeNil)
				So(report.Checks, ShouldHaveLength, len(types.Conditions))
				So(report.Failed(), ShouldBeEmpty)
				for i, c := range report.Checks {
					So(c.Condition, ShouldEqual, types.Conditions[i])
					So(c.Requests, ShouldEqual, 3)
					So(c.Result, ShouldNotBeNil)
				}
			})
		})

		Convey("When a report file is requested", func() {
			config.ReportFile = filepath.Join(t.TempDir(), "out", "probe.json")
			_, err := Run(ctx, config)

			Convey("Then the report is written as JSON", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(config.ReportFile)
				So(err, ShouldBeNil)
				var report Report
				So(json.Unmarshal(data, &report), ShouldBeNil)
				So(report.Checks, ShouldHaveLength, len(types.Conditions))
				So(report.Checks[3].DroppedField, ShouldEqual, "diastolicBP")
			})
		})
	})

	Convey("Given a server that accepts anything", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/api/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"condition":"covid","result":{"label":"negative"}}`))
		})
		srv := httptest.NewServer(mux)
		Reset(srv.Close)

		Convey("When the probe runs", func() {
			report, err := Run(context.Background(), &Config{BaseURL: srv.URL, Repeat: 1, Workers: 1, Timeout: time.Second})

			Convey("Then incomplete payloads that are not rejected fail the run", func() {
				So(errors.Is(err, ErrProbeFailed), ShouldBeTrue)
				So(report.Failed(), ShouldHaveLength, len(types.Conditions))
				So(report.Checks[2].Rejected, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unhealthy server", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		Reset(srv.Close)

		Convey("When the probe runs", func() {
			report, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})

			Convey("Then it stops at the health check", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "service health check failed")
				So(report, ShouldBeNil)
			})
		})
	})
}

func TestNewCommand(t *testing.T) {
	Convey("Given the probe command", t, func() {
		cmd := NewCommand()

		Convey("Then its flags carry the defaults", func() {
			url, err := cmd.Flags().GetString("url")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, defaultBaseURL)
			repeat, _ := cmd.Flags().GetInt("repeat")
			So(repeat, ShouldEqual, defaultRepeat)
		})
	})
}
