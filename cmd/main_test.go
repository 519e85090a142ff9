package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/enhealth/internal/app"
	"github.com/okian/enhealth/internal/config"
	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
	"github.com/okian/enhealth/pkg/metrics"
)

const fixtureDir = "../internal/adapters/repository/testdata"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startFixtureService(ctx context.Context, cfg *config.Config) *app.Service {
	svc := app.New(
		app.WithModelDir(cfg.ModelDir),
		app.WithModelFiles(cfg.ModelFiles()),
		app.WithCacheSize(cfg.CacheSize),
	)
	convey.So(svc.Start(ctx), convey.ShouldBeNil)
	return svc
}

func fixtureConfig() *config.Config {
	cfg := config.New()
	cfg.ModelDir = fixtureDir
	cfg.DiabetesModel = "diabetes.json"
	return cfg
}

func TestMainHandler(t *testing.T) {
	convey.Convey("Given the assembled HTTP surface", t, func() {
		ctx := context.Background()
		cfg := fixtureConfig()
		svc := startFixtureService(ctx, cfg)
		defer svc.Stop()
		h := newHandler(ctx, cfg, svc)

		convey.Convey("When posting a covid payload", func() {
			body := `{"breathingProblem":"yes","fever":"yes","dryCough":"no","soreThroat":"no",
				"hypertension":"no","abroadTravel":"no","covidContact":"no","largeGathering":"no",
				"publicPlaces":"no","familyPublic":"no"}`
			req := httptest.NewRequest(http.MethodPost, "/api/covid", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.Convey("Then the fixture model answers", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var resp types.Response
				convey.So(json.Unmarshal(w.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Condition, convey.ShouldEqual, types.Covid)
				convey.So(resp.Result.RiskLevel, convey.ShouldEqual, "moderate")
			})
		})

		convey.Convey("When posting an empty lung payload", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/lung", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.Convey("Then the first rule's field is reported", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "age is required")
			})
		})

		convey.Convey("When requesting the docs and ambient endpoints", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestRunFailsFast(t *testing.T) {
	convey.Convey("Given a model directory without artifacts", t, func() {
		_ = os.Setenv("ENHEALTH_MODEL_DIR", t.TempDir())
		defer func() { _ = os.Unsetenv("ENHEALTH_MODEL_DIR") }()

		convey.Convey("When running the server", func() {
			err := run(context.Background())

			convey.Convey("Then startup fails before listening", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "start service")
			})
		})
	})

	convey.Convey("Given an invalid configuration", t, func() {
		_ = os.Setenv("ENHEALTH_MAX_BODY_BYTES", "0")
		defer func() { _ = os.Unsetenv("ENHEALTH_MAX_BODY_BYTES") }()

		convey.Convey("When running the server", func() {
			err := run(context.Background())

			convey.Convey("Then the config error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "load config")
			})
		})
	})
}

func TestRunShutdown(t *testing.T) {
	convey.Convey("Given fixture models and a free port", t, func() {
		_ = os.Setenv("ENHEALTH_MODEL_DIR", fixtureDir)
		_ = os.Setenv("ENHEALTH_DIABETES_MODEL", "diabetes.json")
		_ = os.Setenv("ENHEALTH_ADDR", "127.0.0.1:0")
		defer func() {
			_ = os.Unsetenv("ENHEALTH_MODEL_DIR")
			_ = os.Unsetenv("ENHEALTH_DIABETES_MODEL")
			_ = os.Unsetenv("ENHEALTH_ADDR")
		}()

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx) }()
			time.Sleep(100 * time.Millisecond)
			cancel()

			convey.Convey("Then run returns cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return after cancellation")
				}
			})
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When updating once", func() {
			convey.Convey("Then it should not panic", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When its context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()

			convey.Convey("Then the goroutine exits", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("updater did not stop")
				}
			})
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given metrics settings in the config", t, func() {
		cfg := config.New()
		cfg.MetricsPrefix = "svc"
		cfg.MetricsLabels = map[string]string{"instance": "eu-1"}
		cfg.MetricsRefreshInterval = 30 * time.Second

		convey.Convey("When the metrics manager is configured from them", func() {
			registry := metrics.Configure(metricsOptions(cfg)...)
			convey.Reset(func() { metrics.Configure() })
			metrics.RecordPrediction("covid", "low")

			convey.Convey("Then names, labels and refresh interval follow the config", func() {
				families, err := registry.Gather()
				convey.So(err, convey.ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() != "enhealth_predict_svc_predictions_total" {
						continue
					}
					found = true
					labels := map[string]string{}
					for _, l := range f.GetMetric()[0].GetLabel() {
						labels[l.GetName()] = l.GetValue()
					}
					convey.So(labels["instance"], convey.ShouldEqual, "eu-1")
				}
				convey.So(found, convey.ShouldBeTrue)
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 30*time.Second)
				convey.So(metrics.GetRegistry(), convey.ShouldEqual, registry)
			})
		})
	})
}
