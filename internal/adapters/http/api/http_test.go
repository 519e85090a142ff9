package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/enhealth/internal/adapters/http/api"
	"github.com/okian/enhealth/internal/domain/features"
	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockPredictor answers covid requests and records the payload it saw.
type mockPredictor struct {
	conditions []types.Condition
	result     types.Result
	err        error
	panicMsg   string
	seen       map[string]any
}

func (m *mockPredictor) Conditions() []types.Condition { return m.conditions }

func (m *mockPredictor) Predict(_ context.Context, _ types.Condition, payload map[string]any) (types.Result, error) {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	m.seen = payload
	if m.err != nil {
		return types.Result{}, m.err
	}
	if _, ok := payload["fever"]; !ok {
		return types.Result{}, &features.ValidationError{Field: "fever", Message: "fever is required"}
	}
	return m.result, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newPredictor() *mockPredictor {
	return &mockPredictor{
		conditions: types.Conditions,
		result: types.Result{
			Label:       "negative",
			RiskLevel:   "low",
			Probability: 0.12,
			Title:       "Low Risk",
			Message:     "ok",
		},
	}
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body["error"]
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newPredictor()
		stats := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		router := api.NewServer(deps, stats).Router(context.Background())

		Convey("When calling the health endpoint", func() {
			w := serve(router, http.MethodGet, "/healthz", "")

			Convey("Then the loaded models are listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Status string   `json:"status"`
					Models []string `json:"models"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Status, ShouldEqual, "ok")
				So(body.Models, ShouldResemble, []string{"diabetes", "lung", "covid", "sleep"})
			})
		})

		Convey("When calling the stats endpoint", func() {
			w := serve(router, http.MethodGet, "/stats", "")

			Convey("Then the provider's stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})

		Convey("When calling the metrics endpoint", func() {
			_ = serve(router, http.MethodGet, "/healthz", "")
			w := serve(router, http.MethodGet, "/metrics", "")

			Convey("Then prometheus text is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "enhealth_predict_http_requests_total")
			})
		})

		Convey("When posting a complete payload", func() {
			w := serve(router, http.MethodPost, "/api/covid", `{"fever":"yes"}`)

			Convey("Then the result envelope is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var body types.Response
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Condition, ShouldEqual, types.Covid)
				So(body.Result, ShouldResemble, deps.result)
			})

			Convey("And a request id is assigned", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When the client sends a request id", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/covid", strings.NewReader(`{"fever":"no"}`))
			req.Header.Set(api.RequestIDHeader, "client-7")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "client-7")
			})
		})

		Convey("When numbers are posted", func() {
			_ = serve(router, http.MethodPost, "/api/covid", `{"fever":1,"age":42}`)

			Convey("Then they reach the service as json.Number", func() {
				So(deps.seen["age"], ShouldEqual, json.Number("42"))
			})
		})

		Convey("When a field is missing", func() {
			w := serve(router, http.MethodPost, "/api/covid", `{"cough":"yes"}`)

			Convey("Then a 400 names the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w), ShouldEqual, "fever is required")
			})
		})

		Convey("When the body is malformed or not an object", func() {
			for _, body := range []string{"", "{not json", "[1,2]", `"text"`, `{"fever":"yes"} trailing`, `{"fever":"yes"}{}`} {
				w := serve(router, http.MethodPost, "/api/covid", body)

				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(deps.seen, ShouldBeEmpty)
			}

			Convey("Then the payload is treated as empty", func() {
				So(deps.seen, ShouldNotBeNil)
			})
		})

		Convey("When the service fails", func() {
			deps.err = errors.New("matrix exploded")
			w := serve(router, http.MethodPost, "/api/lung", `{"fever":"yes"}`)

			Convey("Then a generic 500 is returned without internals", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w), ShouldEqual, "internal server error")
			})
		})

		Convey("When the handler panics", func() {
			deps.panicMsg = "boom"
			w := serve(router, http.MethodPost, "/api/sleep", `{}`)

			Convey("Then the panic is recovered as a 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When using the wrong method", func() {
			w := serve(router, http.MethodGet, "/api/diabetes", "")

			Convey("Then 405 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeError(w), ShouldEqual, "method not allowed")
			})
		})

		Convey("When the path is unknown", func() {
			w := serve(router, http.MethodPost, "/api/heart", `{}`)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestServer_Limits(t *testing.T) {
	Convey("Given a server with a one-request bucket", t, func() {
		router := api.NewServer(newPredictor(), &mockStatsProvider{}, api.WithRateLimit(0.001, 1)).Router(context.Background())

		Convey("When two requests arrive back to back", func() {
			first := serve(router, http.MethodPost, "/api/covid", `{"fever":"yes"}`)
			second := serve(router, http.MethodPost, "/api/covid", `{"fever":"yes"}`)

			Convey("Then the second is rejected", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(second), ShouldEqual, "rate limit exceeded")
			})

			Convey("And ambient endpoints are not limited", func() {
				So(serve(router, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given a server with a tiny body limit", t, func() {
		router := api.NewServer(newPredictor(), &mockStatsProvider{}, api.WithMaxBodyBytes(8)).Router(context.Background())

		Convey("When a larger body is posted", func() {
			w := serve(router, http.MethodPost, "/api/covid", `{"fever":"yes","cough":"no"}`)

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decodeError(w), ShouldEqual, "request body too large")
			})
		})
	})

	Convey("Given a server with no models loaded", t, func() {
		deps := newPredictor()
		deps.conditions = nil
		router := api.NewServer(deps, &mockStatsProvider{}).Router(context.Background())

		Convey("When calling the health endpoint", func() {
			w := serve(router, http.MethodGet, "/healthz", "")

			Convey("Then the service reports unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}
