package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/remote"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

type modelServer struct {
	status  int
	body    string
	delay   time.Duration
	lastReq map[string]any
}

func (m *modelServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/healthz":
		w.WriteHeader(m.status)
	case "/classify":
		_ = json.NewDecoder(r.Body).Decode(&m.lastReq)
		if m.delay > 0 {
			time.Sleep(m.delay)
		}
		w.WriteHeader(m.status)
		_, _ = w.Write([]byte(m.body))
	default:
		http.NotFound(w, r)
	}
}

func TestClassifier(t *testing.T) {
	Convey("Given a model server", t, func() {
		ms := &modelServer{status: http.StatusOK, body: `{"label": 2}`}
		srv := httptest.NewServer(ms)
		defer srv.Close()

		ctx := context.Background()
		c, err := remote.New(srv.URL+"/", questionnaire.GAD7())
		So(err, ShouldBeNil)

		Convey("When classifying", func() {
			label, err := c.Classify(ctx, questionnaire.FeatureVector{1, 2, 3, 0, 1, 2, 3})

			Convey("Then the label and ordered payload round-trip", func() {
				So(err, ShouldBeNil)
				So(label, ShouldEqual, 2)
				So(ms.lastReq["features"], ShouldResemble, []any{1.0, 2.0, 3.0, 0.0, 1.0, 2.0, 3.0})
				names := ms.lastReq["feature_names"].([]any)
				So(names[0], ShouldEqual, "Merasa gugup, cemas, atau gelisah")
			})
		})

		Convey("When the server fails", func() {
			ms.status = http.StatusInternalServerError
			ms.body = "boom"
			_, err := c.Classify(ctx, questionnaire.FeatureVector{})

			Convey("Then it is an inference error", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "upstream 500")
			})

			Convey("And the probe reports the model unavailable", func() {
				So(errors.Is(c.Probe(ctx), inference.ErrModelUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the response has no label", func() {
			ms.body = `{}`
			_, err := c.Classify(ctx, questionnaire.FeatureVector{})

			Convey("Then it is an inference error", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
			})
		})

		Convey("When the response is not JSON", func() {
			ms.body = `<html>`
			_, err := c.Classify(ctx, questionnaire.FeatureVector{})

			Convey("Then it is an inference error", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
			})
		})

		Convey("When the server is slower than the client timeout", func() {
			ms.delay = 200 * time.Millisecond
			slow, err := remote.New(srv.URL, questionnaire.GAD7(), remote.WithTimeout(20*time.Millisecond))
			So(err, ShouldBeNil)
			_, err = slow.Classify(ctx, questionnaire.FeatureVector{})

			Convey("Then the timeout is an inference error", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
			})
		})

		Convey("When the server is healthy", func() {
			Convey("Then the probe passes", func() {
				So(c.Probe(ctx), ShouldBeNil)
				So(c.Describe()["url"], ShouldEqual, srv.URL)
			})
		})
	})

	Convey("Given an invalid base url", t, func() {
		_, err := remote.New("localhost:9000", questionnaire.GAD7())
		So(err, ShouldNotBeNil)
	})
}
