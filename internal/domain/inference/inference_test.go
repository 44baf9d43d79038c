package inference_test

import (
	"context"
	"errors"
	"testing"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrors(t *testing.T) {
	Convey("Given the typed inference errors", t, func() {
		cause := errors.New("boom")

		Convey("Then each matches its own sentinel only", func() {
			var unavailable error = &inference.ModelUnavailableError{Artifact: "forest", Err: cause}
			var failed error = &inference.InferenceError{Err: cause}
			var unknown error = &inference.UnknownLabelError{Label: 9}

			So(errors.Is(unavailable, inference.ErrModelUnavailable), ShouldBeTrue)
			So(errors.Is(unavailable, inference.ErrInference), ShouldBeFalse)
			So(errors.Is(failed, inference.ErrInference), ShouldBeTrue)
			So(errors.Is(failed, inference.ErrUnknownLabel), ShouldBeFalse)
			So(errors.Is(unknown, inference.ErrUnknownLabel), ShouldBeTrue)
		})

		Convey("Then wrapped causes stay reachable", func() {
			So(errors.Is(&inference.InferenceError{Err: cause}, cause), ShouldBeTrue)
			So(errors.Is(&inference.ModelUnavailableError{Err: cause}, cause), ShouldBeTrue)
		})

		Convey("Then messages carry context", func() {
			So((&inference.ModelUnavailableError{Artifact: "forest", Err: cause}).Error(), ShouldEqual, "model unavailable: forest: boom")
			So((&inference.InferenceError{}).Error(), ShouldEqual, "inference failed")
			So((&inference.UnknownLabelError{Label: 9}).Error(), ShouldEqual, "unknown label 9")
		})
	})
}

func TestUnavailable(t *testing.T) {
	Convey("Given an unavailable artifact", t, func() {
		u := inference.Unavailable{Artifact: "forest", Err: errors.New("no such file")}

		Convey("Then classify and decode both report it", func() {
			_, err := u.Classify(context.Background(), questionnaire.FeatureVector{})
			So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)

			_, err = u.Decode(0)
			So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
		})
	})
}

func TestClassifierFunc(t *testing.T) {
	Convey("Given a classifier func", t, func() {
		var c inference.Classifier = inference.ClassifierFunc(func(_ context.Context, f questionnaire.FeatureVector) (int, error) {
			return questionnaire.TotalScore(f) % 4, nil
		})

		Convey("Then it forwards the call", func() {
			label, err := c.Classify(context.Background(), questionnaire.FeatureVector{1, 1, 1, 0, 0, 0, 0})
			So(err, ShouldBeNil)
			So(label, ShouldEqual, 3)
		})
	})
}
