package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/artifact"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// bandClassifier labels by total score and counts its calls.
type bandClassifier struct {
	calls atomic.Int64
}

func (b *bandClassifier) Classify(_ context.Context, f questionnaire.FeatureVector) (int, error) {
	b.calls.Add(1)
	switch questionnaire.Severity(questionnaire.TotalScore(f)) {
	case questionnaire.SeverityMild:
		return 0, nil
	case questionnaire.SeverityMinimal:
		return 1, nil
	case questionnaire.SeverityModerate:
		return 2, nil
	default:
		return 3, nil
	}
}

var labels = artifact.NewLabelEncoder("Mild Anxiety", "Minimal Anxiety", "Moderate Anxiety", "Severe Anxiety")

func answers(texts ...string) questionnaire.RawInput {
	return questionnaire.GAD7().InputFromAnswers(texts)
}

func repeat(text string) questionnaire.RawInput {
	texts := make([]string, questionnaire.ItemCount)
	for i := range texts {
		texts[i] = text
	}
	return answers(texts...)
}

func TestService_Predict(t *testing.T) {
	Convey("Given a service with a stub classifier", t, func() {
		ctx := context.Background()
		classifier := &bandClassifier{}
		svc := app.New(
			app.WithClassifier(classifier),
			app.WithDecoder(labels),
			app.WithLogger(logger.Get()),
		)

		Convey("When every answer is Tidak Pernah", func() {
			res, err := svc.Predict(ctx, repeat("Tidak Pernah"))

			Convey("Then the total is 0 and the label decodes", func() {
				So(err, ShouldBeNil)
				So(res, ShouldResemble, app.Result{TotalScore: 0, AnxietyLevel: "Minimal Anxiety", AnxietyLabelEncoded: 1})
			})
		})

		Convey("When every answer is Hampir Setiap Hari", func() {
			res, err := svc.Predict(ctx, repeat("Hampir Setiap Hari"))

			Convey("Then the total is 21", func() {
				So(err, ShouldBeNil)
				So(res.TotalScore, ShouldEqual, 21)
				So(res.AnxietyLevel, ShouldEqual, "Severe Anxiety")
				So(res.AnxietyLabelEncoded, ShouldEqual, 3)
			})
		})

		Convey("When two answers are Beberapa Hari", func() {
			res, err := svc.Predict(ctx, answers(
				"Beberapa Hari", "Beberapa Hari", "Tidak Pernah", "Tidak Pernah",
				"Tidak Pernah", "Tidak Pernah", "Tidak Pernah",
			))

			Convey("Then the total is 2", func() {
				So(err, ShouldBeNil)
				So(res.TotalScore, ShouldEqual, 2)
			})
		})

		Convey("When one answer is maybe", func() {
			raw := repeat("Tidak Pernah")
			raw["banyak_mengkhawatirkan_berbagai_hal"] = "maybe"
			res, err := svc.Predict(ctx, raw)

			Convey("Then it fails with the field and never classifies", func() {
				var invalid *questionnaire.InvalidAnswerError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.Field, ShouldEqual, "banyak_mengkhawatirkan_berbagai_hal")
				So(invalid.Value, ShouldEqual, "maybe")
				So(res, ShouldResemble, app.Result{})
				So(classifier.calls.Load(), ShouldEqual, 0)
				So(app.Kind(err), ShouldEqual, app.KindInvalidAnswer)
			})
		})

		Convey("When the same input is predicted repeatedly and concurrently", func() {
			raw := answers(
				"Hampir Setiap Hari", "Beberapa Hari", "Lebih dari Separuh Waktu yang ditentukan",
				"Tidak Pernah", "Beberapa Hari", "Hampir Setiap Hari", "Tidak Pernah",
			)
			first, err := svc.Predict(ctx, raw)
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			results := make([]app.Result, 32)
			errs := make([]error, 32)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = svc.Predict(ctx, raw)
				}(i)
			}
			wg.Wait()

			Convey("Then every result is identical", func() {
				So(first.TotalScore, ShouldEqual, 10)
				for i := range results {
					So(errs[i], ShouldBeNil)
					So(results[i], ShouldResemble, first)
				}
			})
		})

		Convey("When stats are requested after predictions", func() {
			_, _ = svc.Predict(ctx, repeat("Tidak Pernah"))
			_, _ = svc.Predict(ctx, repeat("nope"))
			stats := svc.GetStats()

			Convey("Then served and failed counts are reported", func() {
				So(stats["ready"], ShouldEqual, true)
				So(stats["predictions_served"], ShouldEqual, int64(1))
				So(stats["predictions_failed"], ShouldEqual, int64(1))
				So(stats["decoder"], ShouldNotBeNil)
			})
		})
	})
}

func TestService_Failures(t *testing.T) {
	Convey("Given failing collaborators", t, func() {
		ctx := context.Background()
		raw := repeat("Beberapa Hari")

		Convey("When no artifacts are configured", func() {
			svc := app.New()
			_, err := svc.Predict(ctx, raw)

			Convey("Then the model is unavailable", func() {
				So(svc.Ready(), ShouldBeFalse)
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(app.Kind(err), ShouldEqual, app.KindModelUnavailable)
			})
		})

		Convey("When the classifier returns an untyped error", func() {
			svc := app.New(
				app.WithClassifier(inference.ClassifierFunc(func(context.Context, questionnaire.FeatureVector) (int, error) {
					return 0, errors.New("shape mismatch")
				})),
				app.WithDecoder(labels),
			)
			_, err := svc.Predict(ctx, raw)

			Convey("Then it becomes an inference error", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "shape mismatch")
				So(app.Kind(err), ShouldEqual, app.KindInference)
			})
		})

		Convey("When the classifier is slower than the timeout", func() {
			svc := app.New(
				app.WithClassifier(inference.ClassifierFunc(func(ctx context.Context, _ questionnaire.FeatureVector) (int, error) {
					select {
					case <-time.After(time.Second):
						return 0, nil
					case <-ctx.Done():
						time.Sleep(10 * time.Millisecond)
						return 0, nil
					}
				})),
				app.WithDecoder(labels),
				app.WithInferenceTimeout(20*time.Millisecond),
			)
			_, err := svc.Predict(ctx, raw)

			Convey("Then it is an inference error wrapping the deadline", func() {
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})

		Convey("When the classifier emits a label the decoder lacks", func() {
			svc := app.New(
				app.WithClassifier(inference.ClassifierFunc(func(context.Context, questionnaire.FeatureVector) (int, error) {
					return 9, nil
				})),
				app.WithDecoder(labels),
			)
			res, err := svc.Predict(ctx, raw)

			Convey("Then it is an unknown label and nothing is returned", func() {
				var unknown *inference.UnknownLabelError
				So(errors.As(err, &unknown), ShouldBeTrue)
				So(unknown.Label, ShouldEqual, 9)
				So(res, ShouldResemble, app.Result{})
				So(app.Kind(err), ShouldEqual, app.KindUnknownLabel)
			})
		})
	})

	Convey("Given an unrelated error", t, func() {
		So(app.Kind(errors.New("x")), ShouldEqual, app.KindUnknown)
	})
}

func TestService_WithForest(t *testing.T) {
	Convey("Given the bundled sample artifacts", t, func() {
		ctx := context.Background()
		b, err := artifact.Load(ctx, "../../models/gad7_forest.json", "../../models/label_encoder.json", questionnaire.GAD7())
		So(err, ShouldBeNil)
		svc := app.New(app.WithClassifier(b.Forest), app.WithDecoder(b.Encoder))

		Convey("Then every single-position variation decodes to a non-empty label", func() {
			vocab := questionnaire.DefaultVocabulary().Answers()
			for pos := 0; pos < questionnaire.ItemCount; pos++ {
				for _, a := range vocab {
					raw := repeat("Tidak Pernah")
					raw[questionnaire.GAD7().FieldIDs()[pos]] = a.Text
					res, err := svc.Predict(ctx, raw)
					So(err, ShouldBeNil)
					So(res.AnxietyLevel, ShouldNotBeEmpty)
					So(res.TotalScore, ShouldEqual, a.Score)
				}
			}
		})

		Convey("Then the extremes land on the outer classes", func() {
			low, err := svc.Predict(ctx, repeat("Tidak Pernah"))
			So(err, ShouldBeNil)
			So(low.AnxietyLevel, ShouldEqual, "Minimal Anxiety")

			high, err := svc.Predict(ctx, repeat("Hampir Setiap Hari"))
			So(err, ShouldBeNil)
			So(high.AnxietyLevel, ShouldEqual, "Severe Anxiety")
			So(svc.GetStats()["classifier"], ShouldNotBeNil)
		})
	})
}
