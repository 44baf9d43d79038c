package artifact_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/adapters/artifact"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/inference"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
)

func fixture(name string) string { return filepath.Join("testdata", name) }

func uniform(score int) questionnaire.FeatureVector {
	var fv questionnaire.FeatureVector
	for i := range fv {
		fv[i] = score
	}
	return fv
}

func TestLoadForest(t *testing.T) {
	Convey("Given the GAD-7 schema", t, func() {
		schema := questionnaire.GAD7()
		ctx := context.Background()

		Convey("When loading a plain JSON forest", func() {
			f, err := artifact.LoadForest(fixture("forest.json"), schema)
			So(err, ShouldBeNil)

			Convey("Then it reports its shape", func() {
				desc := f.Describe()
				So(desc["trees"], ShouldEqual, 3)
				So(desc["nodes"], ShouldEqual, 21)
				So(f.Classes(), ShouldResemble, []int{0, 1, 2, 3})
			})

			Convey("Then it classifies by averaged leaf probabilities", func() {
				cases := []struct {
					fv   questionnaire.FeatureVector
					want int
				}{
					{uniform(0), 1},
					{uniform(1), 2},
					{uniform(3), 3},
					{questionnaire.FeatureVector{3, 0, 0, 0, 0, 0, 0}, 1},
					{questionnaire.FeatureVector{0, 1, 0, 0, 0, 0, 0}, 1},
				}
				for _, c := range cases {
					got, err := f.Classify(ctx, c.fv)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, c.want)
				}
			})

			Convey("Then repeated calls agree", func() {
				fv := questionnaire.FeatureVector{2, 1, 0, 3, 1, 2, 0}
				first, err := f.Classify(ctx, fv)
				So(err, ShouldBeNil)
				for i := 0; i < 20; i++ {
					again, err := f.Classify(ctx, fv)
					So(err, ShouldBeNil)
					So(again, ShouldEqual, first)
				}
			})

			Convey("Then a cancelled context is an inference error", func() {
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				_, err := f.Classify(cctx, uniform(0))
				So(errors.Is(err, inference.ErrInference), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When loading a gzip-compressed forest", func() {
			f, err := artifact.LoadForest(fixture("forest.json.gz"), schema)

			Convey("Then it behaves like the plain one", func() {
				So(err, ShouldBeNil)
				got, err := f.Classify(ctx, uniform(3))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 3)
			})
		})

		Convey("When loading a zstd-compressed forest", func() {
			path := writeZstd(fixture("forest.json"))
			defer func() { _ = os.Remove(path) }()

			f, err := artifact.LoadForest(path, schema)

			Convey("Then it behaves like the plain one", func() {
				So(err, ShouldBeNil)
				got, err := f.Classify(ctx, uniform(1))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, 2)
			})
		})

		Convey("When the feature columns are in another order", func() {
			_, err := artifact.LoadForest(fixture("forest_reordered.json"), schema)

			Convey("Then the model is unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "feature 0")
			})
		})

		Convey("When a tree revisits a node", func() {
			_, err := artifact.LoadForest(fixture("forest_cycle.json"), schema)

			Convey("Then the model is unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "reached twice")
			})
		})

		Convey("When a split node has no feature or threshold", func() {
			f, err := artifact.LoadForest(fixture("forest_split_missing_feature.json"), schema)

			Convey("Then the model is unavailable instead of misrouting samples", func() {
				So(f, ShouldBeNil)
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "schema validation failed")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := artifact.LoadForest(fixture("missing.json"), schema)

			Convey("Then the model is unavailable and the cause is kept", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the document is an encoder instead", func() {
			_, err := artifact.LoadForest(fixture("encoder.json"), schema)

			Convey("Then schema validation rejects it", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "schema validation failed")
			})
		})
	})
}

func TestLoadLabelEncoder(t *testing.T) {
	Convey("Given an encoder export", t, func() {
		Convey("When it is valid", func() {
			e, err := artifact.LoadLabelEncoder(fixture("encoder.json"))
			So(err, ShouldBeNil)

			Convey("Then labels decode by position", func() {
				label, err := e.Decode(1)
				So(err, ShouldBeNil)
				So(label, ShouldEqual, "Minimal Anxiety")
				So(e.Labels(), ShouldHaveLength, 4)
			})

			Convey("Then out of range labels are unknown", func() {
				for _, l := range []int{-1, 4, 99} {
					_, err := e.Decode(l)
					var unknown *inference.UnknownLabelError
					So(errors.As(err, &unknown), ShouldBeTrue)
					So(unknown.Label, ShouldEqual, l)
				}
			})
		})

		Convey("When it has no classes", func() {
			_, err := artifact.LoadLabelEncoder(fixture("encoder_invalid.json"))

			Convey("Then the model is unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given matching artifacts", t, func() {
		ctx := context.Background()
		schema := questionnaire.GAD7()

		Convey("When loading both", func() {
			b, err := artifact.Load(ctx, fixture("forest.json"), fixture("encoder.json"), schema)

			Convey("Then every producible label decodes to a non-empty name", func() {
				So(err, ShouldBeNil)
				for _, c := range b.Forest.Classes() {
					name, err := b.Encoder.Decode(c)
					So(err, ShouldBeNil)
					So(name, ShouldNotBeEmpty)
				}
			})
		})

		Convey("When the forest emits a class the encoder lacks", func() {
			_, err := artifact.Load(ctx, fixture("forest_unpaired.json"), fixture("encoder.json"), schema)

			Convey("Then loading fails as unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(errors.Is(err, inference.ErrUnknownLabel), ShouldBeTrue)
			})
		})

		Convey("When one artifact is missing", func() {
			_, err := artifact.Load(ctx, fixture("forest.json"), fixture("missing.json"), schema)

			Convey("Then loading fails as unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
			})
		})

		Convey("When the context is already done", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := artifact.Load(cctx, fixture("forest.json"), fixture("encoder.json"), schema)

			Convey("Then loading fails as unavailable", func() {
				So(errors.Is(err, inference.ErrModelUnavailable), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})

			Convey("Then no artifact is read", func() {
				_, err := artifact.Load(cctx, fixture("missing.json"), fixture("missing.json"), schema)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeFalse)
			})
		})
	})
}

func TestCheckPairing(t *testing.T) {
	Convey("Given an encoder with two labels", t, func() {
		enc := artifact.NewLabelEncoder("low", "high")

		So(artifact.CheckPairing([]int{0, 1}, enc), ShouldBeNil)
		So(artifact.CheckPairing([]int{0, 2}, enc), ShouldNotBeNil)
	})
}

func writeZstd(src string) string {
	raw, err := os.ReadFile(src)
	if err != nil {
		panic(err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}
	defer func() { _ = enc.Close() }()

	tmp, err := os.CreateTemp("", "forest-*.json.zst")
	if err != nil {
		panic(err)
	}
	if _, err := tmp.Write(enc.EncodeAll(raw, nil)); err != nil {
		panic(err)
	}
	if err := tmp.Close(); err != nil {
		panic(err)
	}
	return tmp.Name()
}
