package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "models/gad7_forest.json")
			convey.So(cfg.EncoderPath, convey.ShouldEqual, "models/label_encoder.json")
			convey.So(cfg.ClassifierURL, convey.ShouldBeEmpty)
			convey.So(cfg.InferenceTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(16384))
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"empty encoder":      func(c *config.Config) { c.EncoderPath = "" },
			"no classifier":      func(c *config.Config) { c.ModelPath = ""; c.ClassifierURL = "" },
			"negative timeout":   func(c *config.Config) { c.InferenceTimeoutMS = -1 },
			"zero body cap":      func(c *config.Config) { c.MaxBodyBytes = 0 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then it is rejected: "+name, func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a remote classifier alone is enough", func() {
			cfg := config.New()
			cfg.ModelPath = ""
			cfg.ClassifierURL = "http://models:9000"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
