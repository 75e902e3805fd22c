package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/cujulink/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverSQLite)
			convey.So(cfg.SuggestLimit, convey.ShouldEqual, 5)
			convey.So(cfg.SuggestCutoff, convey.ShouldEqual, 0.8)
			convey.So(cfg.SnapshotCache, convey.ShouldBeTrue)
			convey.So(cfg.FindTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.StorePath(), convey.ShouldEqual, "players.db")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the store driver is unknown", func() {
			cfg.StoreDriver = "postgres"
			err := cfg.Validate()

			convey.Convey("Then it is rejected with the koanf key name", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "store_driver must be one of")
			})
		})

		convey.Convey("When bolt is selected without a path", func() {
			cfg.StoreDriver = config.DriverBolt
			cfg.BoltPath = ""
			err := cfg.Validate()

			convey.Convey("Then the bolt path is required", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "bolt_path must not be empty")
			})
		})

		convey.Convey("When bolt is selected with a path", func() {
			cfg.StoreDriver = config.DriverBolt
			cfg.SQLitePath = ""

			convey.Convey("Then the sqlite path is not required", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.StorePath(), convey.ShouldEqual, "players.bolt")
			})
		})

		convey.Convey("When several values are out of range", func() {
			cfg.SuggestLimit = 0
			cfg.SuggestCutoff = 1.5
			cfg.MaxChainLength = 1
			err := cfg.Validate()

			convey.Convey("Then every offending key is reported", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "suggest_limit")
				convey.So(err.Error(), convey.ShouldContainSubstring, "suggest_cutoff")
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_chain_length")
			})
		})
	})
}

func TestConfig_DumpWatch(t *testing.T) {
	convey.Convey("Given a config that watches the dump", t, func() {
		cfg := config.New()
		cfg.DumpWatch = true

		convey.Convey("When no dump path is set", func() {
			err := cfg.Validate()

			convey.Convey("Then dump_path is reported", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "dump_path")
			})
		})

		convey.Convey("When a dump path is set", func() {
			cfg.DumpPath = "players.txt"

			convey.Convey("Then the config is valid and the debounce defaults apply", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.ImportDebounce(), convey.ShouldEqual, 500*time.Millisecond)
			})
		})
	})
}

func TestConfig_Metrics(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then metrics are on with the service namespace", func() {
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "cujulink")
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
		})

		convey.Convey("When a histogram bucket is not positive", func() {
			cfg.MetricsBucketsMS = []float64{1, 0}
			err := cfg.Validate()

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_buckets_ms")
			})
		})
	})
}
