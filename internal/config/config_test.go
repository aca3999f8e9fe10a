package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/ewi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DataDir, convey.ShouldEqual, ".usr")
			convey.So(cfg.JobDir, convey.ShouldEqual, ".jobs")
			convey.So(cfg.FileExt, convey.ShouldEqual, ".txt")
			convey.So(cfg.AtomicExport, convey.ShouldBeTrue)
			convey.So(cfg.ReadTimeout(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.WriteTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
