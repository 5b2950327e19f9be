package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Get returns a usable logger", func() {
			log := Get()
			So(log, ShouldNotBeNil)
			So(func() {
				log.Info(context.Background(), "message", String("key", "value"), Int("n", 1))
			}, ShouldNotPanic)
		})

		Convey("Named returns a grouped logger", func() {
			named := Named("rollup")
			So(named, ShouldNotBeNil)
			So(func() {
				named.Warn(context.Background(), "message", Error(errors.New("boom")))
			}, ShouldNotPanic)
		})

		Convey("Field constructors carry their keys", func() {
			So(String("a", "b").Key, ShouldEqual, "a")
			So(Int64("n", 5).Value, ShouldEqual, int64(5))
			So(Uint64("u", 5).Value, ShouldEqual, uint64(5))
			So(Float64("f", 1.5).Value, ShouldEqual, 1.5)
			So(Error(errors.New("x")).Key, ShouldEqual, "error")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the level parser", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Known levels parse case-insensitively", func() {
			So(SetLevelString("debug"), ShouldBeNil)
			So(SetLevelString("INFO"), ShouldBeNil)
			So(SetLevelString("warning"), ShouldBeNil)
			So(SetLevelString("error"), ShouldBeNil)
			So(SetLevelString(""), ShouldBeNil)
		})

		Convey("Unknown levels are rejected", func() {
			So(SetLevelString("verbose"), ShouldNotBeNil)
		})

		Convey("SetLevel applies directly", func() {
			So(func() { SetLevel(slog.LevelDebug) }, ShouldNotPanic)
		})
	})
}
