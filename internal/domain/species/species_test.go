package species_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/species"
)

func testRows() []species.Species {
	return []species.Species{
		{
			Key:     "rupornis_magnirostris",
			Code:    "roahaw",
			Density: 5,
			Range:   species.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			Traits:  map[string]float64{"wing.length": 230, "mass": 270},
		},
		{
			Key:     "pitangus_sulphuratus",
			Code:    "grekis",
			Density: 40,
			Range:   species.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			Traits:  map[string]float64{"wing.length": 110, "mass": 60},
		},
		{
			Key:     "spheniscus_magellanicus",
			Code:    "magpen",
			Density: 12,
			Range:   species.Box{MinX: 100, MinY: 100, MaxX: 120, MaxY: 120},
			Traits:  map[string]float64{"wing.length": 180, "mass": 4400},
		},
	}
}

func TestBoxIntersectsCircle(t *testing.T) {
	Convey("Given a unit-ish range box", t, func() {
		box := species.Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

		Convey("A circle centered inside always intersects", func() {
			So(box.IntersectsCircle(5, 5, 0.1), ShouldBeTrue)
		})

		Convey("A circle touching an edge intersects", func() {
			So(box.IntersectsCircle(-2, 5, 2), ShouldBeTrue)
		})

		Convey("A circle near a corner respects euclidean distance", func() {
			So(box.IntersectsCircle(-3, -4, 5), ShouldBeTrue)
			So(box.IntersectsCircle(-3, -4, 4.9), ShouldBeFalse)
		})

		Convey("A far circle does not intersect", func() {
			So(box.IntersectsCircle(100, 100, 1), ShouldBeFalse)
		})
	})
}

func TestTableLookups(t *testing.T) {
	Convey("Given a loaded trait table", t, func() {
		table := species.NewTable(testRows())

		Convey("Lookup finds rows by key", func() {
			s, ok := table.Lookup("pitangus_sulphuratus")
			So(ok, ShouldBeTrue)
			So(s.Code, ShouldEqual, "grekis")

			_, ok = table.Lookup("dodo")
			So(ok, ShouldBeFalse)
		})

		Convey("Accepted admits only the fixed duel trait set", func() {
			So(table.Accepted("wing.length"), ShouldBeTrue)
			So(table.Accepted("mass"), ShouldBeTrue)
			So(table.Accepted("hand-wing.index"), ShouldBeTrue)
			So(table.Accepted("plumage.color"), ShouldBeFalse)
			So(table.Accepted(""), ShouldBeFalse)
		})

		Convey("Value resolves a trait or fails with not found", func() {
			v, err := table.Value("rupornis_magnirostris", "mass")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 270)

			_, err = table.Value("dodo", "mass")
			So(errors.Is(err, fault.ErrNotFound), ShouldBeTrue)

			_, err = table.Value("rupornis_magnirostris", "tail.length")
			So(errors.Is(err, fault.ErrNotFound), ShouldBeTrue)
		})

		Convey("Vector returns a defensive copy", func() {
			v, err := table.Vector("pitangus_sulphuratus")
			So(err, ShouldBeNil)
			v["mass"] = 0

			again, err := table.Vector("pitangus_sulphuratus")
			So(err, ShouldBeNil)
			So(again["mass"], ShouldEqual, 60)
		})
	})
}

func TestLoadTable(t *testing.T) {
	Convey("Given a YAML dataset on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "species.yaml")
		doc := []byte(`species:
  - key: rupornis_magnirostris
    code: roahaw
    density: 5
    range: {min_x: 0, min_y: 0, max_x: 10, max_y: 10}
    traits:
      wing.length: 230
      mass: 270
`)
		So(os.WriteFile(path, doc, 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			table, err := species.LoadTable(path)

			Convey("Then the rows are available", func() {
				So(err, ShouldBeNil)
				s, ok := table.Lookup("rupornis_magnirostris")
				So(ok, ShouldBeTrue)
				So(s.Density, ShouldEqual, 5)
				So(s.Range.MaxX, ShouldEqual, 10)
				So(s.Traits["mass"], ShouldEqual, 270)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := species.LoadTable(filepath.Join(dir, "missing.yaml"))
			So(err, ShouldNotBeNil)
		})

		Convey("When the dataset is empty", func() {
			empty := filepath.Join(dir, "empty.yaml")
			So(os.WriteFile(empty, []byte("species: []\n"), 0o600), ShouldBeNil)
			_, err := species.LoadTable(empty)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestAssign(t *testing.T) {
	Convey("Given a density-weighted assigner", t, func() {
		table := species.NewTable(testRows())
		assigner := species.NewAssigner(table, species.WithEncounterInterval(60))
		ctx := context.Background()

		obs := species.Observation{X: 5, Y: 5, Radius: 1, Distance: 500, Timespan: 600}

		Convey("When assigning twice with the same seed", func() {
			first, err1 := assigner.Assign(ctx, obs, 424242)
			second, err2 := assigner.Assign(ctx, obs, 424242)

			Convey("Then the result is identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldEqual, second)
			})

			Convey("And the species lives in the observed region", func() {
				So(first, ShouldBeIn, "rupornis_magnirostris", "pitangus_sulphuratus")
			})
		})

		Convey("When the region holds no species", func() {
			far := species.Observation{X: -500, Y: -500, Radius: 1, Timespan: 600}
			_, err := assigner.Assign(ctx, far, 1)

			Convey("Then assignment fails with not found", func() {
				So(errors.Is(err, fault.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the timespan is shorter than one encounter", func() {
			brief := species.Observation{X: 5, Y: 5, Radius: 1, Timespan: 59}
			_, err := assigner.Assign(ctx, brief, 1)

			Convey("Then assignment fails with invalid input", func() {
				So(errors.Is(err, fault.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When only one species lives in the region", func() {
			south := species.Observation{X: 110, Y: 110, Radius: 1, Timespan: 600}
			key, err := assigner.Assign(ctx, south, 7)

			Convey("Then every draw lands on it", func() {
				So(err, ShouldBeNil)
				So(key, ShouldEqual, "spheniscus_magellanicus")
			})
		})
	})
}
