package duel_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/repository"
	"github.com/prototyp3-dev/ornithologist/internal/domain/duel"
	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
	"github.com/prototyp3-dev/ornithologist/internal/domain/species"
)

func mustAccount(s string) model.Account {
	a, err := model.ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

var (
	alice = mustAccount("0x1111111111111111111111111111111111111111")
	bob   = mustAccount("0x2222222222222222222222222222222222222222")
)

func testTable() *species.Table {
	return species.NewTable([]species.Species{
		{
			Key:     "rupornis_magnirostris",
			Code:    "roahaw",
			Density: 8,
			Range:   species.Box{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10},
			Traits:  map[string]float64{"wing.length": 230, "mass": 270},
		},
		{
			Key:     "pitangus_sulphuratus",
			Code:    "grekis",
			Density: 20,
			Range:   species.Box{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10},
			Traits:  map[string]float64{"wing.length": 110, "mass": 60},
		},
		{
			Key:     "tyrannus_melancholicus",
			Code:    "trokin",
			Density: 15,
			Range:   species.Box{MinX: -10, MinY: -10, MaxX: 10, MaxY: 10},
			Traits:  map[string]float64{"wing.length": 110, "mass": 37},
		},
	})
}

func TestCanonicalKey(t *testing.T) {
	Convey("Given two distinct accounts", t, func() {
		Convey("When deriving the key in both orders", func() {
			k1, err1 := duel.CanonicalKey(alice, bob)
			k2, err2 := duel.CanonicalKey(bob, alice)

			Convey("Then both derivations succeed and agree", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(k1, ShouldEqual, k2)
				So(len(k1), ShouldEqual, 10)
			})
		})

		Convey("When deriving a key against oneself", func() {
			_, err := duel.CanonicalKey(alice, alice)

			Convey("Then it is rejected as invalid input", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, fault.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestInitiate(t *testing.T) {
	Convey("Given a registry with birds on both sides", t, func() {
		reg := repository.New()
		table := testTable()
		engine := duel.NewEngine(reg, table)

		birdA := reg.CreateBird(alice, "rupornis_magnirostris")
		birdB := reg.CreateBird(bob, "pitangus_sulphuratus")
		commit := duel.Commitment(birdA.ID, "42")

		Convey("When alice initiates a duel with a valid trait", func() {
			d, err := engine.Initiate(1000, alice, bob, commit, "wing.length", true)

			Convey("Then the duel is live and indexed for both parties", func() {
				So(err, ShouldBeNil)
				So(d.Challenger, ShouldResemble, alice)
				So(d.Opponent, ShouldResemble, bob)
				So(d.Bird1, ShouldBeEmpty)
				So(d.Bird2, ShouldBeEmpty)
				So(reg.LiveDuels(), ShouldEqual, 1)
				So(reg.Ornithologist(alice).LiveDuels[d.Key], ShouldEqual, d)
				So(reg.Ornithologist(bob).LiveDuels[d.Key], ShouldEqual, d)
			})

			Convey("And a second initiation on the same pair is rejected", func() {
				So(err, ShouldBeNil)
				_, err := engine.Initiate(1001, bob, alice, duel.Commitment(birdB.ID, "7"), "mass", false)
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
			})
		})

		Convey("When the trait is not in the accepted set", func() {
			_, err := engine.Initiate(1000, alice, bob, commit, "plumage.color", true)

			Convey("Then initiation fails with invalid input", func() {
				So(errors.Is(err, fault.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the opponent has an empty catalogue", func() {
			carol := mustAccount("0x3333333333333333333333333333333333333333")
			_, err := engine.Initiate(1000, alice, carol, commit, "wing.length", true)

			Convey("Then initiation fails with invalid state", func() {
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
			})
		})
	})
}

func TestCancel(t *testing.T) {
	Convey("Given a proposed duel", t, func() {
		reg := repository.New()
		engine := duel.NewEngine(reg, testTable())
		birdA := reg.CreateBird(alice, "rupornis_magnirostris")
		birdB := reg.CreateBird(bob, "pitangus_sulphuratus")
		d, err := engine.Initiate(1000, alice, bob, duel.Commitment(birdA.ID, "42"), "wing.length", true)
		So(err, ShouldBeNil)

		Convey("When the challenger cancels before a responder bird", func() {
			err := engine.Cancel(d)

			Convey("Then the duel vanishes with no history", func() {
				So(err, ShouldBeNil)
				So(reg.LiveDuels(), ShouldEqual, 0)
				So(reg.Ornithologist(alice).Duels, ShouldBeEmpty)
				So(reg.Ornithologist(bob).Duels, ShouldBeEmpty)
			})
		})

		Convey("When the opponent has already chosen a bird", func() {
			So(engine.ChooseResponderBird(d, 1100, birdB.ID), ShouldBeNil)
			err := engine.Cancel(d)

			Convey("Then cancellation is rejected", func() {
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
			})
		})
	})
}

func TestRevealAndResolve(t *testing.T) {
	Convey("Given a duel awaiting reveal", t, func() {
		ctx := context.Background()
		reg := repository.New()
		engine := duel.NewEngine(reg, testTable())
		birdA := reg.CreateBird(alice, "rupornis_magnirostris") // wing 230
		birdB := reg.CreateBird(bob, "pitangus_sulphuratus")    // wing 110
		nonce := "super-secret"
		d, err := engine.Initiate(1000, alice, bob, duel.Commitment(birdA.ID, nonce), "wing.length", true)
		So(err, ShouldBeNil)
		So(engine.ChooseResponderBird(d, 1100, birdB.ID), ShouldBeNil)

		Convey("When the challenger reveals the committed bird", func() {
			err := engine.Reveal(ctx, d, 1200, birdA.ID, nonce)

			Convey("Then the larger wing wins and the duel is evicted", func() {
				So(err, ShouldBeNil)
				So(d.Resolved, ShouldBeTrue)
				So(d.Winner, ShouldEqual, birdA.ID)
				So(d.WinnerAccount, ShouldResemble, alice)
				So(reg.LiveDuels(), ShouldEqual, 0)
				So(birdA.Wins(), ShouldEqual, 1)
				So(birdB.Wins(), ShouldEqual, 0)
				So(reg.Ornithologist(alice).Wins(), ShouldEqual, 1)
			})
		})

		Convey("When the comparison direction is reversed", func() {
			carol := mustAccount("0x3333333333333333333333333333333333333333")
			birdC := reg.CreateBird(carol, "tyrannus_melancholicus") // mass 37
			d2, err := engine.Initiate(1000, carol, bob, duel.Commitment(birdC.ID, nonce), "mass", false)
			So(err, ShouldBeNil)
			So(d2.Key, ShouldNotEqual, d.Key)
			So(engine.ChooseResponderBird(d2, 1100, birdB.ID), ShouldBeNil)
			So(engine.Reveal(ctx, d2, 1200, birdC.ID, nonce), ShouldBeNil)

			Convey("Then the smaller mass wins", func() {
				So(d2.Winner, ShouldEqual, birdC.ID)
			})
		})

		Convey("When the reveal does not match the commitment", func() {
			err := engine.Reveal(ctx, d, 1200, birdA.ID, "wrong-nonce")

			Convey("Then the opponent wins by forfeiture", func() {
				So(err, ShouldBeNil)
				So(d.Resolved, ShouldBeTrue)
				So(d.Winner, ShouldEqual, birdB.ID)
				So(d.Bird1, ShouldBeEmpty)
				So(reg.LiveDuels(), ShouldEqual, 0)
			})
		})

		Convey("When both birds tie on the trait", func() {
			carol := mustAccount("0x3333333333333333333333333333333333333333")
			birdC := reg.CreateBird(carol, "tyrannus_melancholicus") // wing 110, same as grekis
			d2, err := engine.Initiate(1000, carol, bob, duel.Commitment(birdC.ID, nonce), "wing.length", true)
			So(err, ShouldBeNil)
			So(engine.ChooseResponderBird(d2, 1100, birdB.ID), ShouldBeNil)
			So(engine.Reveal(ctx, d2, 1200, birdC.ID, nonce), ShouldBeNil)

			Convey("Then the duel finishes as a draw with no winner", func() {
				So(d2.Resolved, ShouldBeTrue)
				So(d2.Winner, ShouldBeEmpty)
				So(d2.WinnerAccount.IsZero(), ShouldBeTrue)
				So(len(birdC.Duels), ShouldEqual, 1)
				So(len(reg.Ornithologist(carol).Duels), ShouldEqual, 1)
				So(reg.LiveDuels(), ShouldEqual, 1) // alice/bob duel still live
			})
		})

		Convey("When reveal comes before the opponent chose a bird", func() {
			carol := mustAccount("0x3333333333333333333333333333333333333333")
			birdC := reg.CreateBird(carol, "tyrannus_melancholicus")
			d2, err := engine.Initiate(1000, carol, bob, duel.Commitment(birdC.ID, nonce), "mass", true)
			So(err, ShouldBeNil)
			err = engine.Reveal(ctx, d2, 1200, birdC.ID, nonce)

			Convey("Then reveal is rejected", func() {
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
			})
		})
	})
}

func TestClaimTimeout(t *testing.T) {
	Convey("Given a duel with a chosen responder bird at t=1100", t, func() {
		reg := repository.New()
		engine := duel.NewEngine(reg, testTable(), duel.WithTimeout(600))
		birdA := reg.CreateBird(alice, "rupornis_magnirostris")
		birdB := reg.CreateBird(bob, "pitangus_sulphuratus")
		d, err := engine.Initiate(1000, alice, bob, duel.Commitment(birdA.ID, "n"), "wing.length", true)
		So(err, ShouldBeNil)
		So(engine.ChooseResponderBird(d, 1100, birdB.ID), ShouldBeNil)

		Convey("When the claim arrives before the window closes", func() {
			err := engine.ClaimTimeout(d, 1699)

			Convey("Then it is rejected and the duel stays live", func() {
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
				So(reg.LiveDuels(), ShouldEqual, 1)
			})
		})

		Convey("When the claim arrives exactly at the threshold", func() {
			err := engine.ClaimTimeout(d, 1700)

			Convey("Then the opponent wins", func() {
				So(err, ShouldBeNil)
				So(d.Winner, ShouldEqual, birdB.ID)
				So(reg.LiveDuels(), ShouldEqual, 0)
			})
		})

		Convey("When no responder bird was chosen yet", func() {
			carol := mustAccount("0x3333333333333333333333333333333333333333")
			birdC := reg.CreateBird(carol, "tyrannus_melancholicus")
			d2, err := engine.Initiate(1000, carol, bob, duel.Commitment(birdC.ID, "n"), "mass", true)
			So(err, ShouldBeNil)
			err = engine.ClaimTimeout(d2, 5000)

			Convey("Then the claim is rejected", func() {
				So(errors.Is(err, fault.ErrInvalidState), ShouldBeTrue)
			})
		})
	})
}
