// Command gen-inputs renders rollup input payloads as 0x-prefixed hex,
// ready to be sent to a local rollup server while testing the node by
// hand.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/rollup"
	"github.com/prototyp3-dev/ornithologist/internal/domain/duel"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// Asset contract action bytes.
const (
	actionBirdwatch     = 0x01
	actionRegisterToken = 0x02
)

func main() {
	var (
		kind     = flag.String("kind", "", "Input kind: birdwatch, register, commit, duel-key")
		account  = flag.String("account", "", "Observer or challenger account address")
		opponent = flag.String("opponent", "", "Opponent account address (duel-key)")
		bird     = flag.String("bird", "", "Bird id (register, commit)")
		nonce    = flag.String("nonce", "", "Commit nonce (commit)")
		token    = flag.String("token", "0", "ERC-721 token id, decimal (register)")
		x        = flag.Float64("x", 0, "Observation longitude (birdwatch)")
		y        = flag.Float64("y", 0, "Observation latitude (birdwatch)")
		radius   = flag.Float64("r", 1, "Observation radius (birdwatch)")
		distance = flag.Float64("d", 5, "Distance walked in meters (birdwatch)")
		timespan = flag.Int64("t", 600, "Birdwatching timespan in seconds (birdwatch)")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || *kind == "" {
		showHelp()
		return
	}

	out, err := render(*kind, renderArgs{
		account:  *account,
		opponent: *opponent,
		bird:     *bird,
		nonce:    *nonce,
		token:    *token,
		x:        *x,
		y:        *y,
		radius:   *radius,
		distance: *distance,
		timespan: *timespan,
	})
	if err != nil {
		os.Stderr.WriteString("gen-inputs: " + err.Error() + "\n")
		os.Exit(1)
	}
	fmt.Println(out)
}

type renderArgs struct {
	account  string
	opponent string
	bird     string
	nonce    string
	token    string
	x        float64
	y        float64
	radius   float64
	distance float64
	timespan int64
}

func render(kind string, a renderArgs) (string, error) {
	switch kind {
	case "birdwatch":
		body, err := json.Marshal(map[string]any{
			"x": a.x, "y": a.y, "r": a.radius, "d": a.distance, "t": a.timespan, "a": a.account,
		})
		if err != nil {
			return "", err
		}
		return rollup.Bin2Hex(append([]byte{actionBirdwatch}, body...)), nil

	case "register":
		if a.bird == "" {
			return "", fmt.Errorf("register needs -bird")
		}
		id, ok := new(big.Int).SetString(a.token, 10)
		if !ok {
			return "", fmt.Errorf("invalid token id %q", a.token)
		}
		payload := append([]byte{actionRegisterToken}, common.LeftPadBytes(id.Bytes(), 32)...)
		payload = append(payload, []byte(a.bird)...)
		return rollup.Bin2Hex(payload), nil

	case "commit":
		if a.bird == "" || a.nonce == "" {
			return "", fmt.Errorf("commit needs -bird and -nonce")
		}
		return duel.Commitment(model.BirdID(a.bird), a.nonce), nil

	case "duel-key":
		c, err := model.ParseAccount(a.account)
		if err != nil {
			return "", err
		}
		o, err := model.ParseAccount(a.opponent)
		if err != nil {
			return "", err
		}
		key, err := duel.CanonicalKey(c, o)
		if err != nil {
			return "", err
		}
		return string(key), nil

	default:
		return "", fmt.Errorf("unknown kind %q", kind)
	}
}

func showHelp() {
	os.Stdout.WriteString(`Ornithologist Input Generator
=============================

Renders rollup input payloads as 0x-prefixed hex for manual testing.

Usage:
  go run cmd/gen-inputs/main.go -kind KIND [options]

Kinds:
  birdwatch   Asset-contract birdwatch input (-account, -x, -y, -r, -d, -t)
  register    Asset-contract token registration (-bird, -token)
  commit      Duel commitment digest (-bird, -nonce)
  duel-key    Canonical duel key for a pair (-account, -opponent)

Examples:
  go run cmd/gen-inputs/main.go -kind birdwatch -account 0xabc... -x -47.9 -y -15.8 -t 1200
  go run cmd/gen-inputs/main.go -kind commit -bird 5a3e... -nonce 42
`)
}
