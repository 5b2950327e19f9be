package rollup_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/rollup"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// recordingHandler captures dispatched requests for assertions.
type recordingHandler struct {
	mu       sync.Mutex
	portal   model.Account
	advances []model.EventMeta
	payloads [][]byte
	inspects [][]byte
	done     context.CancelFunc
}

func (h *recordingHandler) PinPortal(acct model.Account) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.portal = acct
	return nil
}

func (h *recordingHandler) Advance(_ context.Context, meta model.EventMeta, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advances = append(h.advances, meta)
	h.payloads = append(h.payloads, payload)
	return nil
}

func (h *recordingHandler) Inspect(_ context.Context, payload []byte) error {
	h.mu.Lock()
	h.inspects = append(h.inspects, payload)
	h.mu.Unlock()
	h.done()
	return nil
}

func TestHexHelpers(t *testing.T) {
	Convey("Given the 0x-hex payload helpers", t, func() {
		Convey("Bin2Hex and Hex2Bin round-trip", func() {
			raw := []byte{0x01, 0xff, 0x00}
			encoded := rollup.Bin2Hex(raw)
			So(encoded, ShouldEqual, "0x01ff00")

			decoded, err := rollup.Hex2Bin(encoded)
			So(err, ShouldBeNil)
			So(decoded, ShouldResemble, raw)
		})

		Convey("Str2Hex encodes UTF-8 text", func() {
			So(rollup.Str2Hex("hi"), ShouldEqual, "0x6869")
		})

		Convey("Hex2Bin rejects junk", func() {
			_, err := rollup.Hex2Bin("0xzz")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEmitEndpoints(t *testing.T) {
	Convey("Given a rollup server capturing posts", t, func() {
		type post struct {
			endpoint string
			body     map[string]string
		}
		var (
			mu    sync.Mutex
			posts []post
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			posts = append(posts, post{endpoint: r.URL.Path, body: body})
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := rollup.New(srv.URL)
		ctx := context.Background()
		dest, err := model.ParseAccount("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
		So(err, ShouldBeNil)

		Convey("When emitting a voucher, a notice and a report", func() {
			So(client.Voucher(ctx, model.Voucher{Destination: dest, Payload: []byte{0x01}}), ShouldBeNil)
			So(client.Notice(ctx, "hello"), ShouldBeNil)
			So(client.Report(ctx, "oops"), ShouldBeNil)

			Convey("Then each reaches its endpoint as 0x-hex", func() {
				mu.Lock()
				defer mu.Unlock()
				So(len(posts), ShouldEqual, 3)
				So(posts[0].endpoint, ShouldEqual, "/voucher")
				So(posts[0].body["address"], ShouldEqual, dest.String())
				So(posts[0].body["payload"], ShouldEqual, "0x01")
				So(posts[1].endpoint, ShouldEqual, "/notice")
				So(posts[1].body["payload"], ShouldEqual, rollup.Str2Hex("hello"))
				So(posts[2].endpoint, ShouldEqual, "/report")
				So(posts[2].body["payload"], ShouldEqual, rollup.Str2Hex("oops"))
			})
		})

		Convey("When the server refuses an emission", func() {
			refusing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer refusing.Close()

			err := rollup.New(refusing.URL).Notice(ctx, "hello")

			Convey("Then the error wraps the emit sentinel", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "status 400")
			})
		})
	})
}

func TestRunLoop(t *testing.T) {
	Convey("Given a rollup server with a scripted request sequence", t, func() {
		const portalHex = "0xdddddddddddddddddddddddddddddddddddddddd"
		const playerHex = "0x1111111111111111111111111111111111111111"

		script := []string{
			`{"request_type":"advance_state","data":{"metadata":{"msg_sender":"` + portalHex + `","epoch_index":0,"input_index":0,"block_number":1,"timestamp":100},"payload":"0x"}}`,
			`{"request_type":"advance_state","data":{"metadata":{"msg_sender":"` + playerHex + `","epoch_index":0,"input_index":1,"block_number":2,"timestamp":200},"payload":"0x6869"}}`,
			`{"request_type":"inspect_state","data":{"payload":"0x6869"}}`,
		}
		var (
			mu   sync.Mutex
			next int
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/finish" {
				w.WriteHeader(http.StatusOK)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if next >= len(script) {
				w.WriteHeader(http.StatusAccepted)
				return
			}
			body := script[next]
			next++
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		handler := &recordingHandler{done: cancel}
		client := rollup.New(srv.URL)

		Convey("When running the finish loop until the script ends", func() {
			err := client.Run(ctx, handler)

			Convey("Then the loop stops on context cancellation", func() {
				So(err, ShouldNotBeNil)
			})

			Convey("And the first input pinned the portal without dispatch", func() {
				handler.mu.Lock()
				defer handler.mu.Unlock()
				So(handler.portal.String(), ShouldEqual, portalHex)
				So(len(handler.advances), ShouldEqual, 1)
			})

			Convey("And the second input was dispatched with decoded payload", func() {
				handler.mu.Lock()
				defer handler.mu.Unlock()
				So(handler.advances[0].Sender.String(), ShouldEqual, playerHex)
				So(handler.advances[0].BlockNumber, ShouldEqual, 2)
				So(handler.advances[0].Timestamp, ShouldEqual, 200)
				So(string(handler.payloads[0]), ShouldEqual, "hi")
			})

			Convey("And the inspect payload reached the handler", func() {
				handler.mu.Lock()
				defer handler.mu.Unlock()
				So(len(handler.inspects), ShouldEqual, 1)
				So(string(handler.inspects[0]), ShouldEqual, "hi")
			})
		})
	})
}
