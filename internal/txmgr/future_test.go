package txmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestRaceSettlesOnce(t *testing.T) {
	r := newRace()

	if !r.resolveHash(common.HexToHash("0x01")) {
		t.Fatalf("first resolve should settle")
	}
	if r.resolveHash(common.HexToHash("0x02")) {
		t.Fatalf("second resolve must be ignored")
	}
	if r.reject(errors.New("late error")) {
		t.Fatalf("reject after resolve must be ignored")
	}

	if err := r.wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if r.hash != common.HexToHash("0x01") {
		t.Fatalf("hash overwritten: %s", r.hash)
	}
	if !r.resolved() {
		t.Fatalf("race should report resolved")
	}
}

func TestRaceRejectThenResolveIgnored(t *testing.T) {
	r := newRace()
	wantErr := errors.New("boom")

	if !r.reject(wantErr) {
		t.Fatalf("first reject should settle")
	}
	if r.resolveReceipt(&types.Receipt{}) {
		t.Fatalf("resolve after reject must be ignored")
	}

	if err := r.wait(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("wait: %v", err)
	}
	if r.resolved() {
		t.Fatalf("rejected race must not report resolved")
	}
}

func TestRaceWaitHonorsContext(t *testing.T) {
	r := newRace()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("wait: %v", err)
	}
}
