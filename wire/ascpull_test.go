package wire

import (
	"testing"

	"github.com/stjet/rsban-node-sub005/primitives"
)

func TestAscPullAckValidateAcceptsWithinCaps(t *testing.T) {
	ack := &AscPullAck{
		ID:   1,
		Kind: AscPullBlocks,
		Blocks: []BlockEntry{
			{TypeTag: 1, Payload: []byte("a")},
			{TypeTag: NotABlock},
		},
	}
	if err := ack.Validate(); err != nil {
		t.Fatalf("expected a within-cap ack to validate, got %v", err)
	}
}

func TestAscPullAckValidateRejectsTooManyBlocks(t *testing.T) {
	blocks := make([]BlockEntry, MaxBlocksPerAck+1)
	ack := &AscPullAck{ID: 1, Kind: AscPullBlocks, Blocks: blocks}

	if err := ack.Validate(); err == nil {
		t.Fatalf("expected validation to reject a block count over MaxBlocksPerAck")
	}
}

func TestAscPullAckValidateRejectsTooManyFrontiers(t *testing.T) {
	frontiers := make([]FrontierEntry, MaxFrontiersPerAck+1)
	ack := &AscPullAck{ID: 1, Kind: AscPullFrontiers, Frontiers: frontiers}

	if err := ack.Validate(); err == nil {
		t.Fatalf("expected validation to reject a frontier count over MaxFrontiersPerAck")
	}
}

func TestAscPullReqBlocksShapeCarriesStartAndCount(t *testing.T) {
	var start primitives.Hash
	start[0] = 0x9

	req := AscPullReq{
		ID:   42,
		Kind: AscPullBlocks,
		Blocks: &BlocksReq{
			Start:     start,
			Count:     32,
			Ascending: true,
		},
	}

	if req.Blocks == nil || req.Blocks.Start != start || req.Blocks.Count != 32 || !req.Blocks.Ascending {
		t.Fatalf("unexpected Blocks request shape: %+v", req.Blocks)
	}
	if req.AccountInfo != nil || req.Frontiers != nil {
		t.Fatalf("expected only the Blocks variant to be set")
	}
}

func TestBlockEntryTerminatorIsNotABlock(t *testing.T) {
	if NotABlock != 0 {
		t.Fatalf("expected NotABlock terminator tag to be 0, got %d", NotABlock)
	}

	entries := []BlockEntry{
		{TypeTag: 1, Payload: []byte("open")},
		{TypeTag: 1, Payload: []byte("send")},
		{TypeTag: NotABlock},
		{TypeTag: 1, Payload: []byte("unreachable")},
	}

	var delivered int
	for _, e := range entries {
		if e.TypeTag == NotABlock {
			break
		}
		delivered++
	}
	if delivered != 2 {
		t.Fatalf("expected exactly 2 entries before the terminator, got %d", delivered)
	}
}
