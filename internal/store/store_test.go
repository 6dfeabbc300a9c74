package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lithic/internal/store"
	"lithic/internal/testsupport"
)

func TestOpenCreatesSchemaAndRoundTrips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := &store.Record{
		SourcePath:      "/captures/flake-042.jpg",
		Operation:       store.OperationCompress,
		InputMediaType:  "image/jpeg",
		OutputMediaType: "image/jpeg",
		InputBytes:      3_200_000,
		OutputBytes:     1_400_000,
	}
	if err := st.RecordOperation(ctx, record); err != nil {
		t.Fatalf("RecordOperation failed: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected record ID to be assigned")
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be stamped")
	}

	fetched, err := st.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected to fetch inserted record")
	}
	if fetched.SourcePath != record.SourcePath || fetched.Operation != store.OperationCompress {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
	if fetched.InputBytes != 3_200_000 || fetched.OutputBytes != 1_400_000 {
		t.Fatalf("byte counts not preserved: %#v", fetched)
	}
	if fetched.SavedBytes() != 1_800_000 {
		t.Fatalf("SavedBytes = %d, want 1800000", fetched.SavedBytes())
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	fetched, err := st.GetByID(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched != nil {
		t.Fatalf("expected nil for missing record, got %#v", fetched)
	}
}

func TestRecordOperationRejectsUnknownOperation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.RecordOperation(context.Background(), &store.Record{Operation: "defragment"})
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
}

func TestRecordDetailRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := &store.Record{
		Operation:       store.OperationTranscode,
		InputMediaType:  "video/quicktime",
		OutputMediaType: "video/mp4",
		InputBytes:      48_000_000,
		OutputBytes:     3_900_000,
	}
	detail := map[string]any{"config": "h264-mp4", "bitrate_bps": float64(15_936_000)}
	if err := record.SetDetail(detail); err != nil {
		t.Fatalf("SetDetail failed: %v", err)
	}
	if err := st.RecordOperation(ctx, record); err != nil {
		t.Fatalf("RecordOperation failed: %v", err)
	}

	fetched, err := st.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	var decoded map[string]any
	if err := fetched.Detail(&decoded); err != nil {
		t.Fatalf("Detail failed: %v", err)
	}
	if decoded["config"] != "h264-mp4" {
		t.Fatalf("unexpected detail: %#v", decoded)
	}
	if decoded["bitrate_bps"] != float64(15_936_000) {
		t.Fatalf("unexpected bitrate detail: %#v", decoded)
	}
}

func TestRecentAndByOperation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	ops := []store.Operation{
		store.OperationCompress,
		store.OperationSketch,
		store.OperationCompress,
		store.OperationFrames,
	}
	for i, op := range ops {
		record := &store.Record{
			SourcePath: fmt.Sprintf("/captures/asset-%d", i),
			Operation:  op,
			InputBytes: int64(100 * (i + 1)),
		}
		if err := st.RecordOperation(ctx, record); err != nil {
			t.Fatalf("RecordOperation failed: %v", err)
		}
	}

	all, err := st.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}

	limited, err := st.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records, got %d", len(limited))
	}

	compressed, err := st.ByOperation(ctx, store.OperationCompress, 0)
	if err != nil {
		t.Fatalf("ByOperation failed: %v", err)
	}
	if len(compressed) != 2 {
		t.Fatalf("expected 2 compress records, got %d", len(compressed))
	}
	for _, record := range compressed {
		if record.Operation != store.OperationCompress {
			t.Fatalf("unexpected operation in filtered result: %q", record.Operation)
		}
	}

	if _, err := st.ByOperation(ctx, "defragment", 0); err == nil {
		t.Fatal("expected error for unknown operation filter")
	}
}

func TestSummaryAggregatesPerOperation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	inserts := []struct {
		op      store.Operation
		in, out int64
	}{
		{store.OperationCompress, 1000, 400},
		{store.OperationCompress, 2000, 900},
		{store.OperationSketch, 500, 300},
	}
	for _, ins := range inserts {
		record := &store.Record{Operation: ins.op, InputBytes: ins.in, OutputBytes: ins.out}
		if err := st.RecordOperation(ctx, record); err != nil {
			t.Fatalf("RecordOperation failed: %v", err)
		}
	}

	summary, err := st.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(summary))
	}
	byOp := map[store.Operation]store.OperationCount{}
	for _, entry := range summary {
		byOp[entry.Operation] = entry
	}
	compress := byOp[store.OperationCompress]
	if compress.Count != 2 || compress.InputBytes != 3000 || compress.OutputBytes != 1300 {
		t.Fatalf("unexpected compress summary: %#v", compress)
	}
}

func TestClearRemovesAllRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		record := &store.Record{Operation: store.OperationFrames}
		if err := st.RecordOperation(ctx, record); err != nil {
			t.Fatalf("RecordOperation failed: %v", err)
		}
	}

	deleted, err := st.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", deleted)
	}

	remaining, err := st.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty store, got %d records", len(remaining))
	}
}

func TestOpenRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_ = testsupport.MustOpenStore(t, cfg)

	second, err := store.Open(cfg)
	if err == nil {
		second.Close()
		t.Fatal("expected second open to fail while lock is held")
	}
	if !errors.Is(err, store.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
