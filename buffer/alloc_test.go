package buffer

import "testing"

func TestAcquireLargeChunkRoundTrips(t *testing.T) {
	b := New(DefaultPieceMinSize, 2<<20)
	data := b.Acquire(2 << 20)
	if len(data) != 2<<20 {
		t.Fatalf("got len %d, want %d", len(data), 2<<20)
	}
	for i := range data {
		data[i] = byte(i)
	}
	for i := range data {
		if data[i] != byte(i) {
			t.Fatalf("byte %d corrupted", i)
		}
	}
	b.Clear()
}

func TestCutSplittingLargeChunkPreservesBothHalves(t *testing.T) {
	b := New(DefaultPieceMinSize, 2<<20)
	data := b.Acquire(2 << 20)
	for i := range data {
		data[i] = byte(i)
	}

	tail, ok := b.Cut(1 << 20)
	if !ok {
		t.Fatal("Cut failed")
	}

	head := b.mustMerge()
	for i := 0; i < len(head); i++ {
		if head[i] != byte(i) {
			t.Fatalf("head byte %d corrupted", i)
		}
	}
	tailBytes := tail.mustMerge()
	for i := 0; i < len(tailBytes); i++ {
		if tailBytes[i] != byte((1<<20)+i) {
			t.Fatalf("tail byte %d corrupted", i)
		}
	}

	b.Clear()
	tail.Clear()
}
