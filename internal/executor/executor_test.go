package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/mcworld/mctrimmer/internal/pipeline"
	"github.com/mcworld/mctrimmer/internal/world"
)

func longField(name string, value int64) []byte {
	b := []byte{0x04, 0x00, byte(len(name))}
	b = append(b, name...)
	for shift := 56; shift >= 0; shift -= 8 {
		b = append(b, byte(value>>uint(shift)))
	}
	return b
}

func intField(name string, value int32) []byte {
	b := []byte{0x03, 0x00, byte(len(name))}
	b = append(b, name...)
	b = append(b, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	return b
}

const sector = 4096

// writeRegionFile writes a single-region file at path with one chunk at
// local index 0, carrying the given xPos/zPos and InhabitedTime. The slot
// is always index 0, so x and z should name a chunk at local (0, 0) of the
// region the file is written as (all callers pass 0, 0 for r.0.0).
func writeRegionFile(t *testing.T, path string, inhabited int64, x, z int32) {
	t.Helper()
	var body []byte
	body = append(body, intField("xPos", x)...)
	body = append(body, intField("zPos", z)...)
	body = append(body, longField("InhabitedTime", inhabited)...)

	raw := append([]byte{0x0A, 0x00, 0x00}, body...)
	raw = append(raw, 0x00)

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	length := uint32(compressed.Len() + 1)
	header := []byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length), 2}
	chunkSector := append(header, compressed.Bytes()...)
	padded := make([]byte, sector)
	copy(padded, chunkSector)

	data := make([]byte, 2*sector)
	data[0] = byte(2 >> 16)
	data[1] = byte(2 >> 8)
	data[2] = byte(2)
	data[3] = 1
	data = append(data, padded...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestGatherAndDeleteSelectedChunks(t *testing.T) {
	root := t.TempDir()
	writeRegionFile(t, filepath.Join(root, "region", "r.0.0.mca"), 600, 0, 0)

	manager := world.NewManager(world.NewPaths(root, "", ""))
	names, err := world.RegionFileNames(filepath.Join(root, "region"))
	if err != nil {
		t.Fatalf("RegionFileNames: %v", err)
	}

	ex := New(manager, names, 2)
	if err := ex.Gather(context.Background(), pipeline.StartNoneSelected); err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(ex.sel.available) != 1 {
		t.Fatalf("expected 1 available chunk, got %d", len(ex.sel.available))
	}

	p := pipeline.Pipeline{
		InputFolder: root,
		StartWith:   pipeline.StartNoneSelected,
		CommandChain: []pipeline.Step{
			{Command: pipeline.CmdExtendSelection, Condition: pipeline.Condition{MaximumInhabitedMinutes: floatPtr(1)}},
			{Command: pipeline.CmdDeleteSelectedChunks, Backup: pipeline.Backup{Destination: filepath.Join(root, "backup"), Mode: pipeline.BackupEntireRegion}},
		},
	}
	ex.sel = nil // force a fresh Gather through Run, matching CLI usage
	if err := ex.Run(context.Background(), p); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ex.sel.Size() != 0 {
		t.Fatalf("expected an empty selection after deletion, got %d", ex.sel.Size())
	}

	// The region file on disk should now have no chunks.
	reopened, err := manager.OpenFile("r.0.0.mca")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Chunks.Indices()) != 0 {
		t.Fatalf("expected the on-disk region to have no chunks left")
	}
	if _, err := os.Stat(filepath.Join(root, "backup", "region", "r.0.0.mca")); err != nil {
		t.Fatalf("expected a backup copy before deletion: %v", err)
	}
}

func TestMoveSelectedIntoFreshDestinationTree(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(t.TempDir(), "new-world") // does not exist yet
	writeRegionFile(t, filepath.Join(root, "region", "r.0.0.mca"), 600, 0, 0)

	manager := world.NewManager(world.NewPaths(root, "", ""))
	names, err := world.RegionFileNames(filepath.Join(root, "region"))
	if err != nil {
		t.Fatalf("RegionFileNames: %v", err)
	}

	ex := New(manager, names, 2)
	p := pipeline.Pipeline{
		InputFolder: root,
		StartWith:   pipeline.StartAllSelected,
		CommandChain: []pipeline.Step{
			{Command: pipeline.CmdMoveSelected, Destination: dest, EntireRegion: false},
		},
	}
	if err := ex.Run(context.Background(), p); err != nil {
		t.Fatalf("Run: %v", err)
	}

	dstManager := world.NewManager(world.NewPaths(dest, "", ""))
	moved, err := dstManager.OpenFile("r.0.0.mca")
	if err != nil {
		t.Fatalf("open moved region: %v", err)
	}
	if len(moved.Chunks.Indices()) != 1 {
		t.Fatalf("expected the moved chunk to land in the fresh destination tree, got %d chunks", len(moved.Chunks.Indices()))
	}

	src, err := manager.OpenFile("r.0.0.mca")
	if err != nil {
		t.Fatalf("reopen source: %v", err)
	}
	if len(src.Chunks.Indices()) != 0 {
		t.Fatalf("expected the source region to have no chunks left after the move")
	}
}

func TestMoveSelectedEntireRegionIntoFreshDestinationTree(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(t.TempDir(), "new-world")
	writeRegionFile(t, filepath.Join(root, "region", "r.0.0.mca"), 600, 0, 0)

	manager := world.NewManager(world.NewPaths(root, "", ""))
	names, err := world.RegionFileNames(filepath.Join(root, "region"))
	if err != nil {
		t.Fatalf("RegionFileNames: %v", err)
	}

	ex := New(manager, names, 2)
	p := pipeline.Pipeline{
		InputFolder: root,
		StartWith:   pipeline.StartAllSelected,
		CommandChain: []pipeline.Step{
			{Command: pipeline.CmdMoveSelected, Destination: dest, EntireRegion: true},
		},
	}
	if err := ex.Run(context.Background(), p); err != nil {
		t.Fatalf("Run: %v", err)
	}

	dstManager := world.NewManager(world.NewPaths(dest, "", ""))
	moved, err := dstManager.OpenFile("r.0.0.mca")
	if err != nil {
		t.Fatalf("open moved region: %v", err)
	}
	if len(moved.Chunks.Indices()) != 1 {
		t.Fatalf("expected the whole region to land in the fresh destination tree")
	}
}
