package world

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcworld/mctrimmer/internal/entities"
	"github.com/mcworld/mctrimmer/internal/region"
)

// Paths bundles the directory tree a trim/pipeline run reads from and
// writes to: an input root (always required), an optional output root
// (defaults to the input root, i.e. in-place editing), and an optional
// backup root.
type Paths struct {
	InpRegion      string
	InpEntities    string
	OutpRegion     string
	OutpEntities   string
	BackupRegion   string // empty means "no backup"
	BackupEntities string
}

// NewPaths derives the region/entities subtrees from inp, outp, and
// backup roots. An empty outp means in-place editing (outp == inp); an
// empty backup means no backup is taken.
func NewPaths(inp, outp, backup string) Paths {
	if outp == "" {
		outp = inp
	}
	p := Paths{
		InpRegion:    filepath.Join(inp, "region"),
		InpEntities:  filepath.Join(inp, "entities"),
		OutpRegion:   filepath.Join(outp, "region"),
		OutpEntities: filepath.Join(outp, "entities"),
	}
	if backup != "" {
		p.BackupRegion = filepath.Join(backup, "region")
		p.BackupEntities = filepath.Join(backup, "entities")
	}
	return p
}

// Manager owns a Paths bundle and implements the open/save policy for
// regions: per-region work is created and destroyed here, never shared
// between workers.
type Manager struct {
	paths Paths
}

// NewManager returns a Manager rooted at paths.
func NewManager(paths Paths) *Manager {
	return &Manager{paths: paths}
}

// WithBackupRoot returns a copy of m whose backup paths are derived from
// root instead of whatever backup configuration m was built with. Used by
// pipeline steps that specify a per-step backup destination distinct from
// the run's overall backup root.
func (m *Manager) WithBackupRoot(root string) *Manager {
	p := m.paths
	p.BackupRegion = filepath.Join(root, "region")
	p.BackupEntities = filepath.Join(root, "entities")
	return &Manager{paths: p}
}

// OpenFile loads the named region from the input tree, substituting an
// empty entities file when the sibling is absent.
func (m *Manager) OpenFile(fileName string) (*Region, error) {
	chunkFile, err := region.LoadFile(filepath.Join(m.paths.InpRegion, fileName))
	if err != nil {
		return nil, fmt.Errorf("open region %s: %w", fileName, err)
	}
	if chunkFile == nil {
		chunkFile = region.NewEmptyFile()
	}

	entPath := filepath.Join(m.paths.InpEntities, fileName)
	var entFile *entities.File
	if _, statErr := os.Stat(entPath); statErr == nil {
		entFile, err = entities.LoadFile(entPath)
		if err != nil {
			return nil, fmt.Errorf("open entities %s: %w", fileName, err)
		}
	}
	if entFile == nil {
		entFile = entities.NewEmpty()
	}

	return &Region{FileName: fileName, Chunks: chunkFile, Entities: entFile}, nil
}

// SaveToFile applies the save policy: dirty sides are backed up (if
// configured) and written to the output tree; unchanged sides are copied
// verbatim to the output tree whenever it differs from the input tree, so
// an untouched region still appears in a separate output directory.
func (m *Manager) SaveToFile(r *Region, fileName string) error {
	if err := m.saveRegionSide(r, fileName); err != nil {
		return err
	}
	return m.saveEntitiesSide(r, fileName)
}

func (m *Manager) saveRegionSide(r *Region, fileName string) error {
	inp := filepath.Join(m.paths.InpRegion, fileName)
	outp := filepath.Join(m.paths.OutpRegion, fileName)

	if r.Chunks.Dirty() {
		if m.paths.BackupRegion != "" {
			if err := copyFile(inp, filepath.Join(m.paths.BackupRegion, fileName)); err != nil {
				return fmt.Errorf("backup region %s: %w", fileName, err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(outp), 0o755); err != nil {
			return fmt.Errorf("save region %s: %w", fileName, err)
		}
		if err := r.Chunks.SaveToFile(outp); err != nil {
			return fmt.Errorf("save region %s: %w", fileName, err)
		}
		return nil
	}
	if m.paths.InpRegion != m.paths.OutpRegion {
		if err := copyFile(inp, outp); err != nil {
			return fmt.Errorf("copy unchanged region %s: %w", fileName, err)
		}
	}
	return nil
}

func (m *Manager) saveEntitiesSide(r *Region, fileName string) error {
	inp := filepath.Join(m.paths.InpEntities, fileName)
	outp := filepath.Join(m.paths.OutpEntities, fileName)

	if r.Entities.Dirty() {
		if m.paths.BackupEntities != "" {
			if err := copyFile(inp, filepath.Join(m.paths.BackupEntities, fileName)); err != nil {
				return fmt.Errorf("backup entities %s: %w", fileName, err)
			}
		}
		if err := os.MkdirAll(filepath.Dir(outp), 0o755); err != nil {
			return fmt.Errorf("save entities %s: %w", fileName, err)
		}
		if err := r.Entities.SaveToFile(outp); err != nil {
			return fmt.Errorf("save entities %s: %w", fileName, err)
		}
		return nil
	}
	if m.paths.InpEntities != m.paths.OutpEntities {
		if _, err := os.Stat(inp); err == nil {
			if err := copyFile(inp, outp); err != nil {
				return fmt.Errorf("copy unchanged entities %s: %w", fileName, err)
			}
		}
	}
	return nil
}

// copyFile copies src to dst, creating dst's parent directory as needed.
// It mirrors shutil.copy2's "preserve the original on disk before
// overwriting" contract used by the backup-then-write policy.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// RegionFileNames lists the .mca file names present in dir, matching the
// "r.<int>.<int>.mca" naming pattern.
func RegionFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list region dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".mca") {
			continue
		}
		var x, z int
		if _, err := fmt.Sscanf(e.Name(), "r.%d.%d.mca", &x, &z); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
