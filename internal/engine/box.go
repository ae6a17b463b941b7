package engine

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Box is the search-box geometry for one target: a center point and extents
// in three dimensions, in angstroms.
type Box struct {
	CenterX, CenterY, CenterZ float64
	SizeX, SizeY, SizeZ       float64
}

// BoxConfig controls search-box sizing. Mode "fixed" uses Size on every
// axis; mode "span" uses the atom span per axis plus Buffer.
type BoxConfig struct {
	Mode   string
	Size   float64
	Buffer float64
}

// BoxSource derives a target's search box from its structure file. The
// geometry is computed once per target and cached; it never changes within
// a run.
type BoxSource struct {
	cfg   BoxConfig
	mu    sync.Mutex
	cache map[string]Box
}

// NewBoxSource returns a box source with an empty cache.
func NewBoxSource(cfg BoxConfig) *BoxSource {
	return &BoxSource{cfg: cfg, cache: make(map[string]Box)}
}

// Get returns the search box for the target structure at path.
func (s *BoxSource) Get(path string) (Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if box, ok := s.cache[path]; ok {
		return box, nil
	}
	box, err := deriveBox(path, s.cfg)
	if err != nil {
		return Box{}, err
	}
	s.cache[path] = box
	return box, nil
}

// deriveBox centers the box on the geometric centroid of the target's ATOM
// records. Coordinates are the seventh through ninth whitespace fields of an
// ATOM line in PDBQT.
func deriveBox(path string, cfg BoxConfig) (Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return Box{}, fmt.Errorf("failed to open target %s: %w", path, err)
	}
	defer f.Close()

	var sumX, sumY, sumZ float64
	var minC, maxC [3]float64
	count := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "ATOM") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 9 {
			continue
		}
		var coord [3]float64
		ok := true
		for i := 0; i < 3; i++ {
			coord[i], err = strconv.ParseFloat(parts[6+i], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		sumX += coord[0]
		sumY += coord[1]
		sumZ += coord[2]
		if count == 0 {
			minC, maxC = coord, coord
		} else {
			for i := 0; i < 3; i++ {
				if coord[i] < minC[i] {
					minC[i] = coord[i]
				}
				if coord[i] > maxC[i] {
					maxC[i] = coord[i]
				}
			}
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return Box{}, fmt.Errorf("failed to read target %s: %w", path, err)
	}
	if count == 0 {
		return Box{}, fmt.Errorf("no ATOM records in target %s", path)
	}

	box := Box{
		CenterX: sumX / float64(count),
		CenterY: sumY / float64(count),
		CenterZ: sumZ / float64(count),
	}
	if cfg.Mode == "span" {
		box.SizeX = maxC[0] - minC[0] + cfg.Buffer
		box.SizeY = maxC[1] - minC[1] + cfg.Buffer
		box.SizeZ = maxC[2] - minC[2] + cfg.Buffer
	} else {
		box.SizeX, box.SizeY, box.SizeZ = cfg.Size, cfg.Size, cfg.Size
	}
	return box, nil
}
