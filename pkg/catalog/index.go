package catalog

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
)

// FlatIndex is an exact nearest-neighbour index over squared L2 distance.
// It is the prebuilt-index tier: vectors are written once by the seeding
// tool and only read at serve time.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

type flatIndexFile struct {
	Dim     int
	Vectors [][]float32
}

func NewFlatIndex(dim int) *FlatIndex {
	return &FlatIndex{dim: dim}
}

func (ix *FlatIndex) Add(vec []float32) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), ix.dim)
	}
	ix.vectors = append(ix.vectors, vec)
	return nil
}

func (ix *FlatIndex) Len() int { return len(ix.vectors) }
func (ix *FlatIndex) Dim() int { return ix.dim }

// Search returns up to k (distance, position) pairs ordered by ascending
// distance. Ties keep insertion order, which downstream uses as the stable
// tie-break.
func (ix *FlatIndex) Search(query []float32, k int) ([]float32, []int) {
	if len(query) != ix.dim || k <= 0 {
		return nil, nil
	}
	type hit struct {
		dist float32
		pos  int
	}
	hits := make([]hit, len(ix.vectors))
	for i, vec := range ix.vectors {
		var sum float32
		for j := range vec {
			d := vec[j] - query[j]
			sum += d * d
		}
		hits[i] = hit{dist: sum, pos: i}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })
	if k > len(hits) {
		k = len(hits)
	}
	distances := make([]float32, k)
	positions := make([]int, k)
	for i := 0; i < k; i++ {
		distances[i] = hits[i].dist
		positions[i] = hits[i].pos
	}
	return distances, positions
}

// WriteFile persists the index with gob encoding.
func (ix *FlatIndex) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(flatIndexFile{Dim: ix.dim, Vectors: ix.vectors}); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// ReadIndexFile loads a previously written index and validates its shape.
func ReadIndexFile(path string) (*FlatIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var file flatIndexFile
	if err := gob.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if file.Dim <= 0 {
		return nil, fmt.Errorf("index has invalid dimension %d", file.Dim)
	}
	for i, vec := range file.Vectors {
		if len(vec) != file.Dim {
			return nil, fmt.Errorf("index vector %d has dimension %d, want %d", i, len(vec), file.Dim)
		}
	}
	return &FlatIndex{dim: file.Dim, vectors: file.Vectors}, nil
}
