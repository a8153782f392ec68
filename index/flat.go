package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	ErrEmptyInput         = errors.New("no vectors to index")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrDocumentNotIndexed = errors.New("document not indexed")
)

const (
	flatHeader  = "CHATPDF_IDX"
	flatVersion = 1
)

// Flat is an exact nearest-neighbor index over a document's chunk vectors:
// an exhaustive linear scan by squared Euclidean distance. Per-document
// chunk counts are small, so no approximate structure is needed.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Hit is one search result: the squared L2 distance and the vector's
// insertion position, which maps 1:1 onto the chunk arrays.
type Hit struct {
	Distance float64
	Position int
}

func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return &Flat{dim: dim, vectors: vectors}, nil
}

func (f *Flat) Len() int       { return len(f.vectors) }
func (f *Flat) Dimension() int { return f.dim }

// Search returns up to k nearest neighbors, ascending by distance, ties
// broken by ascending position so repeated calls are deterministic.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(f.vectors) == 0 {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has dim %d, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		var sum float64
		for j := range v {
			d := float64(v[j]) - float64(query[j])
			sum += d * d
		}
		hits[i] = Hit{Distance: sum, Position: i}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Position < hits[j].Position
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// WriteTo serializes the index: magic header, version byte, then dimension,
// count and the float32 values, all little-endian.
func (f *Flat) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(flatHeader); err != nil {
		return err
	}
	if err := bw.WriteByte(flatVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(f.dim)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(f.vectors))); err != nil {
		return err
	}
	for _, v := range f.vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFrom deserializes an index written by WriteTo. A zero-vector index is
// valid here (a document whose pages produced no chunks) even though Build
// rejects empty input.
func ReadFrom(r io.Reader) (*Flat, error) {
	br := bufio.NewReader(r)

	header := make([]byte, len(flatHeader))
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("bad index header: %w", err)
	}
	if string(header) != flatHeader {
		return nil, fmt.Errorf("invalid index header %q", string(header))
	}
	version, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != flatVersion {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}

	var dim, count uint32
	if err := binary.Read(br, binary.LittleEndian, &dim); err != nil {
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		v := make([]float32, dim)
		if err := binary.Read(br, binary.LittleEndian, v); err != nil {
			return nil, fmt.Errorf("truncated index: %w", err)
		}
		vectors[i] = v
	}

	return &Flat{dim: int(dim), vectors: vectors}, nil
}
