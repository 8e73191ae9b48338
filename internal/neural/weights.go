package neural

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Weight file format, grounded on the teacher's NNUE loader: a small fixed
// header naming the format and layer sizes, followed by the raw weight
// arrays in a fixed order. MagicNumber is distinct from the teacher's so
// the two formats can never be cross-loaded by accident.
const (
	MagicNumber = 0x50415443 // "PATC"
	Version     = 1
)

// FileHeader is the on-disk header of a weights file.
type FileHeader struct {
	Magic    uint32
	Version  uint32
	Features uint32
	L1Size   uint32
	L2Size   uint32
	Policy   uint32
}

func (n *Network) header() FileHeader {
	return FileHeader{
		Magic:    MagicNumber,
		Version:  Version,
		Features: FeatureSize,
		L1Size:   L1Size,
		L2Size:   L2Size,
		Policy:   uint32(len(n.PolicyBias)),
	}
}

// LoadWeights loads network weights from a binary file.
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("neural: open weights file: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// SaveWeights saves network weights to a binary file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("neural: create weights file: %w", err)
	}
	defer f.Close()
	return n.SaveWeightsToWriter(f)
}

// LoadWeightsFromReader loads network weights from an io.Reader.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("neural: read header: %w", err)
	}
	want := n.header()
	if header.Magic != want.Magic {
		return fmt.Errorf("neural: invalid magic number: expected %x, got %x", want.Magic, header.Magic)
	}
	if header.Version != want.Version {
		return fmt.Errorf("neural: unsupported version: expected %d, got %d", want.Version, header.Version)
	}
	if header.Features != want.Features || header.L1Size != want.L1Size ||
		header.L2Size != want.L2Size || header.Policy != want.Policy {
		return fmt.Errorf("neural: layer size mismatch: file does not match this network's shape")
	}

	for i := range n.L1Weights {
		if err := binary.Read(r, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("neural: read L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("neural: read L1 bias: %w", err)
	}
	for i := range n.L2Weights {
		if err := binary.Read(r, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("neural: read L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("neural: read L2 bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.ValueWeights); err != nil {
		return fmt.Errorf("neural: read value weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.ValueBias); err != nil {
		return fmt.Errorf("neural: read value bias: %w", err)
	}
	for i := range n.PolicyWeights {
		if err := binary.Read(r, binary.LittleEndian, &n.PolicyWeights[i]); err != nil {
			return fmt.Errorf("neural: read policy weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.PolicyBias); err != nil {
		return fmt.Errorf("neural: read policy bias: %w", err)
	}
	return nil
}

// SaveWeightsToWriter writes network weights to an io.Writer.
func (n *Network) SaveWeightsToWriter(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, n.header()); err != nil {
		return fmt.Errorf("neural: write header: %w", err)
	}
	for i := range n.L1Weights {
		if err := binary.Write(w, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("neural: write L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("neural: write L1 bias: %w", err)
	}
	for i := range n.L2Weights {
		if err := binary.Write(w, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("neural: write L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("neural: write L2 bias: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &n.ValueWeights); err != nil {
		return fmt.Errorf("neural: write value weights: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &n.ValueBias); err != nil {
		return fmt.Errorf("neural: write value bias: %w", err)
	}
	for i := range n.PolicyWeights {
		if err := binary.Write(w, binary.LittleEndian, &n.PolicyWeights[i]); err != nil {
			return fmt.Errorf("neural: write policy weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, &n.PolicyBias); err != nil {
		return fmt.Errorf("neural: write policy bias: %w", err)
	}
	return nil
}

// InitRandom fills the network with small pseudo-random weights, for
// testing and for running un-trained games without a weights file. Uses
// the teacher's own dependency-free LCG so initialization is reproducible
// across runs given the same seed.
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 64
	}
	next8 := func() int8 {
		return int8(next() & 0x7F)
	}

	for i := range n.L1Weights {
		for j := range n.L1Weights[i] {
			n.L1Weights[i][j] = next() / 16
		}
	}
	for i := range n.L1Bias {
		n.L1Bias[i] = next() / 16
	}
	for i := range n.L2Weights {
		for j := range n.L2Weights[i] {
			n.L2Weights[i][j] = next8()
		}
	}
	for i := range n.L2Bias {
		n.L2Bias[i] = int32(next())
	}
	for i := range n.ValueWeights {
		n.ValueWeights[i] = next8()
	}
	n.ValueBias = int32(next())
	for i := range n.PolicyWeights {
		for j := range n.PolicyWeights[i] {
			n.PolicyWeights[i][j] = next8()
		}
	}
	for i := range n.PolicyBias {
		n.PolicyBias[i] = int32(next()) / 16
	}
}
