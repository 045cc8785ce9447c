package model

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// param is one named weight slice. Names are hierarchical
// ("wave_encoder.conv1.w") and stable across runs, which is what the
// checkpoint format keys on.
type param struct {
	name string
	data []float32
}

func prefixParams(prefix string, ps []param) []param {
	out := make([]param, len(ps))
	for i, p := range ps {
		out[i] = param{name: prefix + "." + p.name, data: p.data}
	}
	return out
}

// Checkpoints use the same framing as sample archives: magic, JSON header
// (the model config plus the parameter manifest), then a zstd stream of
// every parameter's float32 data in manifest order.

var checkpointMagic = [8]byte{'W', 'A', 'V', 'E', 'C', 'K', 'P', '1'}

type checkpointHeader struct {
	Config Config          `json:"config"`
	Params []manifestEntry `json:"params"`
}

type manifestEntry struct {
	Name string `json:"name"`
	Len  int    `json:"len"`
}

// SaveCheckpoint writes the forecaster's config and weights to path.
func (f *Forecaster) SaveCheckpoint(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := f.encodeCheckpoint(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush checkpoint: %w", err)
	}
	return out.Close()
}

func (f *Forecaster) encodeCheckpoint(w io.Writer) error {
	params := f.namedParams()
	manifest := make([]manifestEntry, len(params))
	for i, p := range params {
		manifest[i] = manifestEntry{Name: p.name, Len: len(p.data)}
	}

	hdr, err := json.Marshal(checkpointHeader{Config: f.cfg, Params: manifest})
	if err != nil {
		return fmt.Errorf("marshal checkpoint header: %w", err)
	}

	if _, err := w.Write(checkpointMagic[:]); err != nil {
		return fmt.Errorf("write checkpoint magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(hdr))); err != nil {
		return fmt.Errorf("write checkpoint header length: %w", err)
	}
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write checkpoint header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	for _, p := range params {
		if err := binary.Write(zw, binary.LittleEndian, p.data); err != nil {
			zw.Close()
			return fmt.Errorf("write checkpoint param %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}
	return nil
}

// LoadCheckpoint reconstructs a forecaster from a checkpoint file. The
// stored config drives construction; every parameter in the manifest must
// match the rebuilt model's parameter of the same name in length.
func LoadCheckpoint(path string) (*Forecaster, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer in.Close()
	return decodeCheckpoint(bufio.NewReader(in))
}

func decodeCheckpoint(r io.Reader) (*Forecaster, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read checkpoint magic: %w", err)
	}
	if magic != checkpointMagic {
		return nil, fmt.Errorf("not a model checkpoint (magic %q)", magic)
	}

	var hdrLen uint32
	if err := binary.Read(r, binary.LittleEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("read checkpoint header length: %w", err)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return nil, fmt.Errorf("read checkpoint header: %w", err)
	}
	var hdr checkpointHeader
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint header: %w", err)
	}

	// Seed is irrelevant here: every weight is overwritten below.
	f, err := New(hdr.Config, 0)
	if err != nil {
		return nil, fmt.Errorf("rebuild model from checkpoint config: %w", err)
	}

	byName := make(map[string][]float32)
	for _, p := range f.namedParams() {
		byName[p.name] = p.data
	}
	if len(hdr.Params) != len(byName) {
		return nil, fmt.Errorf("checkpoint has %d params, model has %d", len(hdr.Params), len(byName))
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	for _, entry := range hdr.Params {
		dst, ok := byName[entry.Name]
		if !ok {
			return nil, fmt.Errorf("checkpoint param %s not present in model", entry.Name)
		}
		if len(dst) != entry.Len {
			return nil, fmt.Errorf("checkpoint param %s has %d values, model expects %d", entry.Name, entry.Len, len(dst))
		}
		if err := binary.Read(zr, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("read checkpoint param %s: %w", entry.Name, err)
		}
	}
	return f, nil
}
