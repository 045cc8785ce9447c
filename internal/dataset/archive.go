package dataset

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Sample archives persist a SampleSet as a single file: a JSON header
// describing the shapes, followed by a zstd stream of the three arrays as
// little-endian float32, in the order primary, secondary, target.
//
// Layout:
//
//	8 bytes   magic "WAVESMP1"
//	4 bytes   header length (little-endian uint32)
//	n bytes   header JSON
//	rest      zstd-compressed array data

var archiveMagic = [8]byte{'W', 'A', 'V', 'E', 'S', 'M', 'P', '1'}

type archiveHeader struct {
	N                 int `json:"n"`
	TimeSteps         int `json:"time_steps"`
	Horizon           int `json:"horizon"`
	PrimaryChannels   int `json:"primary_channels"`
	SecondaryChannels int `json:"secondary_channels"`
	PatchSize         int `json:"patch_size"`
}

// WriteArchive persists a sample set to path.
func WriteArchive(path string, set *SampleSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := encodeArchive(w, set); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}
	return f.Close()
}

// ReadArchive loads a sample set from path and validates its shape metadata
// against the actual array sizes.
func ReadArchive(path string) (*SampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()
	return decodeArchive(bufio.NewReader(f))
}

func encodeArchive(w io.Writer, set *SampleSet) error {
	hdr, err := json.Marshal(archiveHeader{
		N:                 set.N,
		TimeSteps:         set.TimeSteps,
		Horizon:           set.Horizon,
		PrimaryChannels:   set.PrimaryChannels,
		SecondaryChannels: set.SecondaryChannels,
		PatchSize:         set.PatchSize,
	})
	if err != nil {
		return fmt.Errorf("marshal archive header: %w", err)
	}

	if _, err := w.Write(archiveMagic[:]); err != nil {
		return fmt.Errorf("write archive magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(hdr))); err != nil {
		return fmt.Errorf("write archive header length: %w", err)
	}
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write archive header: %w", err)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	for _, arr := range [][]float32{set.Primary, set.Secondary, set.Target} {
		if err := binary.Write(zw, binary.LittleEndian, arr); err != nil {
			zw.Close()
			return fmt.Errorf("write archive data: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zstd writer: %w", err)
	}
	return nil
}

func decodeArchive(r io.Reader) (*SampleSet, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read archive magic: %w", err)
	}
	if magic != archiveMagic {
		return nil, fmt.Errorf("not a sample archive (magic %q)", magic)
	}

	var hdrLen uint32
	if err := binary.Read(r, binary.LittleEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("read archive header length: %w", err)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	var hdr archiveHeader
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, fmt.Errorf("unmarshal archive header: %w", err)
	}
	if hdr.N < 0 || hdr.TimeSteps <= 0 || hdr.Horizon <= 0 || hdr.PatchSize <= 0 ||
		hdr.PrimaryChannels <= 0 || hdr.SecondaryChannels <= 0 {
		return nil, fmt.Errorf("invalid archive header: %+v", hdr)
	}

	set := &SampleSet{
		N:                 hdr.N,
		TimeSteps:         hdr.TimeSteps,
		Horizon:           hdr.Horizon,
		PrimaryChannels:   hdr.PrimaryChannels,
		SecondaryChannels: hdr.SecondaryChannels,
		PatchSize:         hdr.PatchSize,
	}
	set.Primary = make([]float32, hdr.N*set.PrimarySampleLen())
	set.Secondary = make([]float32, hdr.N*set.SecondarySampleLen())
	set.Target = make([]float32, hdr.N*hdr.Horizon)

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	for _, arr := range [][]float32{set.Primary, set.Secondary, set.Target} {
		if err := binary.Read(zr, binary.LittleEndian, arr); err != nil {
			return nil, fmt.Errorf("read archive data: %w", err)
		}
	}
	return set, nil
}
