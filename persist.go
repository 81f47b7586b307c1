package blockpath

import (
	"archive/zip"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	"blockpath/block"
)

// errCacheMiss distinguishes "no cache yet" from a corrupt/unreadable
// cache file; Init treats the former as silent and the latter as a
// warning (§7).
var errCacheMiss = errors.New("blockpath: no matching on-disk cache")

// fastDeflateCompressor and fastDeflateDecompressor route DEFLATE through
// klauspost/compress/flate. They are registered on each archive's own
// writer/reader: archive/zip already registers Deflate globally, and a
// second global registration panics.
func fastDeflateCompressor(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}

func fastDeflateDecompressor(r io.Reader) io.ReadCloser {
	return flate.NewReader(r)
}

// entryName is the single member inside the cache archive holding the
// packed offsets/vertex-cost payload (§6 "On-disk path").
const entryName = "pathinfo.bin"

// cacheFilePath builds <cache_dir>/paths/<map_name><hash>.<cache_name>.zip.
func cacheFilePath(dir, mapName, cacheName string, hash uint32) string {
	return filepath.Join(dir, "paths", fmt.Sprintf("%s%08x.%s.zip", mapName, hash, cacheName))
}

// loadCache implements §4.H's read path: open the archive named by
// cachePath, verify its dataset hash and CRC-32, and populate the grid's
// offsets and the vertex cost table on success.
func (e *Estimator) loadCache(cachePath string, wantHash uint32) error {
	f, err := os.Open(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errCacheMiss
		}
		return fmt.Errorf("blockpath: open cache: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("blockpath: stat cache: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("blockpath: open cache archive: %w", err)
	}
	zr.RegisterDecompressor(zip.Deflate, fastDeflateDecompressor)
	zf, err := zr.Open(entryName)
	if err != nil {
		return fmt.Errorf("blockpath: cache archive missing %s: %w", entryName, err)
	}

	payload, err := io.ReadAll(zf)
	if err != nil {
		zf.Close()
		return fmt.Errorf("blockpath: read cache payload: %w", err)
	}
	// zip.File's reader validates the member's CRC-32 once a read reaches
	// the end of the member, so a checksum failure surfaces from ReadAll
	// above; this is the archive's own integrity check (§6), so the
	// payload carries no second, redundant checksum of its own.
	if err := zf.Close(); err != nil {
		return fmt.Errorf("blockpath: cache payload failed archive checksum: %w", err)
	}
	return e.decodePayload(payload, wantHash)
}

// payload layout (little-endian), matching spec.md's literal byte table:
// hash u32 at offset 0, then NX*NZ*NumClasses OffsetSquare pairs (i32,
// i32) starting at offset 4, then NumClasses*NumBlocks*4 vertex costs
// (f32).
func (e *Estimator) decodePayload(payload []byte, wantHash uint32) error {
	const headerLen = 4
	if len(payload) < headerLen {
		return fmt.Errorf("blockpath: cache payload truncated")
	}
	hash := binary.LittleEndian.Uint32(payload[0:4])
	if hash != wantHash {
		return errCacheMiss
	}
	body := payload[headerLen:]

	numBlocks := e.grid.NumBlocks()
	numClasses := e.registry.NumClasses()
	wantLen := numBlocks*numClasses*8 + numClasses*numBlocks*4*4
	if len(body) != wantLen {
		return fmt.Errorf("blockpath: cache payload size mismatch: got %d want %d", len(body), wantLen)
	}

	r := body
	for idx := 0; idx < numBlocks; idx++ {
		for class := 0; class < numClasses; class++ {
			x := int32(binary.LittleEndian.Uint32(r[0:4]))
			z := int32(binary.LittleEndian.Uint32(r[4:8]))
			r = r[8:]
			e.grid.SetOffset(block.Index(idx), class, block.OffsetSquare{X: x, Z: z})
		}
	}
	for class := 0; class < numClasses; class++ {
		for idx := 0; idx < numBlocks; idx++ {
			for d := block.Left; d < block.Right; d++ {
				bits := binary.LittleEndian.Uint32(r[0:4])
				r = r[4:]
				cost := float32FromBits(bits)
				e.vertices.Set(class, block.Index(idx), d, cost)
			}
		}
	}

	e.pathChecksum = crc32.ChecksumIEEE(body)
	return nil
}

// writeCache implements §4.H's write path: pack the grid's offsets and
// the vertex cost table and store it as the sole member of a
// DEFLATE-compressed archive at cachePath; the archive format's own
// per-member CRC-32 is the cache file's integrity check.
func (e *Estimator) writeCache(cachePath string, hash uint32) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return fmt.Errorf("blockpath: mkdir cache dir: %w", err)
	}

	body := e.encodeBody()
	e.pathChecksum = crc32.ChecksumIEEE(body)

	var header [4]byte
	binary.LittleEndian.PutUint32(header[0:4], hash)

	tmp := cachePath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("blockpath: create cache file: %w", err)
	}
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, fastDeflateCompressor)
	w, err := zw.Create(entryName)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("blockpath: create cache entry: %w", err)
	}
	if _, err := w.Write(header[:]); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("blockpath: write cache header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		zw.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("blockpath: write cache body: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("blockpath: close cache archive: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("blockpath: close cache file: %w", err)
	}
	return os.Rename(tmp, cachePath)
}

func (e *Estimator) encodeBody() []byte {
	numBlocks := e.grid.NumBlocks()
	numClasses := e.registry.NumClasses()
	body := make([]byte, numBlocks*numClasses*8+numClasses*numBlocks*4*4)

	w := body
	for idx := 0; idx < numBlocks; idx++ {
		for class := 0; class < numClasses; class++ {
			sq := e.grid.Offset(block.Index(idx), class)
			binary.LittleEndian.PutUint32(w[0:4], uint32(sq.X))
			binary.LittleEndian.PutUint32(w[4:8], uint32(sq.Z))
			w = w[8:]
		}
	}
	for class := 0; class < numClasses; class++ {
		for idx := 0; idx < numBlocks; idx++ {
			for d := block.Left; d < block.Right; d++ {
				cost := e.vertices.Cost(class, block.Index(idx), d)
				binary.LittleEndian.PutUint32(w[0:4], float32Bits(cost))
				w = w[4:]
			}
		}
	}
	return body
}
