package memindex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/facetgo/blobstore"
)

// Snapshot format: 4-byte magic + version byte, then one zstd frame holding
// varint-encoded segments. Doc IDs are delta-encoded (ascending per column),
// numeric values are zigzag varints.
const (
	snapshotMagic   = "FGIX"
	snapshotVersion = 1
)

// WriteTo writes the sealed index to w in the snapshot format.
// It returns the number of compressed bytes written.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	ix.mu.Lock()
	ix.sealLocked()
	ix.mu.Unlock()

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	cw := &countingWriter{w: w}
	if _, err := cw.Write([]byte(snapshotMagic)); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write([]byte{snapshotVersion}); err != nil {
		return cw.n, err
	}

	zw, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, err
	}
	bw := bufio.NewWriterSize(zw, 64*1024)

	enc := &snapshotEncoder{w: bw}
	enc.uvarint(uint64(ix.segmentSize))
	enc.uvarint(uint64(len(ix.segments)))

	for _, seg := range ix.segments {
		enc.uvarint(uint64(seg.numDocs))
		enc.uvarint(uint64(len(seg.columns)))

		// Deterministic column order for stable snapshots.
		names := make([]string, 0, len(seg.columns))
		for name := range seg.columns {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			col := seg.columns[name]
			enc.str(name)
			enc.byte(byte(col.kind))
			enc.uvarint(uint64(len(col.docs)))

			var prevDoc uint32
			for _, d := range col.docs {
				enc.uvarint(uint64(d - prevDoc))
				prevDoc = d
			}

			switch col.kind {
			case kindNumeric:
				for _, v := range col.ints {
					enc.varint(v)
				}
			case kindMultiNumeric:
				for _, vals := range col.multi {
					enc.uvarint(uint64(len(vals)))
					for _, v := range vals {
						enc.varint(v)
					}
				}
			case kindString:
				for _, s := range col.strs {
					enc.str(s)
				}
			}
		}
	}

	if enc.err != nil {
		return cw.n, enc.err
	}
	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom replaces the index contents with a snapshot read from r.
// It returns the number of compressed bytes consumed.
func (ix *Index) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}

	header := make([]byte, len(snapshotMagic)+1)
	if _, err := io.ReadFull(cr, header); err != nil {
		return cr.n, err
	}
	if string(header[:len(snapshotMagic)]) != snapshotMagic {
		return cr.n, fmt.Errorf("memindex: bad snapshot magic %q", header[:len(snapshotMagic)])
	}
	if header[len(snapshotMagic)] != snapshotVersion {
		return cr.n, fmt.Errorf("memindex: unsupported snapshot version %d", header[len(snapshotMagic)])
	}

	zr, err := zstd.NewReader(cr)
	if err != nil {
		return cr.n, err
	}
	defer zr.Close()
	br := bufio.NewReaderSize(zr, 64*1024)

	segmentSize, err := binary.ReadUvarint(br)
	if err != nil {
		return cr.n, err
	}
	numSegments, err := binary.ReadUvarint(br)
	if err != nil {
		return cr.n, err
	}

	segments := make([]*segment, 0, numSegments)
	for ord := range int(numSegments) {
		numDocs, err := binary.ReadUvarint(br)
		if err != nil {
			return cr.n, err
		}
		numColumns, err := binary.ReadUvarint(br)
		if err != nil {
			return cr.n, err
		}

		seg := &segment{
			ord:     ord,
			numDocs: int(numDocs),
			columns: make(map[string]*column, numColumns),
		}

		for range int(numColumns) {
			name, err := readString(br)
			if err != nil {
				return cr.n, err
			}
			kindByte, err := br.ReadByte()
			if err != nil {
				return cr.n, err
			}
			entries, err := binary.ReadUvarint(br)
			if err != nil {
				return cr.n, err
			}

			col := &column{kind: kind(kindByte), docs: make([]uint32, entries)}
			var prevDoc uint32
			for i := range int(entries) {
				delta, err := binary.ReadUvarint(br)
				if err != nil {
					return cr.n, err
				}
				prevDoc += uint32(delta)
				col.docs[i] = prevDoc
			}

			switch col.kind {
			case kindNumeric:
				col.ints = make([]int64, entries)
				for i := range int(entries) {
					v, err := binary.ReadVarint(br)
					if err != nil {
						return cr.n, err
					}
					col.ints[i] = v
				}
			case kindMultiNumeric:
				col.multi = make([][]int64, entries)
				for i := range int(entries) {
					count, err := binary.ReadUvarint(br)
					if err != nil {
						return cr.n, err
					}
					vals := make([]int64, count)
					for j := range int(count) {
						v, err := binary.ReadVarint(br)
						if err != nil {
							return cr.n, err
						}
						vals[j] = v
					}
					col.multi[i] = vals
				}
			case kindString:
				col.strs = make([]string, entries)
				for i := range int(entries) {
					s, err := readString(br)
					if err != nil {
						return cr.n, err
					}
					col.strs[i] = s
				}
			default:
				return cr.n, fmt.Errorf("memindex: unknown column kind %d", kindByte)
			}

			seg.columns[name] = col
		}

		segments = append(segments, seg)
	}

	ix.mu.Lock()
	ix.segmentSize = int(segmentSize)
	ix.segments = segments
	ix.sealed = false
	ix.sealLocked()
	ix.mu.Unlock()

	return cr.n, nil
}

// SaveSnapshot writes the index to the blob store under name.
func (ix *Index) SaveSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	var buf bytes.Buffer
	if _, err := ix.WriteTo(&buf); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

// LoadSnapshot reads an index previously written with SaveSnapshot.
func LoadSnapshot(ctx context.Context, store blobstore.Store, name string) (*Index, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	ix := New()
	if _, err := ix.ReadFrom(rc); err != nil {
		return nil, err
	}
	return ix, nil
}

type snapshotEncoder struct {
	w   *bufio.Writer
	buf [binary.MaxVarintLen64]byte
	err error
}

func (e *snapshotEncoder) uvarint(v uint64) {
	if e.err != nil {
		return
	}
	n := binary.PutUvarint(e.buf[:], v)
	_, e.err = e.w.Write(e.buf[:n])
}

func (e *snapshotEncoder) varint(v int64) {
	if e.err != nil {
		return
	}
	n := binary.PutVarint(e.buf[:], v)
	_, e.err = e.w.Write(e.buf[:n])
}

func (e *snapshotEncoder) byte(b byte) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(b)
}

func (e *snapshotEncoder) str(s string) {
	e.uvarint(uint64(len(s)))
	if e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func readString(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return "", err
	}
	return string(b), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
