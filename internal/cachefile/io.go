// Package cachefile implements the Persistence Layer: serializing the
// compacted index to a single binary frame with fingerprint-based
// invalidation, and reloading it with an atomic, fsync'd write path.
package cachefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/shopify/i18ncompact/internal/base"
	"github.com/shopify/i18ncompact/internal/compact"
)

// Options configures the persistence layer beyond the fields spec.md §6
// names directly.
type Options struct {
	// Compression wraps the whole frame in zstd when true (SPEC_FULL.md
	// §4.13's cache_compression option).
	Compression bool
	// Throttle gates repeated Save calls. A nil Throttle never throttles.
	Throttle *Throttle
}

// Save serializes state to path, fingerprinted with fp. It writes to
// "<path>.<pid>.tmp" and atomically renames over the destination, fsyncing
// both the file and its parent directory. Every failure path — a
// throttled call, a read-only directory, a write error — returns saved
// == false and never an error: "Failures to write must never propagate to
// the caller" (spec.md §4.9).
func Save(path string, fp Fingerprint, state *compact.State, procPositions map[int][]ProcRef, opts Options) (saved bool) {
	if opts.Throttle != nil && !opts.Throttle.Allow() {
		return false
	}

	frame, err := buildFrame(fp, state, procPositions, opts.Compression)
	if err != nil {
		return false
	}

	tmp := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if !writeAtomically(path, tmp, frame) {
		return false
	}
	return true
}

func writeAtomically(path, tmp string, frame []byte) bool {
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return false
	}
	cleanup := func() {
		f.Close()
		os.Remove(tmp)
	}

	if _, err := f.Write(frame); err != nil {
		cleanup()
		return false
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return false
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return false
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false
	}
	// Best-effort: a missing directory fsync only widens the crash window
	// in which the rename itself might be lost, it does not corrupt
	// anything already on disk.
	_ = fsyncDir(path)
	return true
}

func buildFrame(fp Fingerprint, state *compact.State, procPositions map[int][]ProcRef, compress bool) ([]byte, error) {
	schemaBytes, err := encodeSchema(state.Schema)
	if err != nil {
		return nil, err
	}
	columnsBytes, err := encodeColumns(state.Columns)
	if err != nil {
		return nil, err
	}
	objectsBytes, _, err := encodeObjects(state.Objects, func(idx int) []ProcRef { return procPositions[idx] })
	if err != nil {
		return nil, err
	}
	subtreeBytes, err := encodeSubtree(state.Separator, state.Schema)
	if err != nil {
		return nil, err
	}
	procBytes, err := encodeProcPositions(procPositions)
	if err != nil {
		return nil, err
	}
	arenaBytes := compressArena(state.Arena)

	var flags byte
	if compress {
		flags |= flagZstdFrame
	}

	var body bytes.Buffer
	if err := writeHeader(&body, header{version: version, flags: flags}); err != nil {
		return nil, err
	}
	if err := writeSection(&body, []byte(fp)); err != nil {
		return nil, err
	}
	if err := writeSection(&body, []byte(state.Separator)); err != nil {
		return nil, err
	}
	for _, section := range [][]byte{schemaBytes, columnsBytes, arenaBytes, objectsBytes, subtreeBytes, procBytes} {
		if err := writeSection(&body, section); err != nil {
			return nil, err
		}
	}

	if !compress {
		return body.Bytes(), nil
	}

	var out bytes.Buffer
	// The header must stay readable without decompressing first (Load
	// inspects flags to decide whether to wrap the reader), so only the
	// section stream past the header is zstd-framed.
	if err := writeHeader(&out, header{version: version, flags: flags}); err != nil {
		return nil, err
	}
	zw, err := wrapZstd(&out)
	if err != nil {
		return nil, err
	}
	headerLen := out.Len()
	// body already contains a duplicate header from the call above; skip
	// past it before compressing the remainder.
	if _, err := zw.Write(body.Bytes()[headerLen:]); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// LoadResult is the decoded frame, ready to be installed as the index's
// new compacted state.
type LoadResult struct {
	State         *compact.State
	ProcPositions map[int][]ProcRef
}

// Load reads path and validates it against fp. ok is false for every
// expected "not usable" condition (file absent, bad magic/version,
// fingerprint mismatch, truncated/corrupt section) — the caller falls
// back to a fresh compaction in all of those cases and should not treat
// ok==false as exceptional. err is set for unexpected I/O failures
// distinct from "this just isn't a valid cache file," and for a decoded
// state that fails compact.Recombine's leaf/subtree invariant check.
func Load(path string, fp Fingerprint) (result *LoadResult, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}

	r := bufio.NewReader(bytes.NewReader(raw))
	h, ok, err := readHeader(r)
	if err != nil || !ok {
		return nil, false, err
	}

	var body io.Reader = r
	if h.flags&flagZstdFrame != 0 {
		rest, err := io.ReadAll(r)
		if err != nil {
			return nil, false, err
		}
		plain, err := unwrapZstd(rest)
		if err != nil {
			return nil, false, nil // corrupt compressed frame: treat as miss
		}
		body = bytes.NewReader(plain)
	}

	sections, ok, err := readAllSections(body)
	if err != nil || !ok {
		return nil, false, err
	}

	storedFP := Fingerprint(sections[0])
	if storedFP != fp {
		return nil, false, nil
	}
	separator := string(sections[1])

	sch, err := decodeSchema(sections[2])
	if err != nil {
		return nil, false, nil
	}
	cols, err := decodeColumns(sections[3])
	if err != nil {
		return nil, false, nil
	}
	arenaBytes, err := decompressArena(sections[4])
	if err != nil {
		return nil, false, nil
	}
	objects, err := decodeObjects(sections[5])
	if err != nil {
		return nil, false, nil
	}
	// sections[6] (subtree) is re-derived from the decoded schema rather
	// than trusted from disk: it is a pure function of (separator,
	// schema), so rebuilding it is both cheap and immune to a subtly
	// corrupted — but not outright malformed — stored copy.
	procPositions, err := decodeProcPositions(sections[7])
	if err != nil {
		return nil, false, nil
	}

	state, err := compact.Recombine(separator, sch, cols, arenaBytes, objects)
	if err != nil {
		return nil, false, err
	}

	return &LoadResult{State: state, ProcPositions: procPositions}, true, nil
}

// Inspect reads path's stored state unconditionally, skipping the
// fingerprint comparison Load performs. It exists for the CLI inspector,
// which has no independent source-file list to compute an expected
// fingerprint against and simply wants to see what is on disk.
func Inspect(path string) (result *LoadResult, fp Fingerprint, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	r := bufio.NewReader(bytes.NewReader(raw))
	h, ok, err := readHeader(r)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", base.CorruptionErrorf("cachefile: %s is not a readable cache file", path)
	}

	var body io.Reader = r
	if h.flags&flagZstdFrame != 0 {
		rest, err := io.ReadAll(r)
		if err != nil {
			return nil, "", err
		}
		plain, err := unwrapZstd(rest)
		if err != nil {
			return nil, "", corruptSection("zstd frame")
		}
		body = bytes.NewReader(plain)
	}

	sections, ok, err := readAllSections(body)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", corruptSection("frame")
	}

	fp = Fingerprint(sections[0])
	separator := string(sections[1])

	sch, err := decodeSchema(sections[2])
	if err != nil {
		return nil, "", err
	}
	cols, err := decodeColumns(sections[3])
	if err != nil {
		return nil, "", err
	}
	arenaBytes, err := decompressArena(sections[4])
	if err != nil {
		return nil, "", err
	}
	objects, err := decodeObjects(sections[5])
	if err != nil {
		return nil, "", err
	}
	procPositions, err := decodeProcPositions(sections[7])
	if err != nil {
		return nil, "", err
	}

	state, err := compact.Recombine(separator, sch, cols, arenaBytes, objects)
	if err != nil {
		return nil, "", err
	}
	return &LoadResult{State: state, ProcPositions: procPositions}, fp, nil
}

const numSections = 8

func readAllSections(r io.Reader) ([][]byte, bool, error) {
	sections := make([][]byte, 0, numSections)
	for i := 0; i < numSections; i++ {
		payload, ok, err := readSection(r)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		sections = append(sections, payload)
	}
	return sections, true, nil
}

// PatchRules re-inserts freshly re-evaluated rules into state's object
// table at the positions recorded in procPositions, keyed by flat key. A
// position with no matching extracted rule keeps its placeholder
// (spec.md §4.9, §9).
func PatchRules(state *compact.State, procPositions map[int][]ProcRef, extracted map[string]base.Rule) error {
	for objIdx, refs := range procPositions {
		for _, ref := range refs {
			if rule, ok := extracted[ref.FlatKey]; ok {
				if err := state.Objects.Patch(objIdx, rule); err != nil {
					return errors.Wrapf(err, "cachefile: patching rule at %q", ref.FlatKey)
				}
			}
		}
	}
	return nil
}
