package dar

import (
	"archive/zip"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/daml-lf/bridge/lferrors"
)

const (
	manifestFilePath   = "META-INF/MANIFEST.MF"
	dalfFileExtension  = ".dalf"
	dalfPrimFileSuffix = "-prim"
)

// Dalf is a single decoded dalf entry's raw bytes plus the name it was
// stored under (its zip path, stem-trimmed for use as a default archive name).
type Dalf struct {
	Name  string
	Bytes []byte
}

// Archive is the raw contents of a dar file: its manifest plus the main and
// dependency dalf payloads named by it, prior to protobuf decoding.
type Archive struct {
	Manifest     Manifest
	Main         Dalf
	Dependencies []Dalf
}

// ReadArchive reads a dar file from r (sized by size, as required by
// archive/zip.NewReader). It first attempts to read a fat dar (one carrying
// a META-INF/MANIFEST.MF); if no manifest is present it falls back to
// inferring a legacy dar's manifest from the set of dalf file names found.
func ReadArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "not a valid zip archive", err)
	}

	readManifest := readManifestFromZip
	if _, statErr := fs.Stat(zr, manifestFilePath); statErr != nil {
		readManifest = inferManifestFromZip
	}
	manifest, err := readManifest(zr)
	if err != nil {
		return nil, err
	}

	main, err := readDalfEntry(zr, manifest.DalfMain)
	if err != nil {
		return nil, err
	}
	deps := make([]Dalf, 0, len(manifest.DalfDependencies))
	for _, name := range manifest.DalfDependencies {
		d, err := readDalfEntry(zr, name)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}

	return &Archive{Manifest: manifest, Main: main, Dependencies: deps}, nil
}

func readManifestFromZip(zr *zip.Reader) (Manifest, error) {
	f, err := zr.Open(manifestFilePath)
	if err != nil {
		return Manifest{}, lferrors.NewWithCause(lferrors.KindDecode, "no manifest entry", err)
	}
	defer f.Close()

	contents, err := io.ReadAll(f)
	if err != nil {
		return Manifest{}, lferrors.NewWithCause(lferrors.KindDecode, "failed reading manifest entry", err)
	}
	return ParseManifest(string(contents))
}

// inferManifestFromZip builds an implied Manifest for a legacy dar by
// partitioning its dalf entries into prim and non-prim groups. A dar is a
// valid legacy dar only if it contains at most one entry of each group. If
// both a non-prim and a prim dalf are present the non-prim dalf is the main
// archive and the prim dalf is its sole dependency.
func inferManifestFromZip(zr *zip.Reader) (Manifest, error) {
	var prim, nonPrim []string
	for _, f := range zr.File {
		if !isDalf(f.Name) {
			continue
		}
		if isPrimDalf(f.Name) {
			prim = append(prim, f.Name)
		} else {
			nonPrim = append(nonPrim, f.Name)
		}
	}

	switch {
	case len(nonPrim) == 1 && len(prim) == 1:
		return NewImpliedManifest(nonPrim[0], []string{prim[0]}), nil
	case len(nonPrim) == 1 && len(prim) == 0:
		return NewImpliedManifest(nonPrim[0], nil), nil
	case len(nonPrim) == 0 && len(prim) == 1:
		return NewImpliedManifest(prim[0], nil), nil
	default:
		return Manifest{}, lferrors.New(lferrors.KindDecode, "invalid legacy dar: expected exactly one main dalf")
	}
}

func isDalf(name string) bool {
	return strings.EqualFold(path.Ext(name), dalfFileExtension)
}

func isPrimDalf(name string) bool {
	stem := strings.TrimSuffix(path.Base(name), path.Ext(name))
	return strings.HasSuffix(strings.ToLower(stem), dalfPrimFileSuffix)
}

func readDalfEntry(zr *zip.Reader, location string) (Dalf, error) {
	f, err := zr.Open(location)
	if err != nil {
		return Dalf{}, lferrors.NewWithCause(lferrors.KindDecode, "dalf entry not found: "+location, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return Dalf{}, lferrors.NewWithCause(lferrors.KindDecode, "failed reading dalf entry: "+location, err)
	}

	stem := strings.TrimSuffix(path.Base(location), path.Ext(location))
	return Dalf{Name: stem, Bytes: buf}, nil
}
