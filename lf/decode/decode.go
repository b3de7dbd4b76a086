// Package decode turns a dar file's raw dalf payloads into a fully resolved
// lf/types.Archive: unpacking the zip container and manifest (lf/dar),
// unmarshaling each dalf's Archive/ArchivePayload/Package protobuf envelope
// via the generated daml_lf_2_1 message types, and converting the resulting
// message tree into the typed Daml-LF element graph, enforcing interning and
// feature-version gating along the way.
package decode

import (
	"io"

	daml "github.com/digital-asset/dazl-client/v8/go/api/com/daml/daml_lf_2_1"
	"google.golang.org/protobuf/proto"

	"github.com/daml-lf/bridge/lf/dar"
	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lf/version"
	"github.com/daml-lf/bridge/lferrors"
)

// LoadDar reads a dar file from r and decodes it into a fully resolved
// Archive: its main dalf plus every dependency dalf named by the manifest,
// each decoded into its own Package and indexed by package id.
func LoadDar(r io.ReaderAt, size int64, name string) (*types.Archive, error) {
	rawArchive, err := dar.ReadArchive(r, size)
	if err != nil {
		return nil, err
	}

	archive := &types.Archive{Name: name, Packages: make(map[string]*types.Package)}

	mainPkg, err := DecodeDalf(rawArchive.Main.Bytes)
	if err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "failed decoding main dalf "+rawArchive.Main.Name, err)
	}
	archive.MainPackageID = mainPkg.ID
	archive.Packages[mainPkg.ID] = mainPkg
	archive.PackageOrder = append(archive.PackageOrder, mainPkg.ID)

	for _, dep := range rawArchive.Dependencies {
		pkg, err := DecodeDalf(dep.Bytes)
		if err != nil {
			return nil, lferrors.NewWithCause(lferrors.KindDecode, "failed decoding dependency dalf "+dep.Name, err)
		}
		archive.Packages[pkg.ID] = pkg
		archive.PackageOrder = append(archive.PackageOrder, pkg.ID)
	}

	return archive, nil
}

// DecodeDalf decodes a single dalf's raw bytes (a serialized Archive
// protobuf message) into its Package. The package id is taken from the
// Archive envelope's hash field, matching Daml-LF's convention of using the
// payload's content hash as its package identity.
//
// Only the daml_lf_2 payload variant is supported: the generated message
// types this decoder unmarshals against are specific to Daml-LF major
// version 2, so an archive whose payload carries a daml_lf_1 variant is
// rejected rather than misread.
func DecodeDalf(data []byte) (*types.Package, error) {
	var archive daml.Archive
	if err := proto.Unmarshal(data, &archive); err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "malformed archive envelope", err)
	}
	if archive.GetHash() == "" {
		return nil, lferrors.New(lferrors.KindDecode, "archive envelope has an empty package hash")
	}

	var payload daml.ArchivePayload
	if err := proto.Unmarshal(archive.GetPayload(), &payload); err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "malformed archive payload", err)
	}

	minor, err := version.ParseMinor(payload.GetMinor())
	if err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "unsupported language minor version", err)
	}
	lang := version.V2(minor)

	damlLf2 := payload.GetDamlLf_2()
	if damlLf2 == nil {
		return nil, lferrors.New(lferrors.KindDecode, "archive payload carries no daml_lf_2 package")
	}

	var pkg daml.Package
	if err := proto.Unmarshal(damlLf2, &pkg); err != nil {
		return nil, lferrors.NewWithCause(lferrors.KindDecode, "malformed package", err)
	}

	return convertPackage(archive.GetHash(), &pkg, lang)
}
