// Package draco implements the lossless/quantized-lossy mesh connectivity
// and attribute codec described in the package's design documents: an
// Edgebreaker connectivity coder over a corner table, with per-attribute
// quantization, prediction and entropy coding layered on top.
//
// Encode and Decode operate on whole in-memory meshes; there is no
// incremental or streaming mode, matching the single-threaded, ownership-
// tree design the rest of the package follows.
package draco

import (
	"fmt"

	"github.com/mrjoshuak/go-draco/internal/bio"
	"github.com/mrjoshuak/go-draco/internal/corner"
	"github.com/mrjoshuak/go-draco/internal/edgebreaker"
	"github.com/mrjoshuak/go-draco/internal/geometry"
	"github.com/mrjoshuak/go-draco/internal/predict"
)

// AttributeKind re-exports internal/geometry's attribute role enum so
// callers assembling a mesh don't need to import the internal package.
type AttributeKind = geometry.AttributeKind

const (
	AttributeKindPosition = geometry.AttributeKindPosition
	AttributeKindNormal   = geometry.AttributeKindNormal
	AttributeKindColor    = geometry.AttributeKindColor
	AttributeKindTexCoord = geometry.AttributeKindTexCoord
	AttributeKindGeneric  = geometry.AttributeKindGeneric
)

var magic = [5]byte{'D', 'R', 'A', 'C', 'O'}

const (
	versionMajor = 2
	versionMinor = 2

	methodSequential  byte = 0
	methodEdgebreaker byte = 1
)

// Encode serializes mesh's connectivity and attributes into a self-
// contained byte stream. Position attributes are quantized to
// opts.PositionQuantizationBits and predicted with the parallelogram
// scheme; every other attribute is quantized to opts.GenericQuantizationBits
// and predicted with PredictionNormal if it is a normal, else with
// opts.Scheme (see Options.Scheme for how its zero value resolves).
func Encode(mesh *geometry.Mesh, opts Options) ([]byte, error) {
	if mesh == nil {
		return nil, wrapErr(ErrInvalidConfig, fmt.Errorf("mesh is nil"))
	}
	if err := mesh.Validate(); err != nil {
		return nil, wrapErr(ErrInvalidConfig, err)
	}

	faces := mesh.Faces()
	tbl := corner.NewTable(faces, int(mesh.NumPoints()))
	positions := mesh.AttributeByKind(geometry.AttributeKindPosition)

	out := bio.NewEncoderBuffer()
	out.EncodeBytes(magic[:])
	out.EncodeUint8(versionMajor)
	out.EncodeUint8(versionMinor)
	out.EncodeUint8(1) // enc_type: mesh
	out.EncodeUint8(methodEdgebreaker)
	out.EncodeUint16(0) // flags, reserved

	edgebreaker.Encode(out, tbl)

	out.EncodeUint8(uint8(mesh.NumAttributes()))
	for i := 0; i < mesh.NumAttributes(); i++ {
		attr := mesh.Attribute(geometry.AttributeID(i))
		desc := attr.Descriptor
		out.EncodeUint8(uint8(desc.Kind))
		out.EncodeUint8(uint8(desc.DataType))
		out.EncodeUint8(uint8(desc.NumComponents))
		boolByte(out, desc.Normalized)
		out.EncodeUint8(uint8(desc.Element))
		out.EncodeUint32(desc.UniqueID)

		bits := opts.genericBits()
		scheme := opts.Scheme
		if scheme == predict.SchemeDifference && desc.Kind != AttributeKindGeneric {
			scheme = predict.SchemeParallelogram
		}
		if desc.Kind == AttributeKindPosition {
			bits = opts.positionBits()
			scheme = predict.SchemeParallelogram
		}
		if desc.Kind == AttributeKindNormal {
			scheme = predict.SchemeNormal
		}
		if err := predict.EncodeAttribute(out, tbl, faces, attr, scheme, bits, positions); err != nil {
			return nil, wrapErr(ErrInternalInvariantViolation, err)
		}
	}

	return out.Bytes(), nil
}

// Decode reverses Encode, reconstructing a mesh whose connectivity is
// isomorphic to the original: face count, vertex count, and per-vertex
// attribute data round-trip exactly (modulo quantization for float
// attributes), but point indices are renumbered in the order Edgebreaker's
// decoder introduces them rather than preserved from the input mesh.
func Decode(data []byte) (*geometry.Mesh, error) {
	in := bio.NewDecoderBuffer(data)

	hdr, err := in.DecodeBytes(5)
	if err != nil {
		return nil, wrapErr(ErrBufferUnderflow, err)
	}
	if string(hdr) != string(magic[:]) {
		return nil, wrapErr(ErrInvalidHeader, fmt.Errorf("bad magic %q", hdr))
	}
	major, err := in.DecodeUint8()
	if err != nil {
		return nil, wrapErr(ErrBufferUnderflow, err)
	}
	if _, err := in.DecodeUint8(); err != nil { // minor
		return nil, wrapErr(ErrBufferUnderflow, err)
	}
	if major != versionMajor {
		return nil, wrapErr(ErrUnsupportedVersion, fmt.Errorf("major version %d", major))
	}
	encType, err := in.DecodeUint8()
	if err != nil {
		return nil, wrapErr(ErrBufferUnderflow, err)
	}
	if encType != 1 {
		return nil, wrapErr(ErrUnsupportedMethod, fmt.Errorf("enc_type %d is not a mesh", encType))
	}
	method, err := in.DecodeUint8()
	if err != nil {
		return nil, wrapErr(ErrBufferUnderflow, err)
	}
	if method != methodEdgebreaker {
		return nil, wrapErr(ErrUnsupportedMethod, fmt.Errorf("enc_method %d", method))
	}
	if _, err := in.DecodeUint16(); err != nil { // flags
		return nil, wrapErr(ErrBufferUnderflow, err)
	}

	tbl, faces, err := edgebreaker.Decode(in)
	if err != nil {
		return nil, wrapErr(ErrCorruptStream, err)
	}

	numAttrs, err := in.DecodeUint8()
	if err != nil {
		return nil, wrapErr(ErrBufferUnderflow, err)
	}

	mesh := geometry.NewMesh(int32(tbl.NumVertices()))
	for _, f := range faces {
		mesh.AddFace(f)
	}

	for i := 0; i < int(numAttrs); i++ {
		kindB, err := in.DecodeUint8()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}
		typeB, err := in.DecodeUint8()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}
		compB, err := in.DecodeUint8()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}
		normB, err := in.DecodeUint8()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}
		elemB, err := in.DecodeUint8()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}
		uid, err := in.DecodeUint32()
		if err != nil {
			return nil, wrapErr(ErrBufferUnderflow, err)
		}

		desc := geometry.AttributeDescriptor{
			Kind:          geometry.AttributeKind(kindB),
			DataType:      geometry.DataType(typeB),
			NumComponents: int(compB),
			Normalized:    normB != 0,
			Element:       geometry.ElementType(elemB),
			UniqueID:      uid,
		}
		attr := geometry.NewPointAttribute(desc, tbl.NumVertices())
		positions := mesh.AttributeByKind(geometry.AttributeKindPosition)
		if _, err := predict.DecodeAttribute(in, tbl, faces, attr, positions); err != nil {
			return nil, wrapErr(ErrCorruptStream, err)
		}
		mesh.AddAttribute(attr)
	}

	if err := mesh.Validate(); err != nil {
		return nil, wrapErr(ErrInternalInvariantViolation, err)
	}
	return mesh, nil
}

func boolByte(out *bio.EncoderBuffer, b bool) {
	if b {
		out.EncodeUint8(1)
		return
	}
	out.EncodeUint8(0)
}
