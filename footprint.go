// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import "github.com/gogpu/gputypes"

// Sizing constants.
const (
	// bytesPerQuerySlot is the footprint attributed to one query slot.
	bytesPerQuerySlot = 8

	// surfaceBufferCount is the number of backing textures a presentation
	// surface is assumed to rotate through (front and back buffer).
	surfaceBufferCount = 2
)

// TextureShape describes texture geometry for footprint computation.
// It carries everything the size model needs and nothing the backend
// would have to be asked for.
type TextureShape struct {
	// Width and Height are the level-0 dimensions in texels.
	Width  uint32
	Height uint32

	// DepthOrArrayLayers is the array layer count for 1D/2D textures
	// and the depth for 3D textures.
	DepthOrArrayLayers uint32

	// Dimension distinguishes 3D volumes from array-layered textures.
	Dimension gputypes.TextureDimension

	// MipLevelCount is the number of mip levels; 0 is treated as 1.
	MipLevelCount uint32

	// SampleCount is the multisample factor; 0 is treated as 1.
	SampleCount uint32

	// Format is the block layout used to convert texels to bytes.
	Format FormatInfo
}

// Footprint returns the byte footprint of the shape.
//
// For each mip level the block grid is computed from that level's own
// dimensions — level 0 uses Width×Height, and every subsequent level
// halves both (floor, minimum 1). Block counts round up, so partial
// blocks at the edges are charged in full. The per-layer total is then
// multiplied by the array layer count; 3D volumes carry no array layers,
// so their depth does not multiply the footprint.
func (s TextureShape) Footprint() uint64 {
	blockW := uint64(s.Format.BlockWidth)
	blockH := uint64(s.Format.BlockHeight)
	if blockW == 0 {
		blockW = 1
	}
	if blockH == 0 {
		blockH = 1
	}

	mips := s.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := uint64(s.SampleCount)
	if samples == 0 {
		samples = 1
	}

	width := uint64(s.Width)
	height := uint64(s.Height)

	var perLayer uint64
	for level := uint32(0); level < mips; level++ {
		blocksAcross := (width*samples + blockW - 1) / blockW
		blocksDown := (height*samples + blockH - 1) / blockH
		perLayer += blocksAcross * blocksDown * uint64(s.Format.BytesPerBlock)

		if width > 1 {
			width /= 2
		}
		if height > 1 {
			height /= 2
		}
	}

	layers := uint64(1)
	if s.Dimension != gputypes.TextureDimension3D && s.DepthOrArrayLayers > 1 {
		layers = uint64(s.DepthOrArrayLayers)
	}

	return perLayer * layers
}

// TextureFootprint computes the footprint of a texture described by desc,
// resolving the block layout of desc.Format through the format table.
func TextureFootprint(desc *gputypes.TextureDescriptor) uint64 {
	return TextureShape{
		Width:              desc.Size.Width,
		Height:             desc.Size.Height,
		DepthOrArrayLayers: desc.Size.DepthOrArrayLayers,
		Dimension:          desc.Dimension,
		MipLevelCount:      desc.MipLevelCount,
		SampleCount:        desc.SampleCount,
		Format:             FormatOf(desc.Format),
	}.Footprint()
}

// BufferFootprint returns the footprint of a buffer with the given
// declared byte length. Buffers are attributed exactly their declared size.
func BufferFootprint(size uint64) uint64 {
	return size
}

// QuerySetFootprint returns the footprint of a query set with count slots.
func QuerySetFootprint(count uint32) uint64 {
	return bytesPerQuerySlot * uint64(count)
}

// SurfaceFootprint returns the footprint of a presentation surface
// currently configured at width×height in the given format: one
// single-level, single-layer, single-sample texture per backing buffer.
func SurfaceFootprint(width, height uint32, format FormatInfo) uint64 {
	one := TextureShape{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
		Dimension:          gputypes.TextureDimension2D,
		MipLevelCount:      1,
		SampleCount:        1,
		Format:             format,
	}
	return one.Footprint() * surfaceBufferCount
}
