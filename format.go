// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// FormatInfo describes the block layout of a texture format: the texel
// dimensions of one block and the bytes one block occupies. Uncompressed
// formats use 1×1 blocks; block-compressed formats (BC, ETC2, ASTC) use
// larger blocks.
type FormatInfo struct {
	// BlockWidth is the width of one block in texels.
	BlockWidth uint32

	// BlockHeight is the height of one block in texels.
	BlockHeight uint32

	// BytesPerBlock is the storage size of one block in bytes.
	BytesPerBlock uint32
}

// defaultFormatInfo is used for formats missing from the table:
// 4 bytes per texel, the most common uncompressed layout.
var defaultFormatInfo = FormatInfo{BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 4}

// formatMu guards formats. Registration is rare; lookups happen on every
// texture footprint computation.
var formatMu sync.RWMutex

// formats maps texture formats to their block layout.
var formats = map[gputypes.TextureFormat]FormatInfo{
	gputypes.TextureFormatRGBA8Unorm:          {BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 4},
	gputypes.TextureFormatBGRA8Unorm:          {BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 4},
	gputypes.TextureFormatR8Unorm:             {BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 1},
	gputypes.TextureFormatDepth24PlusStencil8: {BlockWidth: 1, BlockHeight: 1, BytesPerBlock: 4},
}

// RegisterFormat adds or replaces the block layout for a texture format.
//
// The built-in table covers the formats the GoGPU stack creates today;
// backends that expose additional formats (compressed families in
// particular) register them here so texture footprints stay exact.
func RegisterFormat(format gputypes.TextureFormat, info FormatInfo) {
	formatMu.Lock()
	defer formatMu.Unlock()

	formats[format] = info
}

// LookupFormat returns the registered block layout for format, and whether
// the format is known.
func LookupFormat(format gputypes.TextureFormat) (FormatInfo, bool) {
	formatMu.RLock()
	defer formatMu.RUnlock()

	info, ok := formats[format]
	return info, ok
}

// FormatOf returns the block layout for format, falling back to a 1×1
// 4-byte block for unknown formats.
func FormatOf(format gputypes.TextureFormat) FormatInfo {
	if info, ok := LookupFormat(format); ok {
		return info
	}
	return defaultFormatInfo
}
