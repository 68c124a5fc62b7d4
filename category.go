// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import "fmt"

// Category classifies a tracked GPU resource for aggregate reporting.
//
// The set of categories is fixed: every object the tracker accepts falls
// into exactly one of them, and [Snapshot] reports one counter pair
// (count, bytes) per category.
type Category uint8

// Resource categories.
const (
	// CategoryBuffer is a GPU buffer.
	CategoryBuffer Category = iota

	// CategoryTexture is a GPU texture.
	CategoryTexture

	// CategorySampler is a texture sampler.
	CategorySampler

	// CategoryBindGroup is a bind group.
	CategoryBindGroup

	// CategoryBindGroupLayout is a bind group layout.
	CategoryBindGroupLayout

	// CategoryPipelineLayout is a pipeline layout.
	CategoryPipelineLayout

	// CategoryShaderModule is a compiled shader module.
	CategoryShaderModule

	// CategoryComputePipeline is a compute pipeline.
	CategoryComputePipeline

	// CategoryRenderPipeline is a render pipeline.
	CategoryRenderPipeline

	// CategoryQuerySet is a query set.
	CategoryQuerySet

	// CategoryCanvasSurface is a presentation surface.
	CategoryCanvasSurface

	// numCategories is the number of categories; keep last.
	numCategories
)

// String returns the category name used in reports.
func (c Category) String() string {
	switch c {
	case CategoryBuffer:
		return "buffer"
	case CategoryTexture:
		return "texture"
	case CategorySampler:
		return "sampler"
	case CategoryBindGroup:
		return "bind-group"
	case CategoryBindGroupLayout:
		return "bind-group-layout"
	case CategoryPipelineLayout:
		return "pipeline-layout"
	case CategoryShaderModule:
		return "shader-module"
	case CategoryComputePipeline:
		return "compute-pipeline"
	case CategoryRenderPipeline:
		return "render-pipeline"
	case CategoryQuerySet:
		return "query-set"
	case CategoryCanvasSurface:
		return "canvas-surface"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Categories returns all resource categories in report order.
// The returned slice is a copy and can be safely modified.
func Categories() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}
