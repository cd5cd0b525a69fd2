package main

import (
	"context"
	"image"
	"math"
)

// NineTiles are the nine tiles of a nine-grid. Tile (row, col) is at index
// row*3+col. Size is the side of the composite the tiles were cut from,
// which can exceed 3*TileSize by up to two pixels.
type NineTiles struct {
	Size     int
	TileSize int
	Tiles    [9]EncodedImage
}

// Assembler runs the export pipelines. It keeps no state between calls.
type Assembler struct {
	loader     *Loader
	newSurface SurfaceFactory
}

func NewAssembler(loader *Loader, newSurface SurfaceFactory) *Assembler {
	return &Assembler{loader: loader, newSurface: newSurface}
}

// NineGrid renders ref into a square composite using crop, then slices it
// into a 3x3 grid. uiContainerSize is the side of the preview box that crop's
// pan was measured in.
func (a *Assembler) NineGrid(ctx context.Context, ref SourceRef, crop CropArea, uiContainerSize float64) (NineTiles, error) {
	crop, err := crop.normalized()
	if err != nil {
		return NineTiles{}, err
	}
	if !(uiContainerSize > 0) || math.IsInf(uiContainerSize, 0) {
		return NineTiles{}, invalidf("container size must be positive, got %g", uiContainerSize)
	}

	src, err := a.loader.Load(ctx, ref)
	if err != nil {
		return NineTiles{}, err
	}

	size := NineGridSize(src.Width, src.Height)
	surface, err := a.newSurface(size, size)
	if err != nil {
		return NineTiles{}, err
	}
	whole := rect(0, 0, float64(size), float64(size))
	surface.FillRect(whole, White)

	k := float64(size) / uiContainerSize
	Composite(surface, src.Image, whole, crop.Pan().Output(k), crop.Scale)
	return sliceTiles(surface, size)
}

func sliceTiles(s Surface, size int) (NineTiles, error) {
	side := size / 3
	tiles := NineTiles{Size: size, TileSize: side}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r := image.Rect(col*side, row*side, (col+1)*side, (row+1)*side)
			tile, err := s.Crop(r)
			if err != nil {
				return NineTiles{}, err
			}
			enc, err := encodeToBytes(tile)
			if err != nil {
				return NineTiles{}, err
			}
			tiles.Tiles[row*3+col] = enc
		}
	}
	return tiles, nil
}

// Stitch stacks items vertically into one composite. An outputWidth of zero
// picks one from the sources' native widths.
func (a *Assembler) Stitch(ctx context.Context, items []StitchItem, cfg StitchConfig, outputWidth int) (*StitchResult, error) {
	plan, err := a.planStitch(ctx, items, cfg, outputWidth)
	if err != nil {
		return nil, err
	}
	layout := plan.layout
	surface, err := a.newSurface(layout.Physical.X, layout.Physical.Y)
	if err != nil {
		return nil, err
	}
	surface.Scale(layout.FinalScale)
	surface.FillRect(rect(0, 0, float64(layout.Width), layout.TotalHeight), cfg.BackgroundColor)

	for i, it := range plan.items {
		src := plan.rasters[i]
		slot := layout.Slots[i]
		surface.ClipRect(slot)
		surface.FillRect(slot, cfg.BackgroundColor)
		surface.ResetClip()

		slotW, slotH := dims(slot)
		drawW, drawH := CoverFit(float64(src.Width), float64(src.Height), slotW, slotH)
		Composite(surface, src.Image, slot, it.Pan().Output(drawW, drawH), it.Scale)
	}
	return &StitchResult{Layout: layout, surface: surface}, nil
}

// StitchLayout loads the sources and plans the stitch without rendering it.
func (a *Assembler) StitchLayout(ctx context.Context, items []StitchItem, cfg StitchConfig, outputWidth int) (StitchLayout, error) {
	plan, err := a.planStitch(ctx, items, cfg, outputWidth)
	if err != nil {
		return StitchLayout{}, err
	}
	return plan.layout, nil
}

type stitchPlan struct {
	items   []StitchItem
	rasters []*Raster
	layout  StitchLayout
}

func (a *Assembler) planStitch(ctx context.Context, items []StitchItem, cfg StitchConfig, outputWidth int) (stitchPlan, error) {
	items, err := normalizeItems(items)
	if err != nil {
		return stitchPlan{}, err
	}
	if err := cfg.validate(); err != nil {
		return stitchPlan{}, err
	}

	refs := make([]SourceRef, len(items))
	for i, it := range items {
		refs[i] = it.Source
	}
	rasters, err := a.loader.LoadAll(ctx, refs)
	if err != nil {
		return stitchPlan{}, err
	}

	aspects := make([]float64, len(rasters))
	widths := make([]int, len(rasters))
	for i, r := range rasters {
		aspects[i] = r.Aspect()
		widths[i] = r.Width
	}
	if outputWidth == 0 {
		outputWidth = StitchWidth(widths)
	}

	layout, err := PlanStitch(items, aspects, cfg, outputWidth)
	if err != nil {
		return stitchPlan{}, err
	}
	return stitchPlan{items: items, rasters: rasters, layout: layout}, nil
}

func normalizeItems(items []StitchItem) ([]StitchItem, error) {
	if len(items) == 0 {
		return nil, invalidf("stitch needs at least one item")
	}
	out := make([]StitchItem, len(items))
	for i, it := range items {
		n, err := it.normalized()
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
