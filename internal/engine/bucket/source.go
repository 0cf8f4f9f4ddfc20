package bucket

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/drawbucket/internal/engine/handle"
)

type source struct {
	layout Layout
	rng    Range
}

// SourceInfo describes a registered source.
type SourceInfo struct {
	Layout Layout
	Range  Range
}

// AddSource registers a geometry binding and returns its handle.
func (b *Bucket) AddSource(layout Layout, rng Range) (handle.Handle, error) {
	if layout == nil {
		return handle.Nil, fmt.Errorf("add source: %w", ErrNilLayout)
	}
	id, err := b.sources.Allocate(source{layout: layout, rng: rng})
	if err != nil {
		b.log.Error("source handle overflow", zap.Int("sources", b.sources.Len()), zap.Error(err))
		return handle.Nil, fmt.Errorf("add source: %w", err)
	}
	return id, nil
}

// Source returns the layout and range registered under id.
func (b *Bucket) Source(id handle.Handle) (SourceInfo, error) {
	src, ok := b.sources.Lookup(id)
	if !ok {
		return SourceInfo{}, fmt.Errorf("source %d: %w", id, ErrInvalidSource)
	}
	return SourceInfo{Layout: src.layout, Range: src.rng}, nil
}

// SourceCount returns the number of live sources.
func (b *Bucket) SourceCount() int {
	return b.sources.Live()
}

// SetSourceRange re-binds the draw sub-range of a source. Units pick the new
// range up on the next draw.
func (b *Bucket) SetSourceRange(id handle.Handle, rng Range) error {
	if !b.sources.Contains(id) {
		return fmt.Errorf("set source range %d: %w", id, ErrInvalidSource)
	}
	b.sources.Ptr(id).rng = rng
	return nil
}

// SetSourceLayout swaps the layout of a source. Every unit drawing from it
// gets its layout key and draw variant refreshed.
func (b *Bucket) SetSourceLayout(id handle.Handle, layout Layout) error {
	if !b.sources.Contains(id) {
		return fmt.Errorf("set source layout %d: %w", id, ErrInvalidSource)
	}
	if layout == nil {
		return fmt.Errorf("set source layout %d: %w", id, ErrNilLayout)
	}
	b.sources.Ptr(id).layout = layout

	key, indexed := layout.LayoutID(), layout.Indexed()
	for i := range b.units {
		u := &b.units[i]
		if u.source != id || u.key.erase {
			continue
		}
		if u.layout != key && u.key.visible && b.order.usesLayout() {
			b.dirty |= needsSort
		}
		u.layout = key
		u.indexed = indexed
		u.resolve(b.baseInstance)
	}
	return nil
}

// RemoveSource unregisters a source. Every unit drawing from it is marked
// for erasure and disappears at the next Process.
func (b *Bucket) RemoveSource(id handle.Handle) error {
	if !b.sources.Contains(id) {
		return fmt.Errorf("remove source %d: %w", id, ErrInvalidSource)
	}

	cascaded := 0
	for i := range b.units {
		u := &b.units[i]
		if u.source == id && !u.key.erase {
			u.key.erase = true
			cascaded++
		}
	}
	if cascaded > 0 {
		b.dirty |= needsSweep | needsSort
	}
	b.sources.Release(id)

	b.log.Debug("source removed", zap.Uint32("source", uint32(id)), zap.Int("units", cascaded))
	return nil
}
