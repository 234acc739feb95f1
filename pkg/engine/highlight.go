package engine

import (
	"time"

	"github.com/dd0wney/cluso-topoview/pkg/config"
)

// Highlighter animates visual emphasis of the externally-selected bundle:
// the selected body grows and turns fully opaque, everything else returns
// to neutral scale and a dimmed opacity. All animation goes through the
// tween scheduler, so re-selecting mid-animation simply replaces the
// in-flight tweens.
type Highlighter struct {
	cfg      config.Engine
	tweens   *Tweens
	registry *Registry

	selected string
}

// NewHighlighter creates a highlighter over the registry's bundles.
func NewHighlighter(cfg config.Engine, tweens *Tweens, registry *Registry) *Highlighter {
	return &Highlighter{cfg: cfg, tweens: tweens, registry: registry}
}

// Selected returns the currently highlighted device id, or "".
func (h *Highlighter) Selected() string {
	return h.selected
}

// Select reacts to a change of the external selection. An id absent from
// the current bundle set is a no-op: no visual change, no error, and the
// previous highlight stays in place. An empty id clears the highlight.
func (h *Highlighter) Select(now time.Time, id string) {
	if id == h.selected {
		return
	}
	if id != "" {
		if _, ok := h.registry.Get(id); !ok {
			return
		}
	}
	h.selected = id
	h.Refresh(now)
}

// Refresh re-applies the current selection's emphasis to every live
// bundle. Called after Select and after each sync so bundles created
// while a selection is active pick up the dimmed state.
func (h *Highlighter) Refresh(now time.Time) {
	if h.selected == "" {
		h.registry.Each(func(b *Bundle) {
			h.animate(now, b, 1, 1)
		})
		return
	}
	h.registry.Each(func(b *Bundle) {
		if b.ID == h.selected {
			h.animate(now, b, h.cfg.HighlightScale, 1)
		} else {
			h.animate(now, b, 1, h.cfg.DimOpacity)
		}
	})
}

// DropSelection forgets the selected id if its bundle no longer exists.
// The selection is externally owned; this only prevents a stale highlight
// from resurrecting when the id reappears.
func (h *Highlighter) DropSelection(id string) {
	if h.selected == id {
		h.selected = ""
	}
}

func (h *Highlighter) animate(now time.Time, b *Bundle, scale, opacity float64) {
	bundle := b
	h.tweens.Start(now, bundle, "scale", bundle.highlightScale, scale, h.cfg.HighlightDuration, EaseOutCubic, func(v float64) {
		bundle.highlightScale = v
	})
	h.tweens.Start(now, bundle, "opacity", bundle.Body.Opacity, opacity, h.cfg.HighlightDuration, EaseOutCubic, func(v float64) {
		bundle.Body.Opacity = v
	})
}
