package logdata

import "github.com/google/uuid"

// FilteredView is the read-only accessor a search/filter consumer binds
// to: NbLines, PosForLine, GetLine, GetExpandedLine, thread-safe, bound
// to the Facade that produced it. It implements none of the level/text
// filtering engine itself; that belongs to the consumer. This type only
// hands out a stable, identified read path into the same Facade every
// other reader uses.
type FilteredView struct {
	id     uuid.UUID
	facade *Facade
}

func newFilteredView(f *Facade) *FilteredView {
	return &FilteredView{id: uuid.New(), facade: f}
}

// ID returns a stable identifier for this view, useful for consumers that
// track several concurrent filtered views (e.g. multiple search tabs).
func (v *FilteredView) ID() uuid.UUID { return v.id }

// NbLines mirrors Facade.NbLines.
func (v *FilteredView) NbLines() LinesCount { return v.facade.NbLines() }

// PosForLine mirrors IndexingData.PosForLine through the bound Facade.
func (v *FilteredView) PosForLine(line LineNumber) BytePos {
	return v.facade.data.PosForLine(line)
}

// GetLine mirrors Facade.GetLine.
func (v *FilteredView) GetLine(n LineNumber) string { return v.facade.GetLine(n) }

// GetExpandedLine mirrors Facade.GetExpandedLine.
func (v *FilteredView) GetExpandedLine(n LineNumber) string { return v.facade.GetExpandedLine(n) }
