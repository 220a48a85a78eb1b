package playlist

import "github.com/llehouerou/tazaudio/internal/item"

// Playlist holds an ordered collection of playable items and a cursor.
type Playlist struct {
	items        []item.PlayableItem
	currentIndex int // -1 only if empty
}

// New creates a new empty playlist.
func New() *Playlist {
	return &Playlist{
		items:        make([]item.PlayableItem, 0),
		currentIndex: -1,
	}
}

// FromItems restores a playlist. The cursor is clamped into range.
func FromItems(current int, items []item.PlayableItem) *Playlist {
	p := New()
	p.items = append(p.items, items...)
	switch {
	case len(p.items) == 0:
		p.currentIndex = -1
	case current < 0:
		p.currentIndex = 0
	case current >= len(p.items):
		p.currentIndex = len(p.items) - 1
	default:
		p.currentIndex = current
	}
	return p
}

// Append adds items to the playlist.
// An empty playlist is replaced outright and positioned on its first item.
// Otherwise the items are appended, and if advance is set the cursor moves to
// the first appended item.
func (p *Playlist) Append(items []item.PlayableItem, advance bool) {
	if len(items) == 0 {
		return
	}
	if len(p.items) == 0 {
		p.items = append(p.items[:0], items...)
		p.currentIndex = 0
		return
	}
	insertIndex := len(p.items)
	p.items = append(p.items, items...)
	if advance {
		p.currentIndex = insertIndex
	}
}

// Current returns the item under the cursor, or nil if empty.
func (p *Playlist) Current() item.PlayableItem {
	if p.currentIndex < 0 || p.currentIndex >= len(p.items) {
		return nil
	}
	return p.items[p.currentIndex]
}

// CurrentIndex returns the cursor (-1 if empty).
func (p *Playlist) CurrentIndex() int {
	return p.currentIndex
}

// Item returns the item at index, or nil if out of bounds.
func (p *Playlist) Item(index int) item.PlayableItem {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return p.items[index]
}

// Items returns a copy of all items.
func (p *Playlist) Items() []item.PlayableItem {
	result := make([]item.PlayableItem, len(p.items))
	copy(result, p.items)
	return result
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// IsEmpty returns true if the playlist has no items.
func (p *Playlist) IsEmpty() bool {
	return len(p.items) == 0
}

// IsAtEnd returns true if the cursor is on the last item or the playlist is
// empty.
func (p *Playlist) IsAtEnd() bool {
	return len(p.items) == 0 || p.currentIndex == len(p.items)-1
}

// HasNext returns true if there's an item after the cursor.
func (p *Playlist) HasNext() bool {
	return !p.IsAtEnd()
}

// Next advances the cursor and returns the new current item.
// Returns nil if there is no next item.
func (p *Playlist) Next() item.PlayableItem {
	if !p.HasNext() {
		return nil
	}
	p.currentIndex++
	return p.Current()
}

// MoveTo sets the cursor. Returns the item there, or nil if index is invalid.
func (p *Playlist) MoveTo(index int) item.PlayableItem {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	p.currentIndex = index
	return p.Current()
}

// Move moves the item at fromIndex to toIndex. The cursor stays on the
// item it was on. Returns false if either index is out of bounds.
func (p *Playlist) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(p.items) {
		return false
	}
	if toIndex < 0 || toIndex >= len(p.items) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	moved := p.items[fromIndex]
	// Remove from old position
	p.items = append(p.items[:fromIndex], p.items[fromIndex+1:]...)
	// Insert at new position
	p.items = append(p.items[:toIndex], append([]item.PlayableItem{moved}, p.items[toIndex:]...)...)

	switch {
	case p.currentIndex == fromIndex:
		p.currentIndex = toIndex
	case fromIndex < p.currentIndex && toIndex >= p.currentIndex:
		p.currentIndex--
	case fromIndex > p.currentIndex && toIndex <= p.currentIndex:
		p.currentIndex++
	}
	return true
}

// IndexOf returns the index of the first item equal to it, or -1.
func (p *Playlist) IndexOf(it item.PlayableItem) int {
	for i, candidate := range p.items {
		if item.Equal(candidate, it) {
			return i
		}
	}
	return -1
}

// RemoveAt removes the item at index and keeps the cursor on a valid item.
func (p *Playlist) RemoveAt(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)

	switch {
	case len(p.items) == 0:
		p.currentIndex = -1
	case p.currentIndex > index:
		p.currentIndex--
	case p.currentIndex >= len(p.items):
		// Removed the current last item
		p.currentIndex = len(p.items) - 1
	}
	return true
}

// Clear removes all items.
func (p *Playlist) Clear() {
	p.items = p.items[:0]
	p.currentIndex = -1
}
