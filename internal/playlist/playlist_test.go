package playlist

import (
	"fmt"
	"testing"

	"github.com/llehouerou/tazaudio/internal/item"
)

var testIssue = item.IssueStub{Key: item.IssueKey{Feed: "taz", Date: "2024-05-03", Status: "regular"}}

func articleItems(keys ...string) []item.PlayableItem {
	out := make([]item.PlayableItem, len(keys))
	for i, k := range keys {
		out[i] = item.ArticleAudio{
			IssueStub: testIssue,
			Article:   item.Article{Key: k, Audio: &item.Audio{File: k + ".mp3"}},
		}
	}
	return out
}

func TestNew(t *testing.T) {
	p := New()

	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if p.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", p.CurrentIndex())
	}
	if p.Current() != nil {
		t.Error("Current() should be nil for empty playlist")
	}
	if !p.IsAtEnd() {
		t.Error("empty playlist should be at end")
	}
	if p.Items() == nil {
		t.Error("Items() should return empty slice, not nil")
	}
}

func TestAppend_EmptyAlwaysStartsAtZero(t *testing.T) {
	for _, advance := range []bool{false, true} {
		t.Run(fmt.Sprintf("advance=%v", advance), func(t *testing.T) {
			p := New()
			p.Append(articleItems("a", "b", "c"), advance)

			if p.CurrentIndex() != 0 {
				t.Errorf("CurrentIndex() = %d, want 0", p.CurrentIndex())
			}
			if p.Len() != 3 {
				t.Errorf("Len() = %d, want 3", p.Len())
			}
		})
	}
}

func TestAppend_WithoutAdvanceKeepsCursor(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)
	p.MoveTo(1)

	p.Append(articleItems("c", "d"), false)

	if p.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1 (unchanged)", p.CurrentIndex())
	}
	if p.Len() != 4 {
		t.Errorf("Len() = %d, want 4", p.Len())
	}
}

func TestAppend_WithAdvanceMovesToFirstAppended(t *testing.T) {
	p := New()
	p.Append(articleItems("a"), false)

	p.Append(articleItems("b", "c"), true)

	if p.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", p.CurrentIndex())
	}
	if got := p.Current().MediaID(); got != "b" {
		t.Errorf("Current() = %q, want b", got)
	}
}

func TestAppend_NothingIsNoop(t *testing.T) {
	p := New()
	p.Append(nil, true)

	if p.CurrentIndex() != -1 || p.Len() != 0 {
		t.Errorf("empty append changed playlist: index=%d len=%d", p.CurrentIndex(), p.Len())
	}
}

func TestIsAtEnd(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)

	if p.IsAtEnd() {
		t.Error("cursor at 0 of 2 should not be at end")
	}
	p.Next()
	if !p.IsAtEnd() {
		t.Error("cursor at last index should be at end")
	}
	if p.Next() != nil {
		t.Error("Next() at end should return nil")
	}
}

func TestNext(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)

	if got := p.Next(); got == nil || got.MediaID() != "b" {
		t.Errorf("Next() = %v, want b", got)
	}
	if p.Next() != nil {
		t.Error("Next() at end should return nil")
	}
	if p.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", p.CurrentIndex())
	}
}

func mediaIDs(p *Playlist) string {
	ids := ""
	for _, it := range p.Items() {
		ids += it.MediaID()
	}
	return ids
}

func TestMove(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		from, to    int
		wantOrder   string
		wantCurrent int
	}{
		{"forward", 3, 0, 2, "bcade", 3},
		{"backward", 0, 4, 1, "aebcd", 0},
		{"current item moves", 1, 1, 3, "acdbe", 3},
		{"across cursor forward", 2, 0, 3, "bcdae", 1},
		{"across cursor backward", 2, 4, 0, "eabcd", 3},
		{"onto cursor from below", 2, 0, 2, "bcade", 1},
		{"onto cursor from above", 2, 4, 2, "abecd", 3},
		{"same index", 2, 1, 1, "abcde", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromItems(tt.current, articleItems("a", "b", "c", "d", "e"))

			if !p.Move(tt.from, tt.to) {
				t.Fatal("Move should return true")
			}
			if got := mediaIDs(p); got != tt.wantOrder {
				t.Errorf("order = %q, want %q", got, tt.wantOrder)
			}
			if p.CurrentIndex() != tt.wantCurrent {
				t.Errorf("CurrentIndex() = %d, want %d", p.CurrentIndex(), tt.wantCurrent)
			}
		})
	}
}

func TestMove_InvalidIndex(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)

	tests := []struct {
		name string
		from int
		to   int
	}{
		{"negative from", -1, 0},
		{"negative to", 0, -1},
		{"from out of bounds", 5, 0},
		{"to out of bounds", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p.Move(tt.from, tt.to) {
				t.Error("Move should return false")
			}
			if got := mediaIDs(p); got != "ab" {
				t.Errorf("order = %q, want ab (unchanged)", got)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)

	if got := p.IndexOf(articleItems("b")[0]); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := p.IndexOf(articleItems("z")[0]); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
}

func TestMoveTo_Invalid(t *testing.T) {
	p := New()
	p.Append(articleItems("a"), false)

	if p.MoveTo(3) != nil {
		t.Error("MoveTo out of range should return nil")
	}
	if p.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (unchanged)", p.CurrentIndex())
	}
}

func TestRemoveAt(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		remove    int
		wantIndex int
		wantLen   int
	}{
		{name: "before cursor", current: 2, remove: 0, wantIndex: 1, wantLen: 2},
		{name: "after cursor", current: 0, remove: 2, wantIndex: 0, wantLen: 2},
		{name: "current in middle", current: 1, remove: 1, wantIndex: 1, wantLen: 2},
		{name: "current at end", current: 2, remove: 2, wantIndex: 1, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			p.Append(articleItems("a", "b", "c"), false)
			p.MoveTo(tt.current)

			if !p.RemoveAt(tt.remove) {
				t.Fatal("RemoveAt returned false")
			}
			if p.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", p.CurrentIndex(), tt.wantIndex)
			}
			if p.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", p.Len(), tt.wantLen)
			}
		})
	}
}

func TestRemoveAt_LastItemEmptiesCursor(t *testing.T) {
	p := New()
	p.Append(articleItems("a"), false)

	p.RemoveAt(0)

	if p.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", p.CurrentIndex())
	}
	if p.RemoveAt(0) {
		t.Error("RemoveAt on empty playlist should return false")
	}
}

func TestFromItems_ClampsCursor(t *testing.T) {
	tests := []struct {
		current int
		n       int
		want    int
	}{
		{current: 1, n: 3, want: 1},
		{current: 7, n: 3, want: 2},
		{current: -4, n: 3, want: 0},
		{current: 0, n: 0, want: -1},
	}

	for _, tt := range tests {
		keys := make([]string, tt.n)
		for i := range keys {
			keys[i] = fmt.Sprintf("k%d", i)
		}
		p := FromItems(tt.current, articleItems(keys...))
		if p.CurrentIndex() != tt.want {
			t.Errorf("FromItems(%d, %d items).CurrentIndex() = %d, want %d", tt.current, tt.n, p.CurrentIndex(), tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	p := New()
	p.Append(articleItems("a", "b"), false)

	p.Clear()

	if !p.IsEmpty() || p.CurrentIndex() != -1 {
		t.Errorf("after Clear: len=%d index=%d", p.Len(), p.CurrentIndex())
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	p := New()
	p.Append(articleItems("a"), false)

	items := p.Items()
	items[0] = nil

	if p.Current() == nil {
		t.Error("mutating Items() result changed the playlist")
	}
}
