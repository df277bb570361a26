package engine

import (
	"testing"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		index      int
		size       int
		wantIndex  int
		wantPages  int
		wantOffset int
		wantPrev   bool
		wantNext   bool
	}{
		{name: "first of three", total: 25, index: 0, size: 10, wantIndex: 0, wantPages: 3, wantOffset: 0, wantPrev: false, wantNext: true},
		{name: "middle page", total: 25, index: 1, size: 10, wantIndex: 1, wantPages: 3, wantOffset: 10, wantPrev: true, wantNext: true},
		{name: "last partial page", total: 25, index: 2, size: 10, wantIndex: 2, wantPages: 3, wantOffset: 20, wantPrev: true, wantNext: false},
		{name: "exact multiple", total: 20, index: 1, size: 10, wantIndex: 1, wantPages: 2, wantOffset: 10, wantPrev: true, wantNext: false},
		{name: "single page", total: 3, index: 0, size: 10, wantIndex: 0, wantPages: 1, wantOffset: 0, wantPrev: false, wantNext: false},
		{name: "empty", total: 0, index: 0, size: 10, wantIndex: 0, wantPages: 0, wantOffset: 0, wantPrev: false, wantNext: false},
		{name: "clamp past end", total: 25, index: 99, size: 10, wantIndex: 2, wantPages: 3, wantOffset: 20, wantPrev: true, wantNext: false},
		{name: "clamp negative", total: 25, index: -4, size: 10, wantIndex: 0, wantPages: 3, wantOffset: 0, wantPrev: false, wantNext: true},
		{name: "size one", total: 2, index: 1, size: 1, wantIndex: 1, wantPages: 2, wantOffset: 1, wantPrev: true, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.index, tt.size)
			if p.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", p.Index, tt.wantIndex)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", p.Offset, tt.wantOffset)
			}
			if p.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", p.HasPrev, tt.wantPrev)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", p.HasNext, tt.wantNext)
			}
		})
	}
}

// The page-window invariants hold for every combination in a small sweep.
func TestPaginateInvariants(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for size := 1; size <= 12; size++ {
			wantPages := (total + size - 1) / size
			for index := 0; index < wantPages; index++ {
				p := Paginate(total, index, size)
				if p.TotalPages != wantPages {
					t.Fatalf("Paginate(%d, %d, %d).TotalPages = %d, want %d", total, index, size, p.TotalPages, wantPages)
				}
				if p.HasPrev != (index > 0) {
					t.Fatalf("Paginate(%d, %d, %d).HasPrev = %v", total, index, size, p.HasPrev)
				}
				if p.HasNext != (index < wantPages-1) {
					t.Fatalf("Paginate(%d, %d, %d).HasNext = %v", total, index, size, p.HasNext)
				}
				if p.Offset != index*size {
					t.Fatalf("Paginate(%d, %d, %d).Offset = %d", total, index, size, p.Offset)
				}
			}
		}
	}
}
