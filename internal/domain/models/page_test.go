package models

import "testing"

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	got, meta := Paginate(items, Page{Number: 3, Size: 5})
	if len(got) != 2 || got[0] != 11 {
		t.Fatalf("page 3 = %v", got)
	}
	if meta.LastPage != 3 || meta.TotalRecords != 12 || meta.FirstPage != 1 {
		t.Fatalf("metadata = %+v", meta)
	}

	got, _ = Paginate(items, Page{Number: 9, Size: 5})
	if len(got) != 0 {
		t.Fatalf("page past the end must be empty, got %v", got)
	}

	got, meta = Paginate([]int{}, Page{Number: 1, Size: 5})
	if len(got) != 0 || meta.LastPage != 0 || meta.FirstPage != 0 {
		t.Fatalf("empty list: %v %+v", got, meta)
	}
}
