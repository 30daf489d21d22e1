package pagination

import (
	"errors"
	"net/http/httptest"
	"testing"
)

func TestFromRequestDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/chats", nil)
	p := FromRequest(r, 5)
	if p.Number != 1 || p.Size != 5 {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestFromRequestOverrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/chats?page=3&page_size=20", nil)
	p := FromRequest(r, 5)
	if p.Number != 3 || p.Size != 20 {
		t.Fatalf("unexpected params: %+v", p)
	}
	if p.Offset() != 40 {
		t.Fatalf("expected offset 40, got %d", p.Offset())
	}
}

func TestFromRequestIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/chats?page=zero&page_size=-1", nil)
	p := FromRequest(r, 10)
	if p.Number != 1 || p.Size != 10 {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestPages(t *testing.T) {
	cases := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, c := range cases {
		if got := Pages(c.total, c.size); got != c.want {
			t.Errorf("Pages(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestWindowCoversSequence(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	size := 5
	pages := Pages(len(items), size)
	if pages != 5 {
		t.Fatalf("expected 5 pages, got %d", pages)
	}

	var joined []int
	for n := 1; n <= pages; n++ {
		page, err := Window(items, Params{Number: n, Size: size})
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if len(page.Results) == 0 {
			t.Fatalf("page %d is empty", n)
		}
		if page.Count != len(items) {
			t.Fatalf("page %d count = %d, want %d", n, page.Count, len(items))
		}
		joined = append(joined, page.Results...)
	}
	if len(joined) != len(items) {
		t.Fatalf("joined %d items, want %d", len(joined), len(items))
	}
	for i, v := range joined {
		if v != items[i] {
			t.Fatalf("joined[%d] = %d, want %d", i, v, items[i])
		}
	}
}

func TestWindowNextPrevious(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	first, err := Window(items, Params{Number: 1, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if first.Previous != nil {
		t.Error("first page should have no previous")
	}
	if first.Next == nil || *first.Next != 2 {
		t.Errorf("first page next = %v, want 2", first.Next)
	}

	last, err := Window(items, Params{Number: 3, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if last.Next != nil {
		t.Error("last page should have no next")
	}
	if last.Previous == nil || *last.Previous != 2 {
		t.Errorf("last page previous = %v, want 2", last.Previous)
	}
}

func TestWindowPastEnd(t *testing.T) {
	items := []int{1, 2, 3}
	_, err := Window(items, Params{Number: 2, Size: 5})
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestWindowEmptySequence(t *testing.T) {
	page, err := Window([]int(nil), Params{Number: 1, Size: 5})
	if err != nil {
		t.Fatalf("page 1 of empty sequence should not fail: %v", err)
	}
	if page.Count != 0 || len(page.Results) != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Results == nil {
		t.Fatal("results must serialize as [], not null")
	}

	if _, err := Window([]int(nil), Params{Number: 2, Size: 5}); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("page 2 of empty sequence should fail, got %v", err)
	}
}

func TestNewPagePastEnd(t *testing.T) {
	_, err := NewPage([]int{}, 12, Params{Number: 4, Size: 5})
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}
