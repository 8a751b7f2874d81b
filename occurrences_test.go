package revista

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/larabashadi/Revista-2/internal/extract"
)

func placed(form, name string, y float64) extract.Placement {
	return extract.Placement{
		Name: name,
		Form: form,
		Rect: extract.Rect{X0: 10, Y0: y, X1: 110, Y1: y + 100},
	}
}

func TestGroupOccurrences_FormScopedNames(t *testing.T) {
	t.Parallel()

	images := map[string]extract.Image{
		"Im0":         {Ref: 10, Name: "Im0", Format: "png"},
		"Fm0/Im0":     {Ref: 11, Name: "Im0", Format: "png"},
		"Fm0/Fm1/Im9": {Ref: 10, Name: "Im9", Format: "png"},
	}
	placements := []extract.Placement{
		placed("", "Im0", 0),
		placed("Fm0", "Im0", 120),
		placed("Fm0/Fm1", "Im9", 240),
		placed("Fm0", "Im7", 360),
		placed("Fm0", "Im7", 480),
		placed("", "Im7", 600),
	}

	groups, missing := groupOccurrences(placements, images, A4Width, A4Height, occurrenceLimits{
		perImage: 10,
		minSize:  1,
		perPage:  50,
	})

	var refs []int
	var counts []int
	for _, g := range groups {
		refs = append(refs, g.image.Ref)
		counts = append(counts, len(g.rects))
	}
	if diff := cmp.Diff([]int{10, 11}, refs); diff != "" {
		t.Errorf("group refs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 1}, counts); diff != "" {
		t.Errorf("group sizes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Fm0/Im7", "Im7"}, missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupOccurrences_Limits(t *testing.T) {
	t.Parallel()

	images := map[string]extract.Image{"Im0": {Ref: 4, Name: "Im0"}}
	placements := []extract.Placement{
		placed("", "Im0", 0),
		placed("", "Im0", 120),
		placed("", "Im0", 240),
		{Name: "Im0", Rect: extract.Rect{X0: 0, Y0: 0, X1: 5, Y1: 5}},
	}

	tests := []struct {
		name string
		lim  occurrenceLimits
		want int
	}{
		{name: "per image cap", lim: occurrenceLimits{perImage: 2, minSize: 1, perPage: 50}, want: 2},
		{name: "per page cap", lim: occurrenceLimits{perImage: 10, minSize: 1, perPage: 1}, want: 1},
		{name: "min size drops tiny", lim: occurrenceLimits{perImage: 10, minSize: 20, perPage: 50}, want: 3},
	}

	for _, tt := range tests {
		groups, missing := groupOccurrences(placements, images, A4Width, A4Height, tt.lim)
		if len(missing) != 0 {
			t.Errorf("%s: missing = %v, want none", tt.name, missing)
		}
		if len(groups) != 1 || len(groups[0].rects) != tt.want {
			t.Errorf("%s: groups = %+v, want one group of %d", tt.name, groups, tt.want)
		}
	}
}
