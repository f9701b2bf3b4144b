package gallery

import "sort"

// SetMultiSelect toggles multi-select mode. Leaving it clears the selection.
func (s *Store) SetMultiSelect(on bool) {
	s.Update(func(st *State) {
		st.MultiSelect = on
		if !on {
			st.Selected = map[string]bool{}
		}
	})
}

// Toggle flips the selection of id. Outside multi-select mode the selection
// holds at most one image.
func (s *Store) Toggle(id string) {
	s.Update(func(st *State) {
		switch {
		case st.Selected[id]:
			st.Selected = without(st.Selected, id)
		case st.MultiSelect:
			st.Selected = with(st.Selected, id)
		default:
			st.Selected = with(nil, id)
		}
	})
}

// SelectAll selects every loaded image and enters multi-select mode.
func (s *Store) SelectAll() {
	s.Update(func(st *State) {
		ids := make([]string, 0, len(st.Items))
		for _, img := range st.Items {
			ids = append(ids, img.ID)
		}
		st.MultiSelect = true
		st.Selected = with(nil, ids...)
	})
}

// SelectBroken selects every image marked broken, for bulk cleanup.
func (s *Store) SelectBroken() {
	s.Update(func(st *State) {
		st.MultiSelect = true
		st.Selected = with(st.Selected, keys(st.Broken)...)
	})
}

func (s *Store) ClearSelection() {
	s.Update(func(st *State) {
		st.Selected = map[string]bool{}
	})
}

// MarkBroken records that id's URL failed to load.
func (s *Store) MarkBroken(id string) {
	s.Update(func(st *State) {
		if !st.Broken[id] {
			st.Broken = with(st.Broken, id)
		}
	})
}

// Selected returns the selected ids in sorted order.
func (s *Store) Selected() []string {
	return keys(s.Snapshot().Data.Selected)
}

// Broken returns the broken ids in sorted order.
func (s *Store) Broken() []string {
	return keys(s.Snapshot().Data.Broken)
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k, v := range set {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
