package probe

import (
	"fmt"

	"github.com/okian/avaliece/internal/domain/filter"
	"github.com/okian/avaliece/internal/domain/view"
)

func dropdown(m view.Model, name string) (filter.Dropdown, bool) {
	for _, d := range m.Dropdowns {
		if d.Name == name {
			return d, true
		}
	}
	return filter.Dropdown{}, false
}

// regionOptions returns the concrete region values offered by the full view.
func regionOptions(m view.Model) []string {
	d, ok := dropdown(m, "crede")
	if !ok {
		return nil
	}
	out := make([]string, 0, len(d.Options))
	for _, o := range d.Options {
		if !filter.IsAll(o) {
			out = append(out, o)
		}
	}
	return out
}

// checkRegion compares one region slice against the unfiltered view and
// returns every violated property.
func checkRegion(base, slice view.Model, region string) []string {
	var out []string
	fail := func(format string, args ...any) {
		out = append(out, fmt.Sprintf("%s: ", region)+fmt.Sprintf(format, args...))
	}

	if slice.Outcome != view.OutcomeOK && slice.Outcome != view.OutcomeEmpty {
		fail("outcome %q", slice.Outcome)
		return out
	}
	if slice.Total > base.Total {
		fail("total %d exceeds unfiltered total %d", slice.Total, base.Total)
	}
	if slice.Total == 0 {
		fail("offered region has no rows")
	}

	d, ok := dropdown(slice, "crede")
	switch {
	case !ok:
		fail("region dropdown missing")
	case d.Reset:
		fail("selection was reset")
	case d.Selected != region:
		fail("selected %q", d.Selected)
	}

	for _, name := range []string{"rede", "etapa", "disciplina"} {
		narrow, ok1 := dropdown(slice, name)
		wide, ok2 := dropdown(base, name)
		if !ok1 || !ok2 {
			fail("dropdown %s missing", name)
			continue
		}
		offered := make(map[string]struct{}, len(wide.Options))
		for _, o := range wide.Options {
			offered[o] = struct{}{}
		}
		for _, o := range narrow.Options {
			if _, ok := offered[o]; !ok {
				fail("%s option %q not offered without the region filter", name, o)
			}
		}
	}

	for _, s := range slice.Sections {
		if _, ok := base.Section(s.Assessment); !ok {
			fail("assessment %q absent from the unfiltered view", s.Assessment)
		}
	}
	return out
}
