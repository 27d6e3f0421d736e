package mc

import "fmt"

// OccLocation tracks where each occupant value currently lives, enabling
// uniform choice among the occupants of a given value and O(event) updates
// when an event is applied. Canonical-ensemble generators use it to pick
// swap partners without scanning the configuration.
//
// Internally it keeps, per occupant value, the list of sites currently
// holding that value, plus the position of every site inside its list so
// removal is O(1).
type OccLocation struct {
	// sitesByValue[v] lists the linear site indices currently occupied by
	// value v.
	sitesByValue map[int][]int

	// posInList[l] is the index of site l inside sitesByValue[occ(l)].
	posInList []int

	// occ mirrors the tracked configuration's occupation.
	occ []int
}

// NewOccLocation builds tracking data for the current occupation of config.
func NewOccLocation(config Configuration) *OccLocation {
	n := config.NSites()
	loc := &OccLocation{
		sitesByValue: make(map[int][]int),
		posInList:    make([]int, n),
		occ:          config.Occupation(),
	}
	for l := 0; l < n; l++ {
		v := loc.occ[l]
		loc.posInList[l] = len(loc.sitesByValue[v])
		loc.sitesByValue[v] = append(loc.sitesByValue[v], l)
	}
	return loc
}

// Count returns how many sites currently hold the given occupant value.
func (loc *OccLocation) Count(value int) int {
	return len(loc.sitesByValue[value])
}

// ChooseSite picks a uniformly random site currently holding the given
// occupant value. Returns an error if there is none.
func (loc *OccLocation) ChooseSite(value int, random *RandomSource) (int, error) {
	sites := loc.sitesByValue[value]
	if len(sites) == 0 {
		return 0, fmt.Errorf("%w: no site with occupant %d", ErrNoLegalEvent, value)
	}
	return sites[random.UniformInt(len(sites))], nil
}

// Apply updates the tracking data for an applied event. Must be called with
// the same event passed to the configuration, before or after the
// configuration mutation (the tracker keeps its own occupation mirror).
func (loc *OccLocation) Apply(event *OccEvent) {
	for i, l := range event.LinearSiteIndex {
		oldValue := loc.occ[l]
		newValue := event.NewOcc[i]
		if oldValue == newValue {
			continue
		}
		loc.remove(l, oldValue)
		loc.posInList[l] = len(loc.sitesByValue[newValue])
		loc.sitesByValue[newValue] = append(loc.sitesByValue[newValue], l)
		loc.occ[l] = newValue
	}
}

// remove deletes site l from the list for value v by swapping in the last
// element.
func (loc *OccLocation) remove(l, v int) {
	sites := loc.sitesByValue[v]
	pos := loc.posInList[l]
	last := len(sites) - 1
	moved := sites[last]
	sites[pos] = moved
	loc.posInList[moved] = pos
	loc.sitesByValue[v] = sites[:last]
}
