// Package levels maps a streak length to a tier.
package levels

import "slices"

type Key string

const (
	Bronze    Key = "BRONZE"
	Silver    Key = "SILVER"
	Gold      Key = "GOLD"
	Diamond   Key = "DIAMOND"
	Emerald   Key = "EMERALD"
	Guardian  Key = "GUARDIAN"
	Celestial Key = "CELESTIAL"
)

// Level is one tier: it is unlocked once the streak reaches DaysRequired.
type Level struct {
	Key          Key
	Name         string
	Color        string
	DaysRequired int
}

var defaultTable = []Level{
	{Key: Bronze, Name: "Bronze", Color: "#8B5A2B", DaysRequired: 0},
	{Key: Silver, Name: "Prata", Color: "#C0C0C0", DaysRequired: 7},
	{Key: Gold, Name: "Ouro", Color: "#C9A24D", DaysRequired: 30},
	{Key: Diamond, Name: "Diamante", Color: "#7FD5FF", DaysRequired: 90},
	{Key: Emerald, Name: "Esmeralda", Color: "#138A52", DaysRequired: 180},
	{Key: Guardian, Name: "Guardião", Color: "#3B82F6", DaysRequired: 365},
	{Key: Celestial, Name: "Áurea Celestial", Color: "#F9E7A1", DaysRequired: 730},
}

// Default returns a copy of the built-in tier table, ascending by threshold.
func Default() []Level {
	return slices.Clone(defaultTable)
}

// Resolve returns the tier with the largest DaysRequired not above days.
// When no tier qualifies (negative days, or a table whose lowest threshold
// is above days) the lowest tier is returned. An empty table yields the
// zero Level.
func Resolve(days int, table []Level) Level {
	if len(table) == 0 {
		return Level{}
	}

	lowest := table[0]
	best, found := Level{}, false
	for _, l := range table {
		if l.DaysRequired < lowest.DaysRequired {
			lowest = l
		}
		if l.DaysRequired <= days && (!found || l.DaysRequired > best.DaysRequired) {
			best, found = l, true
		}
	}
	if !found {
		return lowest
	}
	return best
}

// Lowest returns the entry with the smallest threshold.
func Lowest(table []Level) Level {
	return Resolve(-1, table)
}

// Find looks key up in table.
func Find(key Key, table []Level) (Level, bool) {
	i := slices.IndexFunc(table, func(l Level) bool { return l.Key == key })
	if i < 0 {
		return Level{}, false
	}
	return table[i], true
}

// Next returns the first tier above days and how many days remain until it
// is unlocked. ok is false once the top tier has been reached.
func Next(days int, table []Level) (next Level, remaining int, ok bool) {
	for _, l := range table {
		if l.DaysRequired > days && (!ok || l.DaysRequired < next.DaysRequired) {
			next, ok = l, true
		}
	}
	if !ok {
		return Level{}, 0, false
	}
	return next, next.DaysRequired - max(days, 0), true
}
