package domain

import (
	"fmt"
	"strings"
)

// Category is an affected road-user group used for street rankings
type Category int

const (
	Pedestrians Category = iota
	Cyclists
	Motorists
	AllRoadUsers
)

var categoryLabels = map[Category]string{
	Pedestrians:  "Pedestrians",
	Cyclists:     "Cyclists",
	Motorists:    "Motorists",
	AllRoadUsers: "All road users",
}

var categoryFields = map[Category]string{
	Pedestrians:  "injured_pedestrians",
	Cyclists:     "injured_cyclists",
	Motorists:    "injured_motorists",
	AllRoadUsers: "injured_persons",
}

// Categories lists every category in display order.
var Categories = []Category{Pedestrians, Cyclists, Motorists, AllRoadUsers}

func (c Category) String() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return "unknown"
}

// Field returns the canonical column holding the category's injury count.
func (c Category) Field() string {
	return categoryFields[c]
}

// Count returns the record's injury count for the category, nil when absent.
func (c Category) Count(r *Record) *int {
	switch c {
	case Pedestrians:
		return r.InjuredPedestrians
	case Cyclists:
		return r.InjuredCyclists
	case Motorists:
		return r.InjuredMotorists
	case AllRoadUsers:
		return r.InjuredPersons
	}
	return nil
}

// MarshalText encodes the display label
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything ParseCategory does
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts display labels and their short forms, ignoring case.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "pedestrians", "pedestrian":
		return Pedestrians, nil
	case "cyclists", "cyclist":
		return Cyclists, nil
	case "motorists", "motorist":
		return Motorists, nil
	case "all road users", "all", "everyone", "persons":
		return AllRoadUsers, nil
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, s)
}
