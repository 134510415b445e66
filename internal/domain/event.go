package domain

import "fmt"

// BaseTag is attached to every dataset and showcase.
const BaseTag = "geodata"

// EventTypes maps a two-letter disaster type key to its HDX tag. Keys mapped
// to "" are known types that carry no category tag.
var EventTypes = map[string]string{
	"AC": "accidents - technical disasters",
	"CW": "cold waves",
	"CE": "complex emergency",
	"DR": "droughts",
	"EQ": "earthquakes",
	"EP": "epidemics and outbreaks",
	"EC": "cyclones - hurricanes - typhoons",
	"FR": "urban fires",
	"FL": "floods - storm surges",
	"FF": "flash floods",
	"HT": "heat waves",
	"IN": "insect infestations",
	"LS": "landslides - mudslides",
	"MS": "landslides - mudslides",
	"OT": "",
	"AV": "avalanches",
	"SS": "floods - storm surges",
	"ST": "wind storms - tornados - severe local storms",
	"TO": "wind storms - tornados - severe local storms",
	"TC": "cyclones - hurricanes - typhoons",
	"TS": "tsunamis",
	"VW": "wind storms - tornados - severe local storms",
	"VO": "volcanos",
	"WF": "wild fires",
}

// EventCategory returns the category for a type key. The category is empty
// for known types without one.
func EventCategory(typeKey string) (string, error) {
	category, ok := EventTypes[typeKey]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, typeKey)
	}
	return category, nil
}

// Tags returns the tag set for a type key: the base tag plus the category
// when there is one.
func Tags(typeKey string) ([]string, error) {
	category, err := EventCategory(typeKey)
	if err != nil {
		return nil, err
	}
	tags := []string{BaseTag}
	if category != "" {
		tags = append(tags, category)
	}
	return tags, nil
}
