package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownCategory = errors.New("unknown category")
)

// Category is one of the three page families the extractor understands.
// Its value doubles as the JSON key stem ("foodAndDrink_name", ...) and the table name.
type Category string

const (
	FoodAndDrink  Category = "foodAndDrink"
	Accommodation Category = "accommodation"
	Activity      Category = "activity"
)

var categories = []Category{FoodAndDrink, Accommodation, Activity}

func AllCategories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts the key stem or the short directory alias (eat, stay, do).
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foodanddrink", "eat", "restaurant", "restaurants":
		return FoodAndDrink, nil
	case "accommodation", "stay", "hotel", "hotels":
		return Accommodation, nil
	case "activity", "do", "attraction", "attractions":
		return Activity, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

func (c Category) Prefix() string {
	switch c {
	case FoodAndDrink:
		return "F"
	case Accommodation:
		return "H"
	case Activity:
		return "A"
	}
	return ""
}

// Dir is the on-disk directory name used by the batch stages.
func (c Category) Dir() string {
	switch c {
	case FoodAndDrink:
		return "eat"
	case Accommodation:
		return "stay"
	case Activity:
		return "do"
	}
	return string(c)
}

func (c Category) IDKey() string   { return string(c) + "_id" }
func (c Category) NameKey() string { return string(c) + "_name" }
func (c Category) Table() string   { return string(c) }

func (c Category) EmbeddedCollection() string { return string(c) + "_Embedded" }
func (c Category) BridgeCollection() string   { return string(c) + "_Bridge" }
