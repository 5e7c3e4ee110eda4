package domain

import "strconv"

// SlotsPerGroup is the number of nearby places kept per group.
const SlotsPerGroup = 3

// Nearby holds the nearby-place slots; a nil entry is an unfilled slot.
type Nearby struct {
	Accommodation [SlotsPerGroup]*string
	FoodAndDrink  [SlotsPerGroup]*string
	Activity      [SlotsPerGroup]*string
}

// Record is the flat extraction result for one input document.
type Record struct {
	Category     Category
	ID           string
	Name         *string
	AboutAndTags []string
	Latitude     *float64
	Longitude    *float64
	StartTime    *string
	EndTime      *string
	Duration     *int
	Reviews      []string
	Nearby       Nearby

	// HasDuration and TrackHotels control which optional keys are emitted.
	HasDuration bool
	TrackHotels bool
}

// Fields returns the record as an ordered row, keys in output order.
func (r Record) Fields() Row {
	row := Row{
		{Key: r.Category.IDKey(), Value: r.ID},
		{Key: r.Category.NameKey(), Value: strOrNil(r.Name)},
		{Key: "about_and_tags", Value: listOrNil(r.AboutAndTags)},
		{Key: "latitude", Value: floatOrNil(r.Latitude)},
		{Key: "longitude", Value: floatOrNil(r.Longitude)},
		{Key: "start_time", Value: strOrNil(r.StartTime)},
		{Key: "end_time", Value: strOrNil(r.EndTime)},
	}
	if r.HasDuration {
		var d any
		if r.Duration != nil {
			d = int64(*r.Duration)
		}
		row = append(row, Field{Key: "duration", Value: d})
	}
	row = append(row, Field{Key: "reviews", Value: listOrNil(r.Reviews)})
	if r.TrackHotels {
		row = appendSlots(row, Accommodation, r.Nearby.Accommodation)
	}
	row = appendSlots(row, FoodAndDrink, r.Nearby.FoodAndDrink)
	row = appendSlots(row, Activity, r.Nearby.Activity)
	return row
}

func (r Record) MarshalJSON() ([]byte, error) { return r.Fields().MarshalJSON() }

// NearbyKey returns the slot key, e.g. nearby_foodAndDrink2 for (FoodAndDrink, 1).
func NearbyKey(c Category, i int) string {
	return "nearby_" + string(c) + strconv.Itoa(i+1)
}

func appendSlots(row Row, c Category, slots [SlotsPerGroup]*string) Row {
	for i, s := range slots {
		row = append(row, Field{Key: NearbyKey(c, i), Value: strOrNil(s)})
	}
	return row
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func listOrNil(l []string) any {
	if l == nil {
		return nil
	}
	return l
}
