package enum

import (
	"encoding/json"
	"fmt"
)

// FoodType marks a menu item as vegetarian or not
type FoodType string

const (
	FoodTypeVeg    FoodType = "veg"
	FoodTypeNonVeg FoodType = "non-veg"
)

func (f FoodType) Valid() bool {
	return f == FoodTypeVeg || f == FoodTypeNonVeg
}

func (f *FoodType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*f = FoodTypeVeg
		return nil
	}
	if !FoodType(str).Valid() {
		return fmt.Errorf("unknown food type %q", str)
	}
	*f = FoodType(str)
	return nil
}
