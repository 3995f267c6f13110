package seed

import (
	"fmt"
	"os"

	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MenuFile is the YAML layout of a menu seed file:
//
//	categories:
//	  - name: Starters
//	    display_order: 1
//	    items:
//	      - name: Paneer Tikka
//	        price: "180"
//	        food_type: veg
//	        add_ons:
//	          - {name: Extra Mint Chutney, price: "15"}
type MenuFile struct {
	Categories []CategorySeed `yaml:"categories"`
}

// CategorySeed is one menu category and its items.
type CategorySeed struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description"`
	DisplayOrder int        `yaml:"display_order"`
	Items        []ItemSeed `yaml:"items"`
}

// ItemSeed is one dish; prices are decimal strings.
type ItemSeed struct {
	Name          string      `yaml:"name"`
	Description   string      `yaml:"description"`
	Price         string      `yaml:"price"`
	ImageURL      string      `yaml:"image_url"`
	FoodType      string      `yaml:"food_type"`
	GSTRate       string      `yaml:"gst_rate"` // empty uses default_gst_rate
	IsTaxIncluded bool        `yaml:"is_tax_included"`
	Unavailable   bool        `yaml:"unavailable"`
	AddOns        []AddOnSeed `yaml:"add_ons"`
}

// AddOnSeed is an optional extra on an item.
type AddOnSeed struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

// LoadMenuFile reads and parses a menu seed file.
func LoadMenuFile(path string) (*MenuFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseMenu(b)
}

// ParseMenu parses menu seed YAML.
func ParseMenu(data []byte) (*MenuFile, error) {
	var f MenuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse menu yaml: %w", err)
	}
	return &f, nil
}

// ToEntities converts the file into entities ready to insert. Each category
// carries its items in MenuItems.
func (f *MenuFile) ToEntities(defaultGST decimal.Decimal) ([]entity.Category, error) {
	categories := make([]entity.Category, 0, len(f.Categories))
	for ci, cs := range f.Categories {
		if cs.Name == "" {
			return nil, fmt.Errorf("categories[%d]: name is required", ci)
		}
		category := entity.Category{
			Name:         cs.Name,
			DisplayOrder: cs.DisplayOrder,
			IsActive:     true,
		}
		if cs.Description != "" {
			desc := cs.Description
			category.Description = &desc
		}

		for ii, is := range cs.Items {
			item, err := is.toEntity(defaultGST)
			if err != nil {
				return nil, fmt.Errorf("categories[%d].items[%d]: %w", ci, ii, err)
			}
			category.MenuItems = append(category.MenuItems, *item)
		}
		categories = append(categories, category)
	}
	return categories, nil
}

func (s ItemSeed) toEntity(defaultGST decimal.Decimal) (*entity.MenuItem, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	price, err := parseAmount(s.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	gst := defaultGST
	if s.GSTRate != "" {
		if gst, err = decimal.NewFromString(s.GSTRate); err != nil {
			return nil, fmt.Errorf("gst_rate: %w", err)
		}
		if gst.IsNegative() || gst.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("gst_rate must be between 0 and 100")
		}
	}

	foodType := enum.FoodType(s.FoodType)
	if foodType == "" {
		foodType = enum.FoodTypeVeg
	}
	if !foodType.Valid() {
		return nil, fmt.Errorf("food_type %q is not veg or non-veg", s.FoodType)
	}

	item := &entity.MenuItem{
		Name:          s.Name,
		Price:         price,
		FoodType:      foodType,
		IsAvailable:   !s.Unavailable,
		GSTRate:       gst,
		IsTaxIncluded: s.IsTaxIncluded,
	}
	if s.Description != "" {
		desc := s.Description
		item.Description = &desc
	}
	if s.ImageURL != "" {
		url := s.ImageURL
		item.ImageURL = &url
	}

	for ai, as := range s.AddOns {
		addOnPrice, err := parseAmount(as.Price)
		if err != nil {
			return nil, fmt.Errorf("add_ons[%d].price: %w", ai, err)
		}
		item.AddOns = append(item.AddOns, entity.AddOn{Name: as.Name, Price: addOnPrice})
	}
	return item, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return d, nil
}
