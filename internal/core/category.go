package core

import "strings"

// Category is one of the fixed expense categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEducation     Category = "education"
	CategoryRent          Category = "rent"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryMedical       Category = "medical"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEducation,
	CategoryRent,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryMedical,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalises free text to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// keywordRules is scanned in order; the first rule with a matching keyword wins.
var keywordRules = []struct {
	category Category
	keywords []string
}{
	{CategoryRent, []string{"rent", "landlord", "lease", "hostel", "pg "}},
	{CategoryUtilities, []string{"electricity", "water bill", "gas bill", "internet", "wifi", "broadband", "recharge", "phone bill"}},
	{CategoryMedical, []string{"doctor", "hospital", "pharmacy", "medicine", "clinic", "dentist"}},
	{CategoryEducation, []string{"tuition", "course", "book", "school", "college", "exam", "udemy"}},
	{CategoryTransport, []string{"uber", "ola", "taxi", "bus", "metro", "train", "fuel", "petrol", "parking", "flight"}},
	{CategoryFood, []string{"restaurant", "lunch", "dinner", "breakfast", "coffee", "pizza", "grocer", "swiggy", "zomato", "snack"}},
	{CategoryEntertainment, []string{"movie", "cinema", "netflix", "spotify", "concert", "game"}},
	{CategoryShopping, []string{"amazon", "flipkart", "clothes", "shoes", "mall", "shopping"}},
}

// GuessCategory picks a category from keywords in the description, defaulting to other.
func GuessCategory(description string) Category {
	d := " " + strings.ToLower(description) + " "
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(d, kw) {
				return rule.category
			}
		}
	}
	return CategoryOther
}
