// Package grocery turns free text into categorized list items. The
// hosted classifier does the real work when reachable; a local rule
// table and, failing that, a single "Other" bucket are the successive
// fallbacks.
package grocery

import "strings"

// DefaultCategory is the bucket for anything no rule or service claims.
const DefaultCategory = "Other"

// Categories in display order.
var Categories = []string{
	"Produce", "Dairy", "Meat & Seafood", "Bakery", "Pantry",
	"Frozen", "Beverages", "Snacks", "Household", "Personal Care",
	DefaultCategory,
}

// Categorize returns the category for an item name using the local rule
// table: exact match first, then substring match with longer, more
// specific keywords taking priority.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return DefaultCategory
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return DefaultCategory
}

var exactMatch = map[string]string{
	// Produce
	"apples": "Produce", "bananas": "Produce", "oranges": "Produce",
	"lemons": "Produce", "limes": "Produce", "avocados": "Produce",
	"tomatoes": "Produce", "potatoes": "Produce", "onions": "Produce",
	"garlic": "Produce", "lettuce": "Produce", "spinach": "Produce",
	"kale": "Produce", "broccoli": "Produce", "carrots": "Produce",
	"celery": "Produce", "cucumbers": "Produce", "peppers": "Produce",
	"mushrooms": "Produce", "corn": "Produce", "grapes": "Produce",
	"strawberries": "Produce", "blueberries": "Produce",
	"watermelon": "Produce", "cilantro": "Produce", "basil": "Produce",
	"ginger": "Produce", "zucchini": "Produce", "asparagus": "Produce",
	"green beans": "Produce",

	// Dairy
	"milk": "Dairy", "eggs": "Dairy", "butter": "Dairy",
	"cheese": "Dairy", "yogurt": "Dairy", "cream cheese": "Dairy",
	"sour cream": "Dairy", "heavy cream": "Dairy",
	"half and half": "Dairy", "cottage cheese": "Dairy",

	// Meat & Seafood
	"chicken": "Meat & Seafood", "beef": "Meat & Seafood",
	"pork": "Meat & Seafood", "turkey": "Meat & Seafood",
	"bacon": "Meat & Seafood", "sausage": "Meat & Seafood",
	"ham": "Meat & Seafood", "steak": "Meat & Seafood",
	"salmon": "Meat & Seafood", "shrimp": "Meat & Seafood",
	"tuna": "Meat & Seafood", "fish": "Meat & Seafood",
	"ground beef": "Meat & Seafood", "deli meat": "Meat & Seafood",

	// Bakery
	"bread": "Bakery", "bagels": "Bakery", "tortillas": "Bakery",
	"rolls": "Bakery", "buns": "Bakery", "muffins": "Bakery",

	// Pantry
	"rice": "Pantry", "pasta": "Pantry", "flour": "Pantry",
	"sugar": "Pantry", "salt": "Pantry", "pepper": "Pantry",
	"olive oil": "Pantry", "vinegar": "Pantry", "soy sauce": "Pantry",
	"ketchup": "Pantry", "mustard": "Pantry", "mayonnaise": "Pantry",
	"honey": "Pantry", "peanut butter": "Pantry", "jam": "Pantry",
	"cereal": "Pantry", "oatmeal": "Pantry", "soup": "Pantry",
	"broth": "Pantry", "beans": "Pantry", "lentils": "Pantry",
	"spaghetti": "Pantry", "salsa": "Pantry",

	// Frozen
	"ice cream": "Frozen", "frozen pizza": "Frozen",
	"frozen veggies": "Frozen", "popsicles": "Frozen",

	// Beverages
	"water": "Beverages", "juice": "Beverages", "coffee": "Beverages",
	"tea": "Beverages", "soda": "Beverages", "beer": "Beverages",
	"wine": "Beverages", "sparkling water": "Beverages",

	// Snacks
	"chips": "Snacks", "crackers": "Snacks", "cookies": "Snacks",
	"popcorn": "Snacks", "pretzels": "Snacks", "granola bars": "Snacks",
	"trail mix": "Snacks", "candy": "Snacks", "chocolate": "Snacks",

	// Household
	"paper towels": "Household", "toilet paper": "Household",
	"trash bags": "Household", "dish soap": "Household",
	"laundry detergent": "Household", "sponges": "Household",
	"aluminum foil": "Household", "batteries": "Household",
	"napkins": "Household", "bleach": "Household",

	// Personal Care
	"shampoo": "Personal Care", "conditioner": "Personal Care",
	"soap": "Personal Care", "body wash": "Personal Care",
	"toothpaste": "Personal Care", "deodorant": "Personal Care",
	"lotion": "Personal Care", "sunscreen": "Personal Care",
	"floss": "Personal Care", "razors": "Personal Care",
	"tissues": "Personal Care",
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic
// priority.
var substringMatches = []substringEntry{
	// Meat & Seafood
	{"chicken breast", "Meat & Seafood"},
	{"chicken thigh", "Meat & Seafood"},
	{"ground beef", "Meat & Seafood"},
	{"ground turkey", "Meat & Seafood"},
	{"pork chop", "Meat & Seafood"},
	{"hot dog", "Meat & Seafood"},

	// Dairy
	{"cream cheese", "Dairy"},
	{"sour cream", "Dairy"},
	{"heavy cream", "Dairy"},
	{"greek yogurt", "Dairy"},
	{"almond milk", "Dairy"},
	{"oat milk", "Dairy"},
	{"yogurt", "Dairy"},
	{"cheese", "Dairy"},
	{"milk", "Dairy"},
	{"butter", "Dairy"},
	{"cream", "Dairy"},
	{"egg", "Dairy"},

	// Produce
	{"sweet potato", "Produce"},
	{"bell pepper", "Produce"},
	{"green onion", "Produce"},
	{"cherry tomato", "Produce"},
	{"cauliflower", "Produce"},
	{"cabbage", "Produce"},
	{"squash", "Produce"},
	{"melon", "Produce"},
	{"berries", "Produce"},
	{"berry", "Produce"},
	{"fruit", "Produce"},
	{"lettuce", "Produce"},
	{"spinach", "Produce"},
	{"apple", "Produce"},
	{"banana", "Produce"},
	{"tomato", "Produce"},
	{"potato", "Produce"},
	{"onion", "Produce"},
	{"pepper", "Produce"},
	{"carrot", "Produce"},

	// Bakery
	{"sourdough", "Bakery"},
	{"bread", "Bakery"},
	{"bagel", "Bakery"},
	{"tortilla", "Bakery"},
	{"bun", "Bakery"},
	{"roll", "Bakery"},
	{"muffin", "Bakery"},

	// Pantry
	{"peanut butter", "Pantry"},
	{"olive oil", "Pantry"},
	{"maple syrup", "Pantry"},
	{"hot sauce", "Pantry"},
	{"pasta sauce", "Pantry"},
	{"canned", "Pantry"},
	{"cereal", "Pantry"},
	{"granola", "Pantry"},
	{"rice", "Pantry"},
	{"pasta", "Pantry"},
	{"noodle", "Pantry"},
	{"flour", "Pantry"},
	{"sugar", "Pantry"},
	{"spice", "Pantry"},
	{"sauce", "Pantry"},
	{"broth", "Pantry"},
	{"soup", "Pantry"},
	{"bean", "Pantry"},

	// Frozen
	{"frozen", "Frozen"},
	{"ice cream", "Frozen"},
	{"popsicle", "Frozen"},

	// Beverages
	{"sparkling water", "Beverages"},
	{"orange juice", "Beverages"},
	{"coffee", "Beverages"},
	{"juice", "Beverages"},
	{"soda", "Beverages"},
	{"water", "Beverages"},
	{"beer", "Beverages"},
	{"wine", "Beverages"},
	{"drink", "Beverages"},

	// Snacks
	{"granola bar", "Snacks"},
	{"trail mix", "Snacks"},
	{"chip", "Snacks"},
	{"cracker", "Snacks"},
	{"cookie", "Snacks"},
	{"popcorn", "Snacks"},
	{"pretzel", "Snacks"},
	{"candy", "Snacks"},
	{"chocolate", "Snacks"},
	{"snack", "Snacks"},

	// Household
	{"paper towel", "Household"},
	{"toilet paper", "Household"},
	{"trash bag", "Household"},
	{"garbage bag", "Household"},
	{"dish soap", "Household"},
	{"laundry", "Household"},
	{"detergent", "Household"},
	{"cleaner", "Household"},
	{"cleaning", "Household"},
	{"sponge", "Household"},
	{"foil", "Household"},
	{"battery", "Household"},

	// Personal Care
	{"body wash", "Personal Care"},
	{"shampoo", "Personal Care"},
	{"conditioner", "Personal Care"},
	{"toothpaste", "Personal Care"},
	{"toothbrush", "Personal Care"},
	{"deodorant", "Personal Care"},
	{"lotion", "Personal Care"},
	{"sunscreen", "Personal Care"},
	{"razor", "Personal Care"},
	{"tissue", "Personal Care"},
}
