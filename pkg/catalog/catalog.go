// Package catalog holds the fixed ingredient reference data. The set is
// defined at deployment time; there is no mutation and no lifecycle.
package catalog

import (
	"sort"

	"cubenote/pkg/domain"
)

var ingredients = map[string]domain.Ingredient{
	// Grains
	"rice":           {ID: "rice", Name: "Rice", NameKo: "쌀", Category: domain.CategoryGrain},
	"oatmeal":        {ID: "oatmeal", Name: "Oatmeal", NameKo: "오트밀", Category: domain.CategoryGrain},
	"glutinous_rice": {ID: "glutinous_rice", Name: "Glutinous Rice", NameKo: "찹쌀", Category: domain.CategoryGrain},
	"barley":         {ID: "barley", Name: "Barley", NameKo: "보리", Category: domain.CategoryGrain},
	"millet":         {ID: "millet", Name: "Millet", NameKo: "조", Category: domain.CategoryGrain},

	// Vegetables
	"carrot":       {ID: "carrot", Name: "Carrot", NameKo: "당근", Category: domain.CategoryVeggie},
	"broccoli":     {ID: "broccoli", Name: "Broccoli", NameKo: "브로콜리", Category: domain.CategoryVeggie},
	"spinach":      {ID: "spinach", Name: "Spinach", NameKo: "시금치", Category: domain.CategoryVeggie},
	"pumpkin":      {ID: "pumpkin", Name: "Pumpkin", NameKo: "단호박", Category: domain.CategoryVeggie},
	"potato":       {ID: "potato", Name: "Potato", NameKo: "감자", Category: domain.CategoryVeggie},
	"sweet_potato": {ID: "sweet_potato", Name: "Sweet Potato", NameKo: "고구마", Category: domain.CategoryVeggie},
	"cabbage":      {ID: "cabbage", Name: "Cabbage", NameKo: "양배추", Category: domain.CategoryVeggie},
	"bok_choy":     {ID: "bok_choy", Name: "Bok Choy", NameKo: "청경채", Category: domain.CategoryVeggie},
	"zucchini":     {ID: "zucchini", Name: "Zucchini", NameKo: "애호박", Category: domain.CategoryVeggie},
	"cucumber":     {ID: "cucumber", Name: "Cucumber", NameKo: "오이", Category: domain.CategoryVeggie},
	"radish":       {ID: "radish", Name: "Radish", NameKo: "무", Category: domain.CategoryVeggie},
	"onion":        {ID: "onion", Name: "Onion", NameKo: "양파", Category: domain.CategoryVeggie},
	"corn":         {ID: "corn", Name: "Corn", NameKo: "옥수수", Category: domain.CategoryVeggie},
	"mushroom":     {ID: "mushroom", Name: "Mushroom", NameKo: "버섯", Category: domain.CategoryVeggie},
	"paprika":      {ID: "paprika", Name: "Paprika", NameKo: "파프리카", Category: domain.CategoryVeggie},

	// Meat / protein
	"beef":       {ID: "beef", Name: "Beef", NameKo: "소고기", Category: domain.CategoryMeat},
	"chicken":    {ID: "chicken", Name: "Chicken", NameKo: "닭고기", Category: domain.CategoryMeat},
	"pork":       {ID: "pork", Name: "Pork", NameKo: "돼지고기", Category: domain.CategoryMeat},
	"tofu":       {ID: "tofu", Name: "Tofu", NameKo: "두부", Category: domain.CategoryMeat},
	"egg":        {ID: "egg", Name: "Egg", NameKo: "계란", Category: domain.CategoryMeat},
	"white_fish": {ID: "white_fish", Name: "White Fish", NameKo: "흰살생선", Category: domain.CategoryMeat},
	"shrimp":     {ID: "shrimp", Name: "Shrimp", NameKo: "새우", Category: domain.CategoryMeat},
	"beans":      {ID: "beans", Name: "Beans", NameKo: "콩", Category: domain.CategoryMeat},

	// Fruits
	"apple":      {ID: "apple", Name: "Apple", NameKo: "사과", Category: domain.CategoryFruit},
	"banana":     {ID: "banana", Name: "Banana", NameKo: "바나나", Category: domain.CategoryFruit},
	"pear":       {ID: "pear", Name: "Pear", NameKo: "배", Category: domain.CategoryFruit},
	"watermelon": {ID: "watermelon", Name: "Watermelon", NameKo: "수박", Category: domain.CategoryFruit},
	"melon":      {ID: "melon", Name: "Melon", NameKo: "멜론", Category: domain.CategoryFruit},
	"strawberry": {ID: "strawberry", Name: "Strawberry", NameKo: "딸기", Category: domain.CategoryFruit},
	"grape":      {ID: "grape", Name: "Grape", NameKo: "포도", Category: domain.CategoryFruit},
	"orange":     {ID: "orange", Name: "Orange", NameKo: "오렌지", Category: domain.CategoryFruit},

	// Dairy / others
	"cheese":  {ID: "cheese", Name: "Cheese", NameKo: "치즈", Category: domain.CategoryDairy},
	"yogurt":  {ID: "yogurt", Name: "Yogurt", NameKo: "요거트", Category: domain.CategoryDairy},
	"seaweed": {ID: "seaweed", Name: "Seaweed", NameKo: "김", Category: domain.CategoryDairy},
	"sesame":  {ID: "sesame", Name: "Sesame", NameKo: "참깨", Category: domain.CategoryDairy},
}

// Lookup returns the descriptor for the given ingredient id. An unknown id is
// a normal absent result, not a fault; callers display a placeholder instead.
func Lookup(id string) (domain.Ingredient, bool) {
	ing, ok := ingredients[id]
	return ing, ok
}

// IDs returns all catalog ingredient ids in sorted order.
func IDs() []string {
	out := make([]string, 0, len(ingredients))
	for id := range ingredients {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns all descriptors in the given category, sorted by id.
func ByCategory(cat domain.IngredientCategory) []domain.Ingredient {
	var out []domain.Ingredient
	for _, ing := range ingredients {
		if ing.Category == cat {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the catalog size.
func Len() int { return len(ingredients) }
