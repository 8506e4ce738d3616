package model

// Default commodity term tables. Declaration order is the match order.

var DefaultForbiddenTerms = []string{
	// Alcohol
	"alcohol", "beer", "wine", "liquor", "spirits", "vodka", "whiskey",
	"whisky", "rum", "gin", "tequila", "brandy", "bourbon", "scotch",
	"champagne", "malt beverage", "hard seltzer", "cider", "sake",
	"moonshine", "absinthe", "vermouth", "schnapps",

	// Pork
	"pork", "bacon", "ham", "swine", "pig", "sausage", "pepperoni",
	"prosciutto", "salami", "chorizo", "lard", "pork rinds",
	"carnitas", "pancetta",

	// Tobacco and cannabis
	"tobacco", "cigarette", "cigar", "vape", "e-cigarette", "nicotine",
	"cannabis", "marijuana", "weed", "thc", "cbd", "hemp flower",
	"delta-8", "delta-9", "edibles",

	// Gambling
	"gambling", "casino", "slot machine", "lottery", "betting",
	"poker machine", "gaming machine",

	// Adult content
	"adult entertainment", "xxx", "pornography", "erotic",
	"adult novelty", "sex toy",

	// Civilian weapons
	"ammunition", "ammo", "firearms", "guns", "rifles", "pistols",
	"handguns", "shotguns", "assault rifle",
}

var DefaultReviewTerms = []string{
	"meat", "hot dog", "deli", "processed meat",
	"gelatin", "enzyme", "animal product", "rennet",
	"marshmallow", "gummy", "candy",
}

var DefaultAllowedTerms = []string{
	"produce", "vegetables", "fruits", "grains", "rice", "wheat",
	"flour", "sugar", "salt", "spices", "coffee", "tea",
	"electronics", "furniture", "appliances", "machinery", "equipment",
	"paper", "plastic", "steel", "lumber", "building materials",
	"automotive parts", "tires", "medical supplies", "pharmaceuticals",
	"clothing", "textiles", "toys", "books", "office supplies",
	"cleaning supplies", "bottled water", "soft drinks", "juice",
}
