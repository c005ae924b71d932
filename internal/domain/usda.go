package domain

// USDAFood represents a branded food item from the USDA FoodData Central API
type USDAFood struct {
	FdcID       int    `json:"fdcId"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
	GTINUPC     string `json:"gtinUpc,omitempty"`
	BrandOwner  string `json:"brandOwner,omitempty"`
	BrandName   string `json:"brandName,omitempty"`
	Ingredients string `json:"ingredients,omitempty"`
}

// USDASearchResponse represents the response from USDA search API
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
