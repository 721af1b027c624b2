package prestashop

// LocalizedField is one language's value for a multilingual field. The
// transformer replicates a single local value once per shop language.
type LocalizedField struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type IDRef struct {
	ID int `json:"id"`
}

// ProductPayload is the wire shape for product create/update calls.
type ProductPayload struct {
	Reference         string           `json:"reference"`
	EAN13             string           `json:"ean13,omitempty"`
	Active            bool             `json:"active"`
	Names             []LocalizedField `json:"name"`
	Descriptions      []LocalizedField `json:"description"`
	Manufacturer      string           `json:"manufacturer_name,omitempty"`
	Price             float64          `json:"price"`
	Weight            float64          `json:"weight,omitempty"`
	Width             float64          `json:"width,omitempty"`
	Height            float64          `json:"height,omitempty"`
	Depth             float64          `json:"depth,omitempty"`
	Quantity          int              `json:"quantity"`
	DefaultCategoryID int              `json:"id_category_default"`
	Associations      Associations     `json:"associations"`
}

type Associations struct {
	Categories []IDRef `json:"categories"`
}

type CategoryPayload struct {
	Names        []LocalizedField `json:"name"`
	Descriptions []LocalizedField `json:"description,omitempty"`
	ParentID     int              `json:"id_parent"`
	Active       bool             `json:"active"`
	Position     int              `json:"position"`
}

type SpecificPricePayload struct {
	PriceGroup string  `json:"price_group"`
	Net        float64 `json:"price"`
	Gross      float64 `json:"price_with_tax"`
}

type FeaturePayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type CompatibilityPayload struct {
	Make       string `json:"make"`
	Model      string `json:"model"`
	YearFrom   int    `json:"year_from"`
	YearTo     int    `json:"year_to"`
	EngineCode string `json:"engine_code,omitempty"`
}

type CombinationPayload struct {
	Reference   string            `json:"reference"`
	Attributes  map[string]string `json:"attributes"`
	PriceImpact float64           `json:"price_impact"`
	Quantity    int               `json:"quantity"`
}

// ProductResponse wraps a product returned by a write or read call.
type ProductResponse struct {
	Product struct {
		ID        int    `json:"id"`
		Reference string `json:"reference"`
	} `json:"product"`
}

// RemoteID returns the remote identifier, or 0 when the response carried
// none.
func (r *ProductResponse) RemoteID() int {
	return r.Product.ID
}

type CategoryResponse struct {
	Category struct {
		ID       int `json:"id"`
		ParentID int `json:"id_parent"`
	} `json:"category"`
}

func (r *CategoryResponse) RemoteID() int {
	return r.Category.ID
}

type ImageResponse struct {
	Image struct {
		ID int `json:"id"`
	} `json:"image"`
}

func (r *ImageResponse) RemoteID() int {
	return r.Image.ID
}

type CombinationResponse struct {
	Combination struct {
		ID int `json:"id"`
	} `json:"combination"`
}

func (r *CombinationResponse) RemoteID() int {
	return r.Combination.ID
}
