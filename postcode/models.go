package postcode

// Result holds the postcodes.io record for a single postcode.
// Numeric fields are pointers because the API returns null for postcodes
// without a grid reference.
type Result struct {
	Postcode                      string   `json:"postcode"`
	Quality                       int      `json:"quality"`
	Eastings                      *int     `json:"eastings"`
	Northings                     *int     `json:"northings"`
	Country                       string   `json:"country"`
	NHSHA                         string   `json:"nhs_ha"`
	Longitude                     *float64 `json:"longitude"`
	Latitude                      *float64 `json:"latitude"`
	EuropeanElectoralRegion       string   `json:"european_electoral_region"`
	PrimaryCareTrust              string   `json:"primary_care_trust"`
	Region                        string   `json:"region"`
	LSOA                          string   `json:"lsoa"`
	MSOA                          string   `json:"msoa"`
	Incode                        string   `json:"incode"`
	Outcode                       string   `json:"outcode"`
	ParliamentaryConstituency     string   `json:"parliamentary_constituency"`
	ParliamentaryConstituency2024 string   `json:"parliamentary_constituency_2024"`
	AdminDistrict                 string   `json:"admin_district"`
	Parish                        string   `json:"parish"`
	AdminCounty                   string   `json:"admin_county"`
	DateOfIntroduction            string   `json:"date_of_introduction"`
	AdminWard                     string   `json:"admin_ward"`
	CED                           string   `json:"ced"`
	CCG                           string   `json:"ccg"`
	NUTS                          string   `json:"nuts"`
	PFA                           string   `json:"pfa"`
	Codes                         *Codes   `json:"codes,omitempty"`
}

// Codes holds the ONS/GSS codes for the areas a postcode falls in.
type Codes struct {
	AdminDistrict                 string `json:"admin_district"`
	AdminCounty                   string `json:"admin_county"`
	AdminWard                     string `json:"admin_ward"`
	Parish                        string `json:"parish"`
	ParliamentaryConstituency     string `json:"parliamentary_constituency"`
	ParliamentaryConstituency2024 string `json:"parliamentary_constituency_2024"`
	CCG                           string `json:"ccg"`
	CCGID                         string `json:"ccg_id"`
	CED                           string `json:"ced"`
	NUTS                          string `json:"nuts"`
	LSOA                          string `json:"lsoa"`
	MSOA                          string `json:"msoa"`
	LAU2                          string `json:"lau2"`
	PFA                           string `json:"pfa"`
}

// Distance is a Result annotated with its distance in metres from the
// queried postcode or coordinate.
type Distance struct {
	Result
	Distance float64 `json:"distance"`
}

// PostcodeResponse is returned by LookupPostcode and GetRandomPostcodes.
type PostcodeResponse struct {
	Status int     `json:"status"`
	Result *Result `json:"result"`
}

// QueryResponse is returned by QueryPostcode. Result is empty when nothing
// matches.
type QueryResponse struct {
	Status int      `json:"status"`
	Result []Result `json:"result"`
}

// BulkLookupRequest is the POST body of BulkLookup.
type BulkLookupRequest struct {
	Postcodes []string `json:"postcodes"`
}

// BulkLookupResult pairs a queried postcode with its record. Result is nil
// when the postcode was not found.
type BulkLookupResult struct {
	Query  string  `json:"query"`
	Result *Result `json:"result"`
}

// BulkLookupResponse is returned by BulkLookup.
type BulkLookupResponse struct {
	Status int                `json:"status"`
	Result []BulkLookupResult `json:"result"`
}

// AutoCompleteResponse is returned by AutoComplete.
type AutoCompleteResponse struct {
	Status int      `json:"status"`
	Result []string `json:"result"`
}

// NearestResponse is returned by FindNearestPostcode.
type NearestResponse struct {
	Status int        `json:"status"`
	Result []Distance `json:"result"`
}

// ReverseGeocodeResponse is returned by ReverseGeocodePostcode.
type ReverseGeocodeResponse struct {
	Status int        `json:"status"`
	Result []Distance `json:"result"`
}

// Geolocation is one coordinate query of a bulk reverse geocode.
type Geolocation struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Radius    int     `json:"radius,omitempty"`
	Limit     int     `json:"limit,omitempty"`
}

// BulkReverseGeocodeRequest is the POST body of BulkReverseGeocodePostcode.
type BulkReverseGeocodeRequest struct {
	Geolocations []Geolocation `json:"geolocations"`
}

// BulkReverseGeocodeResult pairs a coordinate query with its matches.
type BulkReverseGeocodeResult struct {
	Query  Geolocation `json:"query"`
	Result []Distance  `json:"result"`
}

// BulkReverseGeocodeResponse is returned by BulkReverseGeocodePostcode.
type BulkReverseGeocodeResponse struct {
	Status int                        `json:"status"`
	Result []BulkReverseGeocodeResult `json:"result"`
}

// ValidateResponse is returned by ValidatePostcode.
type ValidateResponse struct {
	Status int  `json:"status"`
	Result bool `json:"result"`
}
