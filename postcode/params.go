package postcode

import (
	"strconv"
	"strings"
)

// Filter names a Result attribute to keep in bulk responses.
type Filter string

// Filters accepted by the bulk endpoints. Every Result key except codes.
const (
	FilterPostcode                      Filter = "postcode"
	FilterQuality                       Filter = "quality"
	FilterEastings                      Filter = "eastings"
	FilterNorthings                     Filter = "northings"
	FilterCountry                       Filter = "country"
	FilterNHSHA                         Filter = "nhs_ha"
	FilterLongitude                     Filter = "longitude"
	FilterLatitude                      Filter = "latitude"
	FilterEuropeanElectoralRegion       Filter = "european_electoral_region"
	FilterPrimaryCareTrust              Filter = "primary_care_trust"
	FilterRegion                        Filter = "region"
	FilterLSOA                          Filter = "lsoa"
	FilterMSOA                          Filter = "msoa"
	FilterIncode                        Filter = "incode"
	FilterOutcode                       Filter = "outcode"
	FilterParliamentaryConstituency     Filter = "parliamentary_constituency"
	FilterParliamentaryConstituency2024 Filter = "parliamentary_constituency_2024"
	FilterAdminDistrict                 Filter = "admin_district"
	FilterParish                        Filter = "parish"
	FilterAdminCounty                   Filter = "admin_county"
	FilterDateOfIntroduction            Filter = "date_of_introduction"
	FilterAdminWard                     Filter = "admin_ward"
	FilterCED                           Filter = "ced"
	FilterCCG                           Filter = "ccg"
	FilterNUTS                          Filter = "nuts"
	FilterPFA                           Filter = "pfa"
)

// JoinFilters flattens filters into the single comma separated value the
// API expects.
func JoinFilters(filters []Filter) string {
	s := make([]string, len(filters))
	for i, f := range filters {
		s[i] = string(f)
	}
	return strings.Join(s, ",")
}

// Param is one key/value entry of a query string.
type Param struct {
	Key   string
	Value string
}

// Params is implemented by the optional parameter structs. QueryParams
// returns the set fields in declaration order; unset (nil) fields are
// omitted.
type Params interface {
	QueryParams() []Param
}

// Int returns a pointer to v, for setting optional parameters.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for setting optional parameters.
func Bool(v bool) *bool { return &v }

// NearestParams are the optional parameters of FindNearestPostcode.
type NearestParams struct {
	// Limit caps the number of postcodes returned. The API defaults to 10
	// and allows at most 100.
	Limit *int
	// Radius in metres, up to 2000. Defaults to 100.
	Radius *int
	// Widesearch extends the search to 20km and caps results at 10.
	Widesearch *bool
}

// QueryParams implements Params.
func (p *NearestParams) QueryParams() []Param {
	if p == nil {
		return nil
	}
	var out []Param
	out = appendInt(out, "limit", p.Limit)
	out = appendInt(out, "radius", p.Radius)
	out = appendBool(out, "widesearch", p.Widesearch)
	return out
}

// ReverseGeocodeParams are the optional parameters of ReverseGeocodePostcode.
type ReverseGeocodeParams struct {
	Limit      *int
	Radius     *int
	Widesearch *bool
}

// QueryParams implements Params.
func (p *ReverseGeocodeParams) QueryParams() []Param {
	if p == nil {
		return nil
	}
	var out []Param
	out = appendInt(out, "limit", p.Limit)
	out = appendInt(out, "radius", p.Radius)
	out = appendBool(out, "widesearch", p.Widesearch)
	return out
}

// BulkReverseGeocodeParams are the optional parameters of
// BulkReverseGeocodePostcode. A non-nil Filter is sent as one comma joined
// value, even when empty.
type BulkReverseGeocodeParams struct {
	Limit      *int
	Radius     *int
	Widesearch *bool
	Filter     []Filter
}

// QueryParams implements Params. The receiver is never modified.
func (p *BulkReverseGeocodeParams) QueryParams() []Param {
	if p == nil {
		return nil
	}
	var out []Param
	out = appendInt(out, "limit", p.Limit)
	out = appendInt(out, "radius", p.Radius)
	out = appendBool(out, "widesearch", p.Widesearch)
	if p.Filter != nil {
		out = append(out, Param{Key: "filter", Value: JoinFilters(p.Filter)})
	}
	return out
}

func appendInt(out []Param, key string, v *int) []Param {
	if v == nil {
		return out
	}
	return append(out, Param{Key: key, Value: strconv.Itoa(*v)})
}

func appendBool(out []Param, key string, v *bool) []Param {
	if v == nil {
		return out
	}
	return append(out, Param{Key: key, Value: strconv.FormatBool(*v)})
}
