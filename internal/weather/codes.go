package weather

// CodeInfo describes a WMO weather code.
type CodeInfo struct {
	Description string
	Icon        string
	Severity    string
}

// Severity buckets for WMO codes.
const (
	SeverityClear  = "clear"
	SeverityCloudy = "cloudy"
	SeverityRainy  = "rainy"
	SeverityStormy = "stormy"
)

// wmoCodes maps WMO weather codes to display info.
var wmoCodes = map[int]CodeInfo{
	0:  {Description: "Clear Sky", Icon: "01d", Severity: SeverityClear},
	1:  {Description: "Mainly Clear", Icon: "01d", Severity: SeverityClear},
	2:  {Description: "Partly Cloudy", Icon: "02d", Severity: SeverityCloudy},
	3:  {Description: "Overcast", Icon: "03d", Severity: SeverityCloudy},
	45: {Description: "Foggy", Icon: "50d", Severity: SeverityCloudy},
	48: {Description: "Depositing Rime Fog", Icon: "50d", Severity: SeverityCloudy},
	51: {Description: "Light Drizzle", Icon: "09d", Severity: SeverityRainy},
	53: {Description: "Moderate Drizzle", Icon: "09d", Severity: SeverityRainy},
	55: {Description: "Dense Drizzle", Icon: "09d", Severity: SeverityRainy},
	61: {Description: "Slight Rain", Icon: "10d", Severity: SeverityRainy},
	63: {Description: "Moderate Rain", Icon: "10d", Severity: SeverityRainy},
	65: {Description: "Heavy Rain", Icon: "10d", Severity: SeverityRainy},
	71: {Description: "Slight Snow", Icon: "13d", Severity: SeverityStormy},
	73: {Description: "Moderate Snow", Icon: "13d", Severity: SeverityStormy},
	75: {Description: "Heavy Snow", Icon: "13d", Severity: SeverityStormy},
	77: {Description: "Snow Grains", Icon: "13d", Severity: SeverityStormy},
	80: {Description: "Slight Rain Showers", Icon: "09d", Severity: SeverityRainy},
	81: {Description: "Moderate Rain Showers", Icon: "09d", Severity: SeverityRainy},
	82: {Description: "Violent Rain Showers", Icon: "09d", Severity: SeverityStormy},
	85: {Description: "Slight Snow Showers", Icon: "13d", Severity: SeverityStormy},
	86: {Description: "Heavy Snow Showers", Icon: "13d", Severity: SeverityStormy},
	95: {Description: "Thunderstorm", Icon: "11d", Severity: SeverityStormy},
	96: {Description: "Thunderstorm with Slight Hail", Icon: "11d", Severity: SeverityStormy},
	99: {Description: "Thunderstorm with Heavy Hail", Icon: "11d", Severity: SeverityStormy},
}

// unknownCode is returned for WMO codes outside the table. Unknown codes are
// never an error.
var unknownCode = CodeInfo{Description: "Unknown", Icon: "01d", Severity: SeverityCloudy}

// LookupCode returns display info for a WMO weather code.
func LookupCode(code int) CodeInfo {
	if info, ok := wmoCodes[code]; ok {
		return info
	}
	return unknownCode
}
