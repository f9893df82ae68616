package crm

import "strings"

// alpha3to2 converts ISO 3166-1 alpha-3 nationality codes to the alpha-2
// codes the CRM expects. Fixed table; unknown codes fall back to the
// configured default rather than failing registration.
var alpha3to2 = map[string]string{
	"ARE": "AE", "SAU": "SA", "OMN": "OM", "QAT": "QA", "KWT": "KW",
	"BHR": "BH", "EGY": "EG", "JOR": "JO", "LBN": "LB", "SYR": "SY",
	"IRQ": "IQ", "YEM": "YE", "PSE": "PS", "MAR": "MA", "DZA": "DZ",
	"TUN": "TN", "LBY": "LY", "SDN": "SD", "IND": "IN", "PAK": "PK",
	"BGD": "BD", "LKA": "LK", "NPL": "NP", "PHL": "PH", "IDN": "ID",
	"MYS": "MY", "CHN": "CN", "JPN": "JP", "KOR": "KR", "THA": "TH",
	"VNM": "VN", "USA": "US", "GBR": "GB", "FRA": "FR", "DEU": "DE",
	"ITA": "IT", "ESP": "ES", "PRT": "PT", "NLD": "NL", "BEL": "BE",
	"CHE": "CH", "AUT": "AT", "SWE": "SE", "NOR": "NO", "DNK": "DK",
	"FIN": "FI", "IRL": "IE", "POL": "PL", "ROU": "RO", "GRC": "GR",
	"TUR": "TR", "RUS": "RU", "UKR": "UA", "CAN": "CA", "MEX": "MX",
	"BRA": "BR", "ARG": "AR", "AUS": "AU", "NZL": "NZ", "ZAF": "ZA",
	"NGA": "NG", "KEN": "KE", "ETH": "ET", "SOM": "SO", "IRN": "IR",
	"AFG": "AF", "GEO": "GE", "ARM": "AM", "AZE": "AZ", "KAZ": "KZ",
	"UZB": "UZ",
}

// NationalityAlpha2 resolves a nationality value to alpha-2. Accepts alpha-2
// passthrough and alpha-3 via the table; anything else (or empty) returns
// fallback.
func NationalityAlpha2(nationality, fallback string) string {
	n := strings.ToUpper(strings.TrimSpace(nationality))
	switch len(n) {
	case 2:
		return n
	case 3:
		if two, ok := alpha3to2[n]; ok {
			return two
		}
	}
	return fallback
}
