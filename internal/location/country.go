package location

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var regionNames = display.English.Regions()

// CountryName maps an ISO 3166-1 code to its English display name using
// the CLDR region table. Codes the table cannot name come back upper-cased
// and otherwise untouched.
func CountryName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	region, err := language.ParseRegion(code)
	if err != nil {
		return strings.ToUpper(code)
	}

	name := regionNames.Name(region)
	if name == "" || name == "Unknown Region" {
		return strings.ToUpper(code)
	}
	return name
}
