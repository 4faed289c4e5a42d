package validate

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// awsCommercialRegions is the canonical set of AWS public (non-Gov, non-China)
// region codes the pricing location table covers.
var awsCommercialRegions = map[string]struct{}{
	"us-east-1": {}, "us-east-2": {}, "us-west-1": {}, "us-west-2": {},
	"ca-central-1": {},
	"eu-west-1":    {}, "eu-west-2": {}, "eu-west-3": {}, "eu-north-1": {},
	"eu-south-1": {}, "eu-central-1": {}, "eu-central-2": {}, "eu-south-2": {},
	"ap-south-1": {}, "ap-south-2": {},
	"ap-southeast-1": {}, "ap-southeast-2": {}, "ap-southeast-3": {}, "ap-southeast-4": {},
	"ap-northeast-1": {}, "ap-northeast-2": {}, "ap-northeast-3": {},
	"ap-east-1":      {},
	"sa-east-1":      {},
	"af-south-1":     {},
	"me-south-1":     {}, "me-central-1": {},
}

// awsGovRegions are the AWS GovCloud region codes.
var awsGovRegions = map[string]struct{}{
	"us-gov-west-1": {},
	"us-gov-east-1": {},
}

// awsRegionAliases maps human-ish spellings (GovCloud in particular arrives
// in many shapes from procurement spreadsheets) to canonical codes.
var awsRegionAliases = map[string]string{
	"aws govcloud us-west": "us-gov-west-1",
	"aws-gov-west":         "us-gov-west-1",
	"govcloud-us-west":     "us-gov-west-1",
	"gov-west-1":           "us-gov-west-1",
	"aws govcloud us-east": "us-gov-east-1",
	"aws-gov-east":         "us-gov-east-1",
	"govcloud-us-east":     "us-gov-east-1",
	"gov-east-1":           "us-gov-east-1",
}

// azureRegions is the canonical set of Azure region slugs the VM catalog
// adapter supports.
var azureRegions = map[string]struct{}{
	"eastus": {}, "eastus2": {}, "westus": {}, "westus2": {}, "westus3": {},
	"centralus": {}, "northcentralus": {}, "southcentralus": {}, "westcentralus": {},
	"northeurope": {}, "westeurope": {},
	"eastasia": {}, "southeastasia": {},
	"japaneast": {}, "japanwest": {},
	"australiaeast": {}, "australiasoutheast": {}, "australiacentral": {},
	"brazilsouth": {},
	"southindia":  {}, "centralindia": {}, "westindia": {}, "jioindiawest": {},
	"canadacentral": {}, "canadaeast": {},
	"uksouth": {}, "ukwest": {},
	"koreacentral": {}, "koreasouth": {},
	"francecentral": {},
	"southafricanorth": {},
	"uaenorth":         {},
	"switzerlandnorth": {},
	"germanywestcentral": {},
	"norwayeast":    {},
	"swedencentral": {},
	"qatarcentral":  {},
	"polandcentral": {},
	"italynorth":    {},
	"israelcentral": {},
	"spaincentral":  {},
	"mexicocentral": {},
	"malaysiawest":  {},
	"newzealandnorth": {},
	"indonesiacentral": {},
	"austriaeast":  {},
	"chilecentral": {},
}

// isAWSRegion reports canonical membership across commercial and GovCloud.
func isAWSRegion(r string) bool {
	if _, ok := awsCommercialRegions[r]; ok {
		return true
	}
	_, ok := awsGovRegions[r]
	return ok
}

func isAzureRegion(r string) bool {
	_, ok := azureRegions[r]
	return ok
}

// NormalizeAWSRegion maps human-ish AWS region inputs to canonical codes.
// Already-canonical input passes through; known aliases are translated; as a
// last resort the "govcloud-us" prefix convention is rewritten to "us-gov".
// The result is not guaranteed to be a valid region.
func NormalizeAWSRegion(r string) string {
	k := strings.ToLower(strings.TrimSpace(r))
	if isAWSRegion(k) {
		return k
	}
	if canon, ok := awsRegionAliases[k]; ok {
		return canon
	}
	return strings.ReplaceAll(k, "govcloud-us", "us-gov")
}

// NormalizeAzureRegion maps display-style Azure region names onto catalog
// slugs by lowercasing and dropping spaces ("East US 2" -> "eastus2").
// The result is not guaranteed to be a valid region.
func NormalizeAzureRegion(r string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r)), " ", "")
}

// AWSRegions returns the sorted canonical AWS region codes, GovCloud included.
func AWSRegions() []string {
	out := make([]string, 0, len(awsCommercialRegions)+len(awsGovRegions))
	for r := range awsCommercialRegions {
		out = append(out, r)
	}
	for r := range awsGovRegions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// AzureRegions returns the sorted canonical Azure region slugs.
func AzureRegions() []string {
	out := make([]string, 0, len(azureRegions))
	for r := range azureRegions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

const suggestionCount = 5

// closestRegions ranks choices by string similarity to token and returns the
// top suggestionCount. No cutoff is applied: a terrible suggestion still
// beats an empty hint in an error message.
func closestRegions(token string, choices []string) []string {
	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(choices))
	for _, c := range choices {
		ranked = append(ranked, scored{name: c, score: levenshtein.Match(token, c, nil)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].name < ranked[j].name
	})
	n := suggestionCount
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]string, 0, n)
	for _, s := range ranked[:n] {
		out = append(out, s.name)
	}
	return out
}
