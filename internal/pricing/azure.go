package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// DefaultRetailEndpoint is the public, unauthenticated Azure Retail Prices
// API.
const DefaultRetailEndpoint = "https://prices.azure.com/api/retail/prices"

// AzureRetail resolves VM hourly prices from the Azure Retail Prices API.
// Each region's price sheet is fetched once per process and cached in memory;
// Refresh drops the cache for the next lookup.
type AzureRetail struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string]map[string]float64 // region -> "armSkuName/os" -> $/hour
}

func NewAzureRetail(client *http.Client, logger zerolog.Logger) *AzureRetail {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &AzureRetail{
		endpoint: DefaultRetailEndpoint,
		client:   client,
		logger:   logger,
		cache:    make(map[string]map[string]float64),
	}
}

// WithEndpoint points the adapter at a different API base, for tests.
func (a *AzureRetail) WithEndpoint(endpoint string) *AzureRetail {
	a.endpoint = endpoint
	return a
}

// Refresh discards any cached price sheet for region so the next lookup
// re-fetches.
func (a *AzureRetail) Refresh(region string) {
	a.mu.Lock()
	delete(a.cache, region)
	a.mu.Unlock()
}

type retailPage struct {
	Items []struct {
		ArmSkuName  string  `json:"armSkuName"`
		SkuName     string  `json:"skuName"`
		ProductName string  `json:"productName"`
		MeterName   string  `json:"meterName"`
		UnitPrice   float64 `json:"unitPrice"`
	} `json:"Items"`
	NextPageLink string `json:"NextPageLink"`
}

// VMHourly returns the pay-as-you-go hourly rate for a VM size. osName
// "windows" selects Windows-licensed meters; everything else prices the
// Linux meter.
func (a *AzureRetail) VMHourly(ctx context.Context, region, instanceType, osName string) (float64, bool) {
	sheet, err := a.regionSheet(ctx, region)
	if err != nil {
		a.logger.Warn().Err(err).Str("region", region).Msg("retail price fetch failed")
		return 0, false
	}
	osKey := "linux"
	if strings.EqualFold(strings.TrimSpace(osName), "windows") {
		osKey = "windows"
	}
	price, ok := sheet[instanceType+"/"+osKey]
	return price, ok
}

func (a *AzureRetail) regionSheet(ctx context.Context, region string) (map[string]float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if sheet, ok := a.cache[region]; ok {
		return sheet, nil
	}

	sheet := make(map[string]float64)
	filter := fmt.Sprintf("serviceName eq 'Virtual Machines' and armRegionName eq '%s' and priceType eq 'Consumption'", region)
	next := a.endpoint + "?currencyCode=USD&$filter=" + url.QueryEscape(filter)
	pages := 0
	for next != "" {
		page, err := a.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, it := range page.Items {
			if it.ArmSkuName == "" || it.UnitPrice <= 0 {
				continue
			}
			// Spot and low-priority meters are alternate markets, not the
			// pay-as-you-go rate.
			if strings.Contains(it.SkuName, "Spot") || strings.Contains(it.SkuName, "Low Priority") ||
				strings.Contains(it.MeterName, "Spot") || strings.Contains(it.MeterName, "Low Priority") {
				continue
			}
			osKey := "linux"
			if strings.Contains(it.ProductName, "Windows") {
				osKey = "windows"
			}
			key := it.ArmSkuName + "/" + osKey
			if _, seen := sheet[key]; !seen {
				sheet[key] = it.UnitPrice
			}
		}
		next = page.NextPageLink
		pages++
	}
	a.logger.Debug().Str("region", region).Int("pages", pages).Int("meters", len(sheet)).Msg("cached retail price sheet")
	a.cache[region] = sheet
	return sheet, nil
}

func (a *AzureRetail) fetchPage(ctx context.Context, pageURL string) (*retailPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retail prices API returned %s", resp.Status)
	}
	var page retailPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding retail prices page: %w", err)
	}
	return &page, nil
}
