package catalog

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// AzureSource fetches the VM size catalog for an Azure region through the
// Azure CLI. The CLI is the session holder: it carries the login and the
// subscription selection, so a working `az` is a hard prerequisite
// (see Preflight).
type AzureSource struct {
	run    azRunner
	logger zerolog.Logger
}

// azRunner executes an az CLI invocation and returns its stdout.
type azRunner func(ctx context.Context, args ...string) ([]byte, error)

// NewAzureSource creates an AzureSource that shells out to the az CLI.
func NewAzureSource(logger zerolog.Logger) *AzureSource {
	return &AzureSource{run: runAz, logger: logger}
}

// azSKU is one entry of `az vm list-skus` output.
type azSKU struct {
	Name         string `json:"name"`
	ResourceType string `json:"resourceType"`
	Capabilities []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"capabilities"`
	Restrictions []struct {
		Type   string `json:"type"`
		Reason string `json:"reasonCode"`
	} `json:"restrictions"`
}

// Fetch lists VM SKUs for the region and normalizes them into a Catalog.
// SKUs restricted in the subscription (NotAvailableForSubscription) are
// excluded: recommending a size the operator cannot deploy helps nobody.
func (s *AzureSource) Fetch(ctx context.Context, region string) (Catalog, error) {
	start := time.Now()

	out, err := s.run(ctx,
		"vm", "list-skus",
		"--location", region,
		"--resource-type", "virtualMachines",
		"-o", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("az vm list-skus for %s: %w", region, err)
	}

	var skus []azSKU
	if err := json.Unmarshal(out, &skus); err != nil {
		return nil, fmt.Errorf("parse az vm list-skus output for %s: %w", region, err)
	}

	cat := Catalog{}
	for _, sku := range skus {
		if sku.ResourceType != "virtualMachines" || restricted(sku) {
			continue
		}
		var vcpu int
		var memGiB float64
		for _, c := range sku.Capabilities {
			switch c.Name {
			case "vCPUs":
				vcpu, _ = strconv.Atoi(c.Value)
			case "MemoryGB":
				memGiB, _ = strconv.ParseFloat(c.Value, 64)
			}
		}
		if vcpu <= 0 || memGiB <= 0 {
			continue
		}
		cat[sku.Name] = Shape{Name: sku.Name, VCPU: vcpu, MemoryGiB: memGiB}
	}

	s.logger.Debug().
		Str("cloud", "azure").
		Str("region", region).
		Int("shapes", len(cat)).
		Dur("elapsed", time.Since(start)).
		Msg("vm size catalog fetched")

	return cat, nil
}

func restricted(sku azSKU) bool {
	for _, r := range sku.Restrictions {
		if r.Reason == "NotAvailableForSubscription" {
			return true
		}
	}
	return false
}

// Preflight verifies the Azure CLI is installed, logged in, and that the
// Microsoft.Compute provider is registered. Any failure is fatal for an
// Azure run; the message tells the operator what to do about it.
func Preflight(ctx context.Context) error {
	if _, err := lookupAz(); err != nil {
		return fmt.Errorf("azure cli not found; install https://aka.ms/azcli and run 'az login'")
	}

	if _, err := runAz(ctx, "account", "show", "-o", "json"); err != nil {
		return fmt.Errorf("azure cli not logged in; run 'az login' and 'az account set --subscription <SUBSCRIPTION>'")
	}

	out, err := runAz(ctx, "provider", "show", "-n", "Microsoft.Compute",
		"--query", "registrationState", "-o", "tsv")
	if err != nil || !strings.EqualFold(strings.TrimSpace(string(out)), "registered") {
		return fmt.Errorf("provider Microsoft.Compute not registered; run: az provider register -n Microsoft.Compute")
	}

	return nil
}

func lookupAz() (string, error) {
	for _, name := range []string{"az", "az.cmd", "az.exe"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func runAz(ctx context.Context, args ...string) ([]byte, error) {
	path, err := lookupAz()
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, path, args...).Output()
}
