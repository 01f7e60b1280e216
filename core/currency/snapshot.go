package currency

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sitecost/core/types"
	"sitecost/internal/errors"
)

// LoadSnapshot reads a rate snapshot from a JSON or YAML file
func LoadSnapshot(path string) (*types.CurrencyRatesSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeNotFound, "failed to read rate snapshot", err).
			WithContext("path", path)
	}
	return ParseSnapshot(filepath.Ext(path), data)
}

// ParseSnapshot decodes a snapshot. ext selects the format; anything other
// than .yaml or .yml is read as JSON.
func ParseSnapshot(ext string, data []byte) (*types.CurrencyRatesSnapshot, error) {
	var snapshot types.CurrencyRatesSnapshot

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snapshot); err != nil {
			return nil, errors.Parsing("invalid YAML rate snapshot", err)
		}
	default:
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, errors.Parsing("invalid JSON rate snapshot", err)
		}
	}

	if snapshot.Base == "" {
		snapshot.Base = types.CurrencyUSD
	}
	snapshot.Base = types.NormalizeCurrency(string(snapshot.Base))
	if snapshot.Source == "" {
		snapshot.Source = types.RateSourceStatic
	}

	for c, r := range snapshot.Rates {
		if r.IsNegative() {
			return nil, errors.InvalidNumeric("rates."+string(c), "must not be negative")
		}
	}
	return &snapshot, nil
}
