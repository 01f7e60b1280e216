package estimate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"sitecost/core/output"
	"sitecost/core/types"
	"sitecost/internal/errors"
)

// BatchItem is the outcome of one request in a batch
type BatchItem struct {
	Index     int            `json:"index"`
	Report    *output.Report `json:"report,omitempty"`
	ErrorCode string         `json:"errorCode,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// BatchResult collects a batch in request order
type BatchResult struct {
	Items        []BatchItem                        `json:"items"`
	SuccessCount int                                `json:"successCount"`
	FailureCount int                                `json:"failureCount"`
	Totals       map[types.Currency]decimal.Decimal `json:"totals"`
}

// Batch estimates every request with at most parallelism in flight.
// Failures are recorded per item and do not stop the batch. progress, when
// set, is called once per finished request.
func (s *Service) Batch(ctx context.Context, reqs []Request, parallelism int, progress func()) *BatchResult {
	if parallelism < 1 {
		parallelism = 1
	}

	items := make([]BatchItem, len(reqs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, parallelism)

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			item := BatchItem{Index: i}
			if err := ctx.Err(); err != nil {
				item.ErrorCode = string(errors.TypeInternal)
				item.Error = err.Error()
			} else if report, err := s.Estimate(req); err != nil {
				item.ErrorCode = string(errors.TypeOf(err))
				item.Error = err.Error()
			} else {
				item.Report = report
			}
			items[i] = item

			if progress != nil {
				mu.Lock()
				progress()
				mu.Unlock()
			}
		}(i, req)
	}
	wg.Wait()

	result := &BatchResult{
		Items:  items,
		Totals: make(map[types.Currency]decimal.Decimal),
	}
	for _, item := range items {
		if item.Report == nil {
			result.FailureCount++
			continue
		}
		result.SuccessCount++
		cur := item.Report.Result.Currency
		result.Totals[cur] = result.Totals[cur].Add(item.Report.Result.TotalCost)
	}
	return result
}

// LoadRequest reads a single request from a JSON or YAML file
func LoadRequest(path string) (Request, error) {
	var req Request
	if err := decodeFile(path, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// LoadRequests reads a list of requests from a JSON or YAML file
func LoadRequests(path string) ([]Request, error) {
	var reqs []Request
	if err := decodeFile(path, &reqs); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, errors.Input("batch file contains no requests").WithContext("path", path)
	}
	return reqs, nil
}

func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.TypeNotFound, "failed to read request file", err).
			WithContext("path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Parsing("invalid YAML request file", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return errors.Parsing("invalid JSON request file", err)
		}
	}
	return nil
}
