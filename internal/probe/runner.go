package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	reportPermission    = 0o600
)

// ErrProbeFailed is returned when at least one endpoint check fails.
var ErrProbeFailed = errors.New("probe failed")

// Run checks service health and then every prediction endpoint.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("probe")
	report := &Report{BaseURL: config.BaseURL, StartTime: time.Now()}

	log.Info(ctx, "starting enhealth probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("repeat", config.Repeat),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.Timeout)
	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	report.Checks = probeEndpoints(ctx, client, config)
	report.Duration = time.Since(report.StartTime)

	for _, c := range report.Checks {
		fields := []logger.Field{
			logger.String("condition", string(c.Condition)),
			logger.Bool("deterministic", c.Deterministic),
			logger.Bool("rejectsIncomplete", c.Rejected),
			logger.Duration("latency", c.Latency),
		}
		if c.Result != nil {
			fields = append(fields, logger.String("riskLevel", c.Result.RiskLevel))
		}
		if c.Passed() {
			log.Info(ctx, "endpoint passed", fields...)
		} else {
			log.Error(ctx, "endpoint failed", append(fields, logger.Any("errors", c.Errors))...)
		}
	}

	if config.ReportFile != "" {
		if err := saveReport(config.ReportFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%w: %v", ErrProbeFailed, failed)
	}
	log.Info(ctx, "probe completed successfully", logger.Duration("duration", report.Duration))
	return report, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// probeEndpoints runs one check per condition on a bounded worker pool and
// returns the checks in endpoint order.
func probeEndpoints(ctx context.Context, client *HTTPClient, config *Config) []Check {
	checks := make([]Check, len(types.Conditions))
	jobs := make(chan int)

	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				checks[i] = probeCondition(ctx, client, config, types.Conditions[i])
			}
		}()
	}

submit:
	for i := range types.Conditions {
		select {
		case <-ctx.Done():
			break submit
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	for i, c := range types.Conditions {
		if checks[i].Condition == "" {
			checks[i] = Check{Condition: c, Errors: []string{"not probed: " + context.Cause(ctx).Error()}}
		}
	}
	return checks
}

func probeCondition(ctx context.Context, client *HTTPClient, config *Config, c types.Condition) Check {
	check := Check{Condition: c, Deterministic: true}
	url := config.BaseURL + "/api/" + string(c)
	log := logger.Named("probe")

	repeat := config.Repeat
	if repeat <= 0 {
		repeat = 1
	}

	start := time.Now()
	var first *types.Response
	for i := 0; i < repeat; i++ {
		check.Requests++
		status, body, err := client.PostJSON(ctx, url, Samples[c])
		if err != nil {
			check.Errors = append(check.Errors, err.Error())
			check.Deterministic = false
			break
		}
		if config.Verbose {
			log.Debug(ctx, "response", logger.String("condition", string(c)), logger.Int("status", status), logger.String("body", string(body)))
		}
		if status != http.StatusOK {
			check.Errors = append(check.Errors, fmt.Sprintf("complete payload: status %d: %s", status, body))
			check.Deterministic = false
			break
		}
		var resp types.Response
		if err := json.Unmarshal(body, &resp); err != nil {
			check.Errors = append(check.Errors, "complete payload: "+err.Error())
			check.Deterministic = false
			break
		}
		if first == nil {
			first = &resp
			continue
		}
		if resp != *first {
			check.Deterministic = false
			check.Errors = append(check.Errors, fmt.Sprintf("response %d differs from the first", i+1))
		}
	}
	check.Latency = time.Since(start) / time.Duration(check.Requests)
	if first != nil {
		check.Result = &first.Result
		if first.Condition != c {
			check.Errors = append(check.Errors, fmt.Sprintf("condition %q in response", first.Condition))
		}
	}

	payload, dropped := incomplete(c)
	check.DroppedField = dropped
	status, body, err := client.PostJSON(ctx, url, payload)
	switch {
	case err != nil:
		check.Errors = append(check.Errors, err.Error())
	case status != http.StatusBadRequest:
		check.Errors = append(check.Errors, fmt.Sprintf("incomplete payload: status %d, want 400", status))
	default:
		var e struct {
			Error string `json:"error"`
		}
		want := dropped + " is required"
		if err := json.Unmarshal(body, &e); err != nil || e.Error != want {
			check.Errors = append(check.Errors, fmt.Sprintf("incomplete payload: error %q, want %q", e.Error, want))
		} else {
			check.Rejected = true
		}
	}
	return check
}

func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(filename, data, reportPermission)
}
