package service

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

var (
	ErrMissingSector = errors.New("sector is required")
	ErrMissingMonth  = errors.New("month is required")
	ErrMissingWeek   = errors.New("week is required")
	ErrInvalidWeek   = errors.New("week must be a number between 1 and 53")
	ErrInvalidMonth  = errors.New("month must be MM/YYYY")
	// ErrNoData means a batch produced no records. Process reports it through
	// BatchResult.Empty, not as an error.
	ErrNoData = errors.New("no data extracted")
)

var monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{4}$`)

// NormalizeMetadata trims every field.
func NormalizeMetadata(meta model.BatchMetadata) model.BatchMetadata {
	return model.BatchMetadata{
		Sector: strings.TrimSpace(meta.Sector),
		Month:  strings.TrimSpace(meta.Month),
		Week:   strings.TrimSpace(meta.Week),
	}
}

// ValidateMetadata checks that every field is present and well formed. All
// problems are reported together.
func ValidateMetadata(meta model.BatchMetadata) error {
	meta = NormalizeMetadata(meta)

	var errs []error
	if meta.Sector == "" {
		errs = append(errs, ErrMissingSector)
	}

	switch {
	case meta.Month == "":
		errs = append(errs, ErrMissingMonth)
	case !monthPattern.MatchString(meta.Month):
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidMonth, meta.Month))
	}

	if meta.Week == "" {
		errs = append(errs, ErrMissingWeek)
	} else if w, err := strconv.Atoi(meta.Week); err != nil || w < 1 || w > 53 {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidWeek, meta.Week))
	}

	return errors.Join(errs...)
}

// InferMetadata fills an empty sector or month from what the reports print:
// the first section banner and the first period header, in document order.
// The inferred sector labels the batch; rows of a multi-section batch carry
// their own section (see Process). Fields the caller set are never
// overwritten. Week is never inferred.
func InferMetadata(meta model.BatchMetadata, results []model.DocumentResult) model.BatchMetadata {
	meta = NormalizeMetadata(meta)

	for _, r := range results {
		if meta.Sector == "" && len(r.Sections) > 0 {
			meta.Sector = r.Sections[0]
		}
		if meta.Month == "" && r.DetectedMonth != "" {
			meta.Month = r.DetectedMonth
		}
	}
	return meta
}

// PeriodOf returns the month (MM/YYYY) and ISO week number of t, the
// defaults for batches that run on a schedule.
func PeriodOf(t time.Time) (month, week string) {
	_, w := t.ISOWeek()
	return t.Format("01/2006"), strconv.Itoa(w)
}
