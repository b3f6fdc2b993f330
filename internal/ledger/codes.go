package ledger

import (
	"context"
	"fmt"
	"time"
)

const (
	batchPrefix    = "LOTE"
	orderPrefix    = "PED"
	dispatchPrefix = "DSP"
	adjustPrefix   = "ADJ"
)

// nextCode returns PREFIX-YYYYMMDD-NNNN, numbered per calendar day of date in the engine's zone.
func (e *Engine) nextCode(ctx context.Context, r Repos, prefix string, date time.Time) (string, error) {
	t := date.In(e.loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	n, err := r.Codes().Next(ctx, prefix, day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), n), nil
}

func dispatchRef(id int64) string { return fmt.Sprintf("%s-%d", dispatchPrefix, id) }

func adjustRef(at time.Time, reason string) string {
	r := []rune(reason)
	if len(r) > 10 {
		r = r[:10]
	}
	return fmt.Sprintf("%s-%d-%s", adjustPrefix, at.UnixMilli(), string(r))
}
