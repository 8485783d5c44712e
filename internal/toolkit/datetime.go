package toolkit

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const humanLayout = "Monday, January 2, 2006 15:04:05 UTC"

// now is replaced in tests.
var now = time.Now

func datetimeTools() []*Tool {
	millisInput := Input{Name: "millis", Description: "Use milliseconds instead of seconds", Type: "boolean", Default: "false"}

	return []*Tool{
		{
			Name:        "datetime-now",
			Title:       "Current Timestamp",
			Category:    CategoryDatetime,
			Description: "Current Unix timestamp followed by its ISO 8601 form",
			Inputs:      []Input{millisInput},
			Fn:          datetimeNow,
		},
		{
			Name:        "datetime-from-timestamp",
			Title:       "Format Timestamp",
			Category:    CategoryDatetime,
			Description: "Format a Unix timestamp as ISO 8601 or a human readable UTC date",
			Inputs: []Input{
				{Name: "timestamp", Description: "Unix timestamp", Type: "integer", Required: true},
				millisInput,
				{Name: "format", Description: "iso or human", Type: "string", Default: "iso"},
			},
			Fn: datetimeFromTimestamp,
		},
	}
}

func isoString(t time.Time, millis bool) string {
	t = t.UTC()
	if millis {
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	}
	return t.Format(time.RFC3339)
}

func datetimeNow(_ context.Context, in Inputs) (Result, error) {
	millis, err := in.Bool("millis", false)
	if err != nil {
		return Result{}, err
	}

	t := now()
	stamp := t.Unix()
	if millis {
		stamp = t.UnixMilli()
	}

	return Result{Output: strconv.FormatInt(stamp, 10) + "\n" + isoString(t, millis)}, nil
}

func datetimeFromTimestamp(_ context.Context, in Inputs) (Result, error) {
	stamp, err := in.Int("timestamp", 0)
	if err != nil {
		return Result{}, err
	}
	millis, err := in.Bool("millis", false)
	if err != nil {
		return Result{}, err
	}

	var t time.Time
	if millis {
		t = time.UnixMilli(stamp)
	} else {
		t = time.Unix(stamp, 0)
	}

	switch format := strings.ToLower(strings.TrimSpace(in.String("format"))); format {
	case "", "iso":
		return Result{Output: isoString(t, millis)}, nil
	case "human":
		return Result{Output: t.UTC().Format(humanLayout)}, nil
	default:
		return Result{}, invalidInput("format", "%q is not one of iso, human", format)
	}
}
