package partitioner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	PartitionPlan struct {
		Func string   `validate:"required"`
		Args []string `validate:"min=1"`
		As   string   `validate:"required"`
	}

	PartitionFunc func(row map[string]any, args []string) (string, error)
)

var (
	Functions = map[string]PartitionFunc{
		"identity":   identity,
		"toDay":      timeFunc(func(t time.Time) string { return fmt.Sprint(t.Day()) }),
		"toMonth":    timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Month())) }),
		"toYear":     timeFunc(func(t time.Time) string { return fmt.Sprint(t.Year()) }),
		"toYearDay":  timeFunc(func(t time.Time) string { return fmt.Sprint(t.YearDay()) }),
		"toYearWeek": timeFunc(func(t time.Time) string { y, w := t.ISOWeek(); return fmt.Sprintf("%d-%d", y, w) }),
		"toWeekDay":  timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Weekday())) }),
		"toDate":     timeFunc(func(t time.Time) string { return t.Format("2006-01-02") }),
	}

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
)

// GetRowPartition returns the partition path of the row, like `year=2022/month=12`. No plans
// gives the empty partition.
func GetRowPartition(row map[string]any, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrFuncNotFound, partFunc.Func)
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

func identity(row map[string]any, args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrMissingArgs
	}
	value, exists := row[args[0]]
	if !exists {
		return "", ErrMissingColumns
	}
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string, bool, int, int32, int64, float64:
		return strings.ReplaceAll(fmt.Sprint(v), "/", "_"), nil
	}
	return "", ErrInvalidColumnType
}

func timeFunc(format func(t time.Time) string) PartitionFunc {
	return func(row map[string]any, args []string) (string, error) {
		t, err := parseTime(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTime: %w", err)
		}
		return format(t.UTC()), nil
	}
}

func parseTime(row map[string]any, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]
	if key == "now()" {
		return time.Now(), nil
	}

	value, exists := row[key]
	if !exists {
		err = ErrMissingColumns
		return
	}

	switch v := value.(type) {
	case time.Time:
		t = v
	case string:
		// datetimes like YYYY-MM-DDTHH:mm:ss.sssZ
		t, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			err = fmt.Errorf("error in time.Parse for string: %w", err)
		}
	case float64:
		// unix millis
		t = time.UnixMilli(int64(v))
	case int64:
		t = time.UnixMilli(v)
	default:
		err = ErrInvalidColumnType
	}
	return
}
