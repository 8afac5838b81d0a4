package util

import (
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestResolveRangeDefaults(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	from, to, err := ResolveRange("", "", now, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !to.Equal(now) || !from.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected range %v..%v", from, to)
	}
}

func TestResolveRangeErrors(t *testing.T) {
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	if _, _, err := ResolveRange("yesterday", "", now, time.Hour); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, _, err := ResolveRange("2024-10-10T13:00:00Z", "2024-10-10T12:00:00Z", now, time.Hour); err == nil {
		t.Fatalf("expected order error")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" bitcoin, ethereum,,bitcoin ,pepe ")
	want := []string{"bitcoin", "ethereum", "pepe"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected %v", got)
	}
	if got := ParseIntDefault(" 15 ", 10); got != 15 {
		t.Fatalf("unexpected %d", got)
	}
	if got := ParseIntDefault("x", 10); got != 10 {
		t.Fatalf("unexpected %d", got)
	}
}
