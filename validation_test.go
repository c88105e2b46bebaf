package tilecache

import (
	"testing"
	"time"
)

func TestEvaluate(t *testing.T) {
	now := time.Now()
	nowMs := millis(now)

	tests := []struct {
		name  string
		attrs Attributes
		want  Freshness
	}{
		{
			name:  "explicit expiration in the future",
			attrs: Attributes{CreateTime: nowMs, LastModification: nowMs, ExpirationTime: nowMs + time.Hour.Milliseconds()},
			want:  Fresh,
		},
		{
			name:  "explicit expiration in the past",
			attrs: Attributes{CreateTime: nowMs, LastModification: nowMs, ExpirationTime: nowMs - time.Hour.Milliseconds()},
			want:  StaleRevalidatable,
		},
		{
			name:  "no expiration, recent last-modified",
			attrs: Attributes{CreateTime: nowMs, LastModification: nowMs - time.Hour.Milliseconds()},
			want:  Fresh,
		},
		{
			name:  "no expiration, old last-modified",
			attrs: Attributes{CreateTime: nowMs, LastModification: nowMs - 2*DefaultExpire.Milliseconds()},
			want:  StaleRevalidatable,
		},
		{
			name:  "no expiration or last-modified, recent create",
			attrs: Attributes{CreateTime: nowMs},
			want:  Fresh,
		},
		{
			name:  "too old to serve overrides fresh expiration",
			attrs: Attributes{CreateTime: nowMs, LastModification: nowMs - 2*AbsoluteExpire.Milliseconds(), ExpirationTime: nowMs + time.Hour.Milliseconds()},
			want:  Unusable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.attrs, now); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFresh(t *testing.T) {
	now := time.Now()
	fresh := Attributes{CreateTime: millis(now)}
	if !IsFresh(fresh, now) {
		t.Error("freshly created entry with no expiration set should be fresh")
	}

	stale := Attributes{CreateTime: millis(now) - 2*DefaultExpire.Milliseconds()}
	if IsFresh(stale, now) {
		t.Error("entry past DefaultExpire should not be fresh")
	}
}
