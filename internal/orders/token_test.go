package orders

import (
	"errors"
	"testing"
	"time"
)

func TestTokenCacheFetchesOnce(t *testing.T) {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := newTokenCache(2 * time.Minute)
	c.now = func() time.Time { return base }

	fetches := 0
	fetch := func() (string, time.Time, error) {
		fetches++
		return "tok-1", base.Add(time.Hour), nil
	}

	for i := 0; i < 3; i++ {
		tok, err := c.get(fetch)
		if err != nil || tok != "tok-1" {
			t.Fatalf("get = (%q, %v)", tok, err)
		}
	}
	if fetches != 1 {
		t.Errorf("fetched %d times, want 1", fetches)
	}
}

func TestTokenCacheRefreshesWithinMargin(t *testing.T) {
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	now := base
	c := newTokenCache(2 * time.Minute)
	c.now = func() time.Time { return now }

	fetches := 0
	fetch := func() (string, time.Time, error) {
		fetches++
		return "tok", now.Add(10 * time.Minute), nil
	}

	c.get(fetch)

	// 8m30s in: 1m30s before expiry, inside the 2 minute margin.
	now = base.Add(8*time.Minute + 30*time.Second)
	c.get(fetch)
	if fetches != 2 {
		t.Errorf("fetched %d times, want refresh inside the margin", fetches)
	}

	// Fresh again right after the refresh.
	c.get(fetch)
	if fetches != 2 {
		t.Errorf("fetched %d times after refresh, want 2", fetches)
	}
}

func TestTokenCacheFetchErrorLeavesCacheUsable(t *testing.T) {
	c := newTokenCache(time.Minute)
	if _, err := c.get(func() (string, time.Time, error) {
		return "", time.Time{}, errors.New("auth down")
	}); err == nil {
		t.Fatal("expected fetch error to propagate")
	}

	tok, err := c.get(func() (string, time.Time, error) {
		return "tok", time.Now().Add(time.Hour), nil
	})
	if err != nil || tok != "tok" {
		t.Errorf("get after failed fetch = (%q, %v)", tok, err)
	}
}
