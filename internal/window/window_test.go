package window_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/victornm/tutormate/internal/window"
)

func TestOf(t *testing.T) {
	tests := map[string]struct {
		now  time.Time
		d    time.Duration
		want window.Window
	}{
		"exact boundary reports the full duration": {
			now:  time.Unix(1000*120, 0),
			d:    window.DefaultDuration,
			want: window.Window{ID: 1000, Remaining: 120 * time.Second},
		},
		"mid window": {
			now:  time.Unix(1000*120+45, 0),
			d:    window.DefaultDuration,
			want: window.Window{ID: 1000, Remaining: 75 * time.Second},
		},
		"last second of a window": {
			now:  time.Unix(1000*120+119, 0),
			d:    window.DefaultDuration,
			want: window.Window{ID: 1000, Remaining: time.Second},
		},
		"sub-second precision is truncated": {
			now:  time.Unix(1000*120+10, 999_000_000),
			d:    window.DefaultDuration,
			want: window.Window{ID: 1000, Remaining: 110 * time.Second},
		},
		"pre-epoch instants floor toward negative infinity": {
			now:  time.Unix(-1, 0),
			d:    window.DefaultDuration,
			want: window.Window{ID: -1, Remaining: time.Second},
		},
		"non-positive duration falls back to the default": {
			now:  time.Unix(240, 0),
			d:    0,
			want: window.Window{ID: 2, Remaining: 120 * time.Second},
		},
		"hour-long windows": {
			now:  time.Unix(3600*5+1800, 0),
			d:    time.Hour,
			want: window.Window{ID: 5, Remaining: 30 * time.Minute},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, window.Of(tt.now, tt.d))
		})
	}
}

func TestOf_SameBucketSameID(t *testing.T) {
	base := time.Unix(1_700_000_040, 0) // a multiple of 120
	first := window.Of(base, window.DefaultDuration)

	for s := 0; s < 120; s++ {
		w := window.Of(base.Add(time.Duration(s)*time.Second), window.DefaultDuration)
		assert.Equal(t, first.ID, w.ID, "offset %ds", s)
		assert.Positive(t, w.Remaining)
	}

	next := window.Of(base.Add(120*time.Second), window.DefaultDuration)
	assert.Equal(t, first.ID+1, next.ID)
}

func TestOf_Monotonic(t *testing.T) {
	prev := window.Of(time.Unix(-500, 0), window.DefaultDuration).ID
	for s := int64(-499); s < 500; s++ {
		id := window.Of(time.Unix(s, 0), window.DefaultDuration).ID
		assert.GreaterOrEqual(t, id, prev)
		prev = id
	}
}

func TestStart(t *testing.T) {
	start := window.Start(1000, window.DefaultDuration)
	assert.Equal(t, int64(120_000), start.Unix())
	assert.Equal(t, int64(1000), window.Of(start, window.DefaultDuration).ID)
}
