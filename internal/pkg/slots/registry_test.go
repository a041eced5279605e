package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectPath(t *testing.T) {
	t.Parallel()

	reg := NewDefaultRegistry(DefaultFreeSlotID)

	tests := []struct {
		name      string
		slotID    int
		packageID string
		want      string
	}{
		{
			name:      "paid top-50 slot",
			slotID:    3,
			packageID: "p1",
			want:      "/dashboard/servers/new?type=top50&slot=3&package=p1",
		},
		{
			name:      "banner slot uses banner form",
			slotID:    1,
			packageID: "banner-30",
			want:      "/dashboard/banners/new?type=banner&slot=1&package=banner-30",
		},
		{
			name:      "package id is escaped",
			slotID:    2,
			packageID: "a&b c",
			want:      "/dashboard/servers/new?type=featured&slot=2&package=a%26b+c",
		},
		{
			name:      "empty package id",
			slotID:    4,
			packageID: "",
			want:      "/dashboard/servers/new?type=free&slot=4&package=",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, reg.RedirectPath(tc.slotID, tc.packageID))
		})
	}
}

func TestRedirectPathUnknownSlotFallsBack(t *testing.T) {
	reg := NewDefaultRegistry(DefaultFreeSlotID)

	for _, id := range []int{-1, 0, 5, 99, 1 << 30} {
		assert.NotPanics(t, func() {
			assert.Equal(t, DashboardPath, reg.RedirectPath(id, "p1"))
		})
	}
}

func TestIsFree(t *testing.T) {
	reg := NewDefaultRegistry(DefaultFreeSlotID)
	assert.True(t, reg.IsFree(DefaultFreeSlotID))
	assert.False(t, reg.IsFree(3))

	custom := NewDefaultRegistry(2)
	assert.True(t, custom.IsFree(2))
	assert.False(t, custom.IsFree(DefaultFreeSlotID))
	assert.Equal(t, 2, custom.FreeSlotID())
}

func TestLookupAndAll(t *testing.T) {
	reg := NewDefaultRegistry(DefaultFreeSlotID)

	s, ok := reg.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "Top-50", s.Name)
	assert.Equal(t, "servers", s.Table)

	_, ok = reg.Lookup(42)
	assert.False(t, ok)

	all := reg.All()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}
