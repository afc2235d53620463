package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketron/ticketron/pkg/util/errorutil"
)

func TestResolvePage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		total   int
		want    int
		wantErr bool
	}{
		{name: "default", raw: "", total: 13, want: 1},
		{name: "second", raw: "2", total: 13, want: 2},
		{name: "last keyword", raw: "last", total: 13, want: 2},
		{name: "empty listing first page", raw: "1", total: 0, want: 1},
		{name: "empty listing last", raw: "last", total: 0, want: 1},
		{name: "out of range", raw: "3", total: 13, wantErr: true},
		{name: "zero", raw: "0", total: 13, wantErr: true},
		{name: "non numeric", raw: "abc", total: 13, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePage(tt.raw, tt.total)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errorutil.IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageFlags(t *testing.T) {
	p := newPage([]int{1, 2, 3}, 2, 13)
	assert.True(t, p.IsPaginated())
	assert.True(t, p.HasPrevious())
	assert.False(t, p.HasNext())
	assert.Equal(t, 10, p.Offset())

	single := newPage([]int{}, 1, 0)
	assert.False(t, single.IsPaginated())
	assert.Equal(t, 1, single.NumPages)
}
