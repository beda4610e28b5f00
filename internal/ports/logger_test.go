package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeFields(t *testing.T) {
	base := Fields{"runID": "abc", "asset": "BTCUSDT"}
	merged := MergeFields(base, Fields{"asset": "ETHUSDT"}, Fields{"count": 3})

	assert.Equal(t, Fields{"runID": "abc", "asset": "ETHUSDT", "count": 3}, merged)
	assert.Equal(t, "BTCUSDT", base["asset"], "base must not be modified")
}

func TestMergeFields_NilBase(t *testing.T) {
	merged := MergeFields(nil)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}
