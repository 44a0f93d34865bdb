package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownPlans(t *testing.T) {
	p, ok := Lookup(Plan1Month)
	require.True(t, ok)
	assert.Equal(t, "1 Month YouTube Premium", p.Name)
	assert.Equal(t, 20, p.Amount)
	assert.False(t, p.ComingSoon)

	p, ok = Lookup(Plan3Months)
	require.True(t, ok)
	assert.Equal(t, 55, p.Amount)
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("plan_12months_200")
	assert.False(t, ok)
}

func TestPurchasable(t *testing.T) {
	assert.True(t, Purchasable(Plan1Month))
	assert.True(t, Purchasable(Plan3Months))
	assert.False(t, Purchasable(Plan6Months), "coming-soon plan must not be purchasable")
	assert.False(t, Purchasable("nope"))
}

func TestAllIsCopy(t *testing.T) {
	a := All()
	require.Len(t, a, 3)
	a[0].Amount = 999
	p, _ := Lookup(Plan1Month)
	assert.Equal(t, 20, p.Amount)
}
