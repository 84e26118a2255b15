package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExamplesIndentsAndKeepsGroupsApart(t *testing.T) {
	got := Examples(`
		# Block a buyer
		storectl block admin buyers 7

		# Ship an order
		storectl status admin orders 5 dispatched
	`)

	assert.Equal(t, "  # Block a buyer\n"+
		"  storectl block admin buyers 7\n"+
		"\n"+
		"  # Ship an order\n"+
		"  storectl status admin orders 5 dispatched", got)
}

func TestExamplesEmpty(t *testing.T) {
	assert.Equal(t, "", Examples("  \n "))
}

func TestLongDescTrimsOuterWhitespaceOnly(t *testing.T) {
	got := LongDesc(`
  Lists records of a storefront resource.

    - admin buyers
`)
	assert.Equal(t, "Lists records of a storefront resource.\n\n    - admin buyers", got)
}
