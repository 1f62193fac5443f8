package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateAt(t *testing.T) {
	loc := serviceCardTemplate.At(3)
	assert.Equal(t, XPath, loc.Strategy)
	assert.Equal(t, "(//div[@class='rtcCards'])[3]", loc.Selector)
}

func TestRowBuildsFieldLocator(t *testing.T) {
	tests := []struct {
		name  string
		x     int
		field string
		want  string
	}{
		{
			name:  "operator cell of first row",
			x:     1,
			field: fieldOperator,
			want:  "(//li[contains(@class,'row-sec clearfix')])[1]/descendant::div[contains(@class,'travels')]",
		},
		{
			name:  "fare cell with spaced class",
			x:     12,
			field: fieldFare,
			want:  "(//li[contains(@class,'row-sec clearfix')])[12]/descendant::div[contains(@class,'fare d-block')]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Row(tt.x, tt.field)
			require.NoError(t, err)
			assert.Equal(t, XPath, loc.Strategy)
			assert.Equal(t, tt.want, loc.Selector)
		})
	}
}

func TestRowRejectsBadInput(t *testing.T) {
	_, err := Row(0, fieldOperator)
	assert.Error(t, err, "row indexes are 1-based")

	_, err = Row(-2, fieldOperator)
	assert.Error(t, err)

	_, err = Row(1, "travels')]|//script[contains(@class,'x")
	assert.Error(t, err, "field classes must not escape the predicate")

	_, err = Row(1, "")
	assert.Error(t, err)
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "xpath", XPath.String())
	assert.Equal(t, "css", CSS.String())
}
