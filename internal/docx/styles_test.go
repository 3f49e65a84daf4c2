package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scimark/internal/mdtoken"
)

func TestResolveFontPlanDefaults(t *testing.T) {
	plan := resolveFontPlan(mdtoken.Frontmatter{})
	assert.Equal(t, defaultBodyHp, plan.bodyHp)
	assert.Equal(t, defaultCodeHp, plan.codeHp)
	assert.Equal(t, "Calibri", plan.bodyFont)
	assert.Equal(t, "Consolas", plan.codeFont)
}

func TestResolveFontPlanScalesHeadings(t *testing.T) {
	fm := mdtoken.Frontmatter{FontSize: 12, HasFontSize: true}
	plan := resolveFontPlan(fm)
	assert.Equal(t, 24, plan.bodyHp)
	require.NotEqual(t, defaultHeadingHp, plan.headingHp)
	assert.Equal(t, roundInt(float64(defaultHeadingHp[0])/22.0*24.0), plan.headingHp[0])
}

func TestResolveFontPlanExplicitHeaderSizesOverride(t *testing.T) {
	fm := mdtoken.Frontmatter{HeaderFontSize: []float64{20, 18}}
	plan := resolveFontPlan(fm)
	assert.Equal(t, hp(20), plan.headingHp[0])
	assert.Equal(t, hp(18), plan.headingHp[1])
	assert.Equal(t, hp(18), plan.headingHp[5])
}

func TestStylesXMLContainsCoreStyles(t *testing.T) {
	plan := resolveFontPlan(mdtoken.Frontmatter{})
	xml := stylesXML(plan)
	assert.True(t, strings.Contains(xml, `w:styleId="Normal"`))
	assert.True(t, strings.Contains(xml, `w:styleId="Heading1"`))
	assert.True(t, strings.Contains(xml, `w:styleId="TableGrid"`))
	assert.True(t, strings.Contains(xml, `w:styleId="CodeBlock"`))
}

func TestStyleToggleXML(t *testing.T) {
	assert.Equal(t, "", styleToggleXML(""))
	assert.Equal(t, "", styleToggleXML("normal"))
	assert.Equal(t, "<w:b/><w:i/>", styleToggleXML("bold-italic"))
	assert.Equal(t, "<w:u w:val=\"single\"/>", styleToggleXML("underline"))
}

func TestHpConversion(t *testing.T) {
	assert.Equal(t, 24, hp(12))
	assert.Equal(t, 21, hp(10.5))
}
