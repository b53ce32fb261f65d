package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedProgramsSatisfyContract(t *testing.T) {
	for _, src := range []Source{Basic, Face, Rim} {
		t.Run(src.Name, func(t *testing.T) {
			require.NotEmpty(t, src.Vertex)
			require.NotEmpty(t, src.Fragment)
			assert.NoError(t, src.Check())
		})
	}
}

func TestVertexStageWritesVaryings(t *testing.T) {
	d := Parse(toonVertex)
	assert.True(t, d.Outputs[VaryingWorldNormal])
	assert.True(t, d.Outputs[VaryingUV])
	assert.True(t, d.Inputs["aPosition"])
	assert.True(t, d.Uniforms[UniformNormalMatrix])
}

func TestVariantUniforms(t *testing.T) {
	face := Parse(faceFragment)
	rim := Parse(rimFragment)

	assert.True(t, face.Uniforms[UniformFaceLightMap])
	assert.False(t, face.Uniforms[UniformLightPosition], "face variant does not read the light position")

	assert.True(t, rim.Uniforms[UniformLightPosition])
	assert.False(t, rim.Uniforms[UniformFaceLightMap])
}

func TestParseIgnoresLineComments(t *testing.T) {
	src := `
// uniform vec3 uCommented;
uniform vec3 uReal; // uniform float uTrailing;
uniform vec3 uLights[4];
flat in int vIndex;
`
	d := Parse(src)
	assert.True(t, d.Uniforms["uReal"])
	assert.True(t, d.Uniforms["uLights"])
	assert.False(t, d.Uniforms["uCommented"])
	assert.False(t, d.Uniforms["uTrailing"])
	assert.True(t, d.Inputs["vIndex"])
}

func TestCheckContractReportsMissing(t *testing.T) {
	src := "uniform vec3 uLightPosition;\nin vec2 vUv;\n"

	err := CheckContract(src, Contract{
		Uniforms: []string{UniformLightPosition, UniformFaceLightMap},
		Inputs:   []string{VaryingUV, VaryingWorldNormal},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uniform uFaceLightMap")
	assert.Contains(t, err.Error(), "in vWorldNormal")
	assert.NotContains(t, err.Error(), "uLightPosition")
}

func TestCheckLinkage(t *testing.T) {
	vert := "out vec2 vUv;\n"
	assert.NoError(t, CheckLinkage(vert, "in vec2 vUv;\n"))

	err := CheckLinkage(vert, "in vec2 vUv;\nin vec3 vWorldNormal;\nin vec3 vColor;\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vColor, vWorldNormal")
}

func TestSourceCheckWrapsName(t *testing.T) {
	broken := Rim
	broken.Fragment = "in vec3 vWorldNormal;\nin vec2 vUv;\n"
	err := broken.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rim fragment")
}
