package compositor

import "fmt"

// VertexSource draws a full-screen quad given in clip space and hands the
// fragment stage uv = pos*0.5 + 0.5.
const VertexSource = `#version 410 core
layout(location = 0) in vec2 aPos;
out vec2 uv;
void main() {
	uv = aPos * 0.5 + 0.5;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

// fragmentTemplate mirrors Compositor.Pixel step for step. %d is MaxOctaves.
const fragmentTemplate = `#version 410 core
#define MAX_OCTAVES %d
in vec2 uv;
out vec4 FragColor;

uniform sampler3D noiseTex;
uniform float time;
uniform float speed;
uniform int colorMode;

uniform int octaves;
uniform float gain;
uniform float lacunarity;
uniform vec2 uvScale;
uniform vec2 uvBias;
uniform float scrollRate;
uniform float zDrift;
uniform bool foldDomain;

uniform float firePower;
uniform float fireColorGain;
uniform vec3 classicLow;
uniform vec3 classicHigh;
uniform vec3 lavaLow;
uniform vec3 lavaHigh;
uniform vec3 blueLow;
uniform vec3 blueHigh;

uniform vec2 smokeOffset;
uniform float smokeDrift;
uniform float smokeLow;
uniform float smokeHigh;
uniform vec3 smokeDark;
uniform vec3 smokeLight;

uniform vec3 distortOffsetA;
uniform vec3 distortOffsetB;
uniform float distortStrength;
uniform float distortSpeedGain;

uniform float heightLow;
uniform float heightHigh;

uniform float sparkScale;
uniform vec3 sparkOffset;
uniform float sparkLow;
uniform float sparkHigh;
uniform float sparkMaskLow;
uniform float sparkMaskHigh;
uniform float sparkPulseRate;
uniform vec2 sparkPulseFreq;
uniform vec3 sparkTint;
uniform float sparkGain;

uniform float blurRadius;
uniform float blurWeight;

float sampleNoise(vec3 p, bool mirror) {
	if (mirror) {
		vec3 m = mod(p, 2.0);
		p = mix(m, 2.0 - m, step(1.0, m));
	}
	return texture(noiseTex, p).r;
}

float fbm(vec3 p, bool mirror) {
	float v = 0.0;
	float a = gain;
	for (int i = 0; i < MAX_OCTAVES; i++) {
		if (i >= octaves) {
			break;
		}
		v += a * sampleNoise(p, mirror);
		p *= lacunarity;
		a *= gain;
	}
	return v;
}

float fireAt(vec3 p) {
	return pow(fbm(p, foldDomain), firePower);
}

vec3 firePalette(float fire) {
	float k = clamp(fire * fireColorGain, 0.0, 1.0);
	if (colorMode == 1) {
		return mix(lavaLow, lavaHigh, k);
	} else if (colorMode == 2) {
		return mix(blueLow, blueHigh, k);
	}
	return mix(classicLow, classicHigh, k);
}

void main() {
	float t = time * scrollRate;
	vec3 p = vec3(uv.x * uvScale.x + uvBias.x, uv.y * uvScale.y + uvBias.y + t, t * zDrift);

	float fire = fireAt(p);

	float smoke = fbm(p + vec3(smokeOffset, -t * smokeDrift), foldDomain);
	smoke = smoothstep(smokeLow, smokeHigh, smoke);

	float strength = fire * distortStrength * (1.0 + distortSpeedGain * (speed - 1.0));
	vec2 d = vec2(fbm(p + distortOffsetA, true) - 0.5, fbm(p + distortOffsetB, true) - 0.5) * strength;
	fire = fireAt(p + vec3(d, 0.0));

	vec3 colFire = firePalette(fire);
	vec3 colSmoke = mix(smokeDark, smokeLight, smoke);

	float heightMask = smoothstep(heightLow, heightHigh, uv.y);
	vec3 color = mix(colFire, colSmoke, heightMask);

	float spark = smoothstep(sparkLow, sparkHigh, fbm(p * sparkScale + sparkOffset, true));
	spark *= 1.0 - smoothstep(sparkMaskLow, sparkMaskHigh, uv.y);
	spark *= 0.5 + 0.5 * sin(time * sparkPulseRate + uv.x * sparkPulseFreq.x + uv.y * sparkPulseFreq.y);
	color += sparkTint * spark * sparkGain;

	float blur = 0.0;
	for (int y = -1; y <= 1; y++) {
		for (int x = -1; x <= 1; x++) {
			blur += sampleNoise(p + vec3(float(x), float(y), 0.0) * blurRadius, foldDomain);
		}
	}
	blur /= 9.0;
	color = mix(color, vec3(blur), blurWeight);

	FragColor = vec4(clamp(color, 0.0, 1.0), 1.0);
}
`

// FragmentSource returns the GLSL fragment program.
func FragmentSource() string {
	return fmt.Sprintf(fragmentTemplate, MaxOctaves)
}

// UniformKind tells the GL layer which setter a uniform needs.
type UniformKind int

const (
	UniformFloat UniformKind = iota
	UniformInt
	UniformBool
	UniformVec2
	UniformVec3
)

// Uniform is one named tuning value bound to the fragment program.
type Uniform struct {
	Name   string
	Kind   UniformKind
	Values [3]float32
}

func f1(name string, v float32) Uniform {
	return Uniform{Name: name, Kind: UniformFloat, Values: [3]float32{v}}
}

func v2(name string, v [2]float32) Uniform {
	return Uniform{Name: name, Kind: UniformVec2, Values: [3]float32{v[0], v[1]}}
}

func v3(name string, v [3]float32) Uniform {
	return Uniform{Name: name, Kind: UniformVec3, Values: v}
}

// Uniforms lists every tuning uniform FragmentSource declares, in
// declaration order. Frame uniforms (time, speed, colorMode) and the
// sampler are set per frame by the renderer.
func (p Params) Uniforms() []Uniform {
	fold := float32(0)
	if p.Fold {
		fold = 1
	}
	return []Uniform{
		{Name: "octaves", Kind: UniformInt, Values: [3]float32{float32(p.Octaves)}},
		f1("gain", p.Gain),
		f1("lacunarity", p.Lacunarity),
		v2("uvScale", p.UVScale),
		v2("uvBias", p.UVBias),
		f1("scrollRate", p.ScrollRate),
		f1("zDrift", p.ZDrift),
		{Name: "foldDomain", Kind: UniformBool, Values: [3]float32{fold}},

		f1("firePower", p.FirePower),
		f1("fireColorGain", p.FireColorGain),
		v3("classicLow", p.Classic.Low),
		v3("classicHigh", p.Classic.High),
		v3("lavaLow", p.Lava.Low),
		v3("lavaHigh", p.Lava.High),
		v3("blueLow", p.Blue.Low),
		v3("blueHigh", p.Blue.High),

		v2("smokeOffset", p.SmokeOffset),
		f1("smokeDrift", p.SmokeDrift),
		f1("smokeLow", p.SmokeLow),
		f1("smokeHigh", p.SmokeHigh),
		v3("smokeDark", p.SmokeDark),
		v3("smokeLight", p.SmokeLight),

		v3("distortOffsetA", p.DistortOffsetA),
		v3("distortOffsetB", p.DistortOffsetB),
		f1("distortStrength", p.DistortStrength),
		f1("distortSpeedGain", p.DistortSpeedGain),

		f1("heightLow", p.HeightLow),
		f1("heightHigh", p.HeightHigh),

		f1("sparkScale", p.SparkScale),
		v3("sparkOffset", p.SparkOffset),
		f1("sparkLow", p.SparkLow),
		f1("sparkHigh", p.SparkHigh),
		f1("sparkMaskLow", p.SparkMaskLow),
		f1("sparkMaskHigh", p.SparkMaskHigh),
		f1("sparkPulseRate", p.SparkPulseRate),
		v2("sparkPulseFreq", p.SparkPulseFreq),
		v3("sparkTint", p.SparkTint),
		f1("sparkGain", p.SparkGain),

		f1("blurRadius", p.BlurRadius),
		f1("blurWeight", p.BlurWeight),
	}
}
