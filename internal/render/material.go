package render

import "github.com/go-gl/mathgl/mgl32"

// MaterialKind шейдерная модель материала
type MaterialKind int

const (
	MaterialObject MaterialKind = iota
	MaterialTerrain
	MaterialWater
)

// BlendMode режим смешивания
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
	BlendAdditive
)

// Glow параметры свечения
type Glow struct {
	Kind  string
	Color mgl32.Vec3
}

// MaterialParams параметры материала. Нулевые handle означают отсутствие текстуры.
type MaterialParams struct {
	Kind MaterialKind

	BaseTexture  Handle
	TileTextures Handle // массив текстур тайлов рельефа или кадров воды

	Lightmap         Handle
	LightmapUVOffset mgl32.Vec2
	LightmapUVScale  float32

	Alpha       *float32
	AlphaCutoff *float32
	Blend       BlendMode
	TwoSided    bool
	ZTest       bool
	ZWrite      bool
	Specular    bool
	Skinned     bool
	Glow        *Glow
}

// Dependencies handle текстур, от которых зависит готовность материала
func (p MaterialParams) Dependencies() []Handle {
	var deps []Handle
	for _, h := range []Handle{p.BaseTexture, p.TileTextures, p.Lightmap} {
		if h.Valid() {
			deps = append(deps, h)
		}
	}
	return deps
}
