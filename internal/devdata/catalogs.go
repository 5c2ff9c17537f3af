package devdata

import (
	"fmt"

	"github.com/annel0/zone-streamer/internal/formats"
)

// Число объектов в каталогах зоны
const (
	constructionObjects = 2
	decorationObjects   = 3
)

func intPtr(v int) *int { return &v }

func material(path string) formats.CatalogMaterial {
	return formats.CatalogMaterial{Path: path, ZTest: true, ZWrite: true, Alpha: 1, BlendMode: formats.BlendNormal}
}

func part(mesh, mat int) formats.ObjectPart {
	return formats.ObjectPart{Mesh: mesh, Material: mat, Rotation: formats.IdentityQuat, Scale: formats.OneScale}
}

// constructionCatalog дом из стены и крыши с фонарём и забор
func constructionCatalog(key string) *formats.ObjectCatalog {
	dir := fmt.Sprintf("3DDATA/JUNON/VILLAGE/%s/", key)

	wall := part(0, 0)
	wall.CollisionShape = formats.CollisionShapeOBB

	roof := part(1, 1)
	roof.Parent = intPtr(0)
	roof.Position = formats.Vec3{0, 0, 450}
	roof.CollisionShape = formats.CollisionShapeAABB
	roof.CollisionFlags = formats.CollisionNotCameraCollision

	fence := part(2, 2)
	fence.CollisionShape = formats.CollisionShapePolygon
	fence.CollisionFlags = formats.CollisionHeightOnly

	glass := material(dir + "HOUSE01_ROOF.DDS")
	glass.AlphaEnabled = true
	glass.Alpha = 0.9
	glass.Specular = true

	return &formats.ObjectCatalog{
		Meshes: []string{dir + "HOUSE01_WALL.ZMS", dir + "HOUSE01_ROOF.ZMS", dir + "FENCE01.ZMS"},
		Materials: []formats.CatalogMaterial{
			material(dir + "HOUSE01_WALL.DDS"),
			glass,
			material(dir + "FENCE01.DDS"),
		},
		Effects: []string{"3DDATA/EFFECT/LAMP01.EFT"},
		Objects: []formats.CatalogObject{
			{
				Parts: []formats.ObjectPart{wall, roof},
				Effects: []formats.ObjectEffect{{
					Effect: 0, Type: formats.EffectDayNight, Part: intPtr(1),
					Position: formats.Vec3{120, 0, 200}, Rotation: formats.IdentityQuat, Scale: formats.OneScale,
				}},
			},
			{Parts: []formats.ObjectPart{fence}},
		},
	}
}

// decorationCatalog дерево с анимацией листвы, камень и куст без коллизии
func decorationCatalog(key string) *formats.ObjectCatalog {
	dir := fmt.Sprintf("3DDATA/JUNON/NATURE/%s/", key)

	trunk := part(0, 0)
	trunk.CollisionShape = formats.CollisionShapeSphere
	trunk.CollisionFlags = formats.CollisionNotPickable

	leaves := part(1, 1)
	leaves.Parent = intPtr(0)
	leaves.Position = formats.Vec3{0, 0, 600}
	leaves.Animation = dir + "TREE01_LEAVES.ZMO"

	rock := part(2, 2)
	rock.CollisionShape = formats.CollisionShapeAABB

	bush := part(3, 3)

	leafMat := material(dir + "TREE01_LEAVES.DDS")
	cutoff := float32(0.5)
	leafMat.AlphaTest = &cutoff
	leafMat.TwoSided = true

	glowMat := material(dir + "BUSH01.DDS")
	glowMat.Glow = formats.GlowSimple
	glowMat.GlowColor = formats.Vec3{0.2, 0.8, 0.3}

	return &formats.ObjectCatalog{
		Meshes: []string{dir + "TREE01_TRUNK.ZMS", dir + "TREE01_LEAVES.ZMS", dir + "ROCK01.ZMS", dir + "BUSH01.ZMS"},
		Materials: []formats.CatalogMaterial{
			material(dir + "TREE01_TRUNK.DDS"),
			leafMat,
			material(dir + "ROCK01.DDS"),
			glowMat,
		},
		Effects: []string{"3DDATA/EFFECT/FIREFLY01.EFT"},
		Objects: []formats.CatalogObject{
			{Parts: []formats.ObjectPart{trunk, leaves}},
			{Parts: []formats.ObjectPart{rock}},
			{
				Parts:   []formats.ObjectPart{bush},
				Effects: []formats.ObjectEffect{{Effect: 0, Type: formats.EffectNormal, Rotation: formats.IdentityQuat, Scale: formats.OneScale}},
			},
		},
	}
}

func eventCatalog() *formats.ObjectCatalog {
	trigger := part(0, 0)
	trigger.CollisionShape = formats.CollisionShapeAABB
	return &formats.ObjectCatalog{
		Meshes:    []string{"3DDATA/SPECIAL/EVENT_TRIGGER.ZMS"},
		Materials: []formats.CatalogMaterial{material("3DDATA/SPECIAL/EVENT_TRIGGER.DDS")},
		Objects:   []formats.CatalogObject{{Parts: []formats.ObjectPart{trigger}}},
	}
}

func warpCatalog() *formats.ObjectCatalog {
	gate := part(0, 0)
	gate.CollisionShape = formats.CollisionShapeOBB

	portal := material("3DDATA/SPECIAL/WARPGATE01.DDS")
	portal.BlendMode = formats.BlendLighten
	portal.ZWrite = false

	return &formats.ObjectCatalog{
		Meshes:    []string{"3DDATA/SPECIAL/WARPGATE01.ZMS"},
		Materials: []formats.CatalogMaterial{portal},
		Effects:   []string{"3DDATA/EFFECT/WARP01.EFT"},
		Objects: []formats.CatalogObject{{
			Parts:   []formats.ObjectPart{gate},
			Effects: []formats.ObjectEffect{{Effect: 0, Type: formats.EffectLightContainer, Part: intPtr(0), Rotation: formats.IdentityQuat, Scale: formats.OneScale}},
		}},
	}
}
