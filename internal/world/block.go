package world

type BlockType uint16

const (
	BlockTypeAir BlockType = iota
	BlockTypeStone
	BlockTypeDirt
	BlockTypeGrass
	BlockTypeCobblestone
	BlockTypeBedrock
	BlockTypePlanksOak
	BlockTypeGlass
	BlockTypeWater
	BlockTypeLeaves
	BlockTypeSand

	blockTypeCount
)

// OpaqueFallback is what GetBlock reports for columns that are not loaded.
// It must be opaque so that no faces are meshed toward a missing neighbor.
const OpaqueFallback = BlockTypeStone

var blockTypeNames = [...]string{
	BlockTypeAir:         "air",
	BlockTypeStone:       "stone",
	BlockTypeDirt:        "dirt",
	BlockTypeGrass:       "grass",
	BlockTypeCobblestone: "cobblestone",
	BlockTypeBedrock:     "bedrock",
	BlockTypePlanksOak:   "oak_planks",
	BlockTypeGlass:       "glass",
	BlockTypeWater:       "water",
	BlockTypeLeaves:      "leaves",
	BlockTypeSand:        "sand",
}

func (b BlockType) String() string {
	if int(b) < len(blockTypeNames) {
		return blockTypeNames[b]
	}
	return "unknown"
}

// BlockTypeByName resolves a registry name to its block type.
func BlockTypeByName(name string) (BlockType, bool) {
	for i, n := range blockTypeNames {
		if n == name {
			return BlockType(i), true
		}
	}
	return BlockTypeAir, false
}
