package registry

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mini-mc-polygen/internal/world"
)

var ErrUnknownBlock = errors.New("unknown block name")

type blockFile struct {
	IconsPerRow int         `yaml:"icons_per_row"`
	Blocks      []blockYAML `yaml:"blocks"`
}

type blockYAML struct {
	Name        string `yaml:"name"`
	Opaque      *bool  `yaml:"opaque"`
	Transparent *bool  `yaml:"transparent"`
	Icon        []int  `yaml:"icon"`
	Top         []int  `yaml:"top"`
	Side        []int  `yaml:"side"`
	Bottom      []int  `yaml:"bottom"`
	Tint        string `yaml:"tint"`
	TintTopOnly *bool  `yaml:"tint_top_only"`
}

// LoadYAML reads block definitions from a YAML file on top of the defaults.
func LoadYAML(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseYAML builds a registry from the built-in blocks overridden by raw.
func ParseYAML(raw []byte) (*Registry, error) {
	var f blockFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	r := New(f.IconsPerRow)
	for _, def := range defaultBlocks() {
		r.Register(def)
	}
	for _, b := range f.Blocks {
		id, ok := world.BlockTypeByName(b.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, b.Name)
		}
		def := *r.Definition(id)
		def.ID = id
		def.Name = b.Name
		if b.Opaque != nil {
			def.Opaque = *b.Opaque
		}
		if b.Transparent != nil {
			def.Transparent = *b.Transparent
		}
		if b.TintTopOnly != nil {
			def.TintTopOnly = *b.TintTopOnly
		}

		var err error
		if len(b.Icon) > 0 {
			var ic Icon
			if ic, err = parseIcon(b.Icon, r.iconsPerRow); err != nil {
				return nil, fmt.Errorf("block %s icon: %w", b.Name, err)
			}
			def.Top, def.Side, def.Bottom = ic, ic, ic
		}
		for _, face := range []struct {
			raw []int
			dst *Icon
		}{{b.Top, &def.Top}, {b.Side, &def.Side}, {b.Bottom, &def.Bottom}} {
			if len(face.raw) == 0 {
				continue
			}
			if *face.dst, err = parseIcon(face.raw, r.iconsPerRow); err != nil {
				return nil, fmt.Errorf("block %s face icon: %w", b.Name, err)
			}
		}
		if b.Tint != "" {
			tint, err := strconv.ParseUint(strings.TrimPrefix(b.Tint, "#"), 16, 32)
			if err != nil || tint > 0xFFFFFF {
				return nil, fmt.Errorf("block %s: bad tint %q", b.Name, b.Tint)
			}
			def.Tint = uint32(tint)
		}
		r.Register(&def)
	}
	return r, nil
}

func parseIcon(v []int, iconsPerRow int) (Icon, error) {
	if len(v) != 2 {
		return Icon{}, fmt.Errorf("want [col, row], got %v", v)
	}
	if v[0] < 0 || v[1] < 0 || v[0] >= iconsPerRow || v[1] >= iconsPerRow {
		return Icon{}, fmt.Errorf("icon %v outside a %dx%d atlas", v, iconsPerRow, iconsPerRow)
	}
	return Icon{Col: v[0], Row: v[1]}, nil
}
