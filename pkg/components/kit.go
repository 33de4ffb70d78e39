// Package components provides styled UI building blocks whose CSS is
// generated per prop combination and injected into a styling.Sheet.
package components

import (
	"sync"

	"github.com/recera/vango-styled/pkg/styling"
)

// Kit holds the component definitions bound to one sheet.
// Tests create their own kit over styling.NewSheet() to stay isolated.
type Kit struct {
	sheet   *styling.Sheet
	button  *styling.Component
	spinner *styling.Component
}

// NewKit defines every component against sheet
func NewKit(sheet *styling.Sheet) *Kit {
	if sheet == nil {
		sheet = styling.Master
	}
	return &Kit{
		sheet:   sheet,
		button:  newButton(sheet),
		spinner: newSpinner(sheet),
	}
}

// Sheet returns the sheet the kit injects into
func (k *Kit) Sheet() *styling.Sheet {
	return k.sheet
}

var (
	kitOnce sync.Once
	kit     *Kit
)

func defaultKit() *Kit {
	kitOnce.Do(func() {
		kit = NewKit(styling.Master)
	})
	return kit
}
