package styling

import (
	"strings"
	"sync"
	"testing"

	"github.com/recera/vango-styled/pkg/vango/vdom"
)

func TestComponent_Render(t *testing.T) {
	sheet := NewSheet()
	card := NewComponent(sheet, "div", `
		background: white;
		padding: 1rem;
	`)

	node := card.Render(vdom.Props{"id": "main"})

	classes := node.ClassNames()
	if len(classes) != 2 {
		t.Fatalf("Expected 2 class names, got %v", classes)
	}
	if classes[0] != card.ID() {
		t.Errorf("Expected component id %s first, got %s", card.ID(), classes[0])
	}
	if !strings.HasPrefix(classes[1], "_") {
		t.Errorf("Expected variant name to start with _, got %s", classes[1])
	}
	if node.Props["id"] != "main" {
		t.Errorf("Expected id attribute to be kept, got %v", node.Props["id"])
	}

	css := sheet.String()
	want := "." + classes[1] + "{background:white;padding:1rem;}"
	if !strings.Contains(css, want) {
		t.Errorf("Expected %q in sheet, got %q", want, css)
	}
}

func TestComponent_Variants(t *testing.T) {
	sheet := NewSheet()
	btn := NewComponent(sheet, "button",
		"color: ",
		func(p vdom.Props) string {
			if p["$primary"] == true {
				return "white"
			}
			return "black"
		},
		";",
	)

	primary := btn.Render(vdom.Props{"$primary": true})
	plain := btn.Render(nil)
	again := btn.Render(vdom.Props{"$primary": true})

	if _, ok := primary.Props["$primary"]; ok {
		t.Error("Transient props should not be rendered")
	}

	p, q := primary.ClassNames()[1], plain.ClassNames()[1]
	if p == q {
		t.Error("Expected distinct variant names for distinct CSS")
	}
	if again.ClassNames()[1] != p {
		t.Error("Expected identical CSS to reuse the variant name")
	}

	names := sheet.Names()[btn.ID()]
	if len(names) != 2 {
		t.Errorf("Expected 2 variants registered, got %v", names)
	}
	if strings.Count(sheet.String(), "color:white") != 1 {
		t.Error("Rules should be injected once per variant")
	}
}

func TestComponent_ClassMerge(t *testing.T) {
	sheet := NewSheet()
	c := NewComponent(sheet, "span", "margin: 0;")
	node := c.Render(vdom.Props{"class": "extra"})

	classes := node.ClassNames()
	if classes[len(classes)-1] != "extra" {
		t.Errorf("Expected user class last, got %v", classes)
	}
	if c.Class(nil) != classes[1] {
		t.Errorf("Class() = %s, want %s", c.Class(nil), classes[1])
	}
}

func TestComponent_DistinctIDs(t *testing.T) {
	a := NewComponent(NewSheet(), "div")
	b := NewComponent(NewSheet(), "div")
	if a.ID() == b.ID() {
		t.Error("Expected each definition to get its own id")
	}
	if !strings.HasPrefix(a.ID(), "vg-") {
		t.Errorf("Expected id to start with vg-, got %s", a.ID())
	}
}

func TestStyledUsesMaster(t *testing.T) {
	Reset()
	defer Reset()

	Styled("p", "color: red;").Render(nil)
	if !strings.Contains(GetAllCSS(), "color:red") {
		t.Error("Expected Styled to inject into the process-wide sheet")
	}
}

func TestComponent_ConcurrentRenderInjectsOnce(t *testing.T) {
	sheet := NewSheet()
	box := NewComponent(sheet, "div", "color: blue; &:hover { color: red; }")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			box.Render(nil)
		}()
	}
	wg.Wait()

	name := box.Class(nil)
	if n := strings.Count(sheet.String(), "."+name+"{color:blue;}"); n != 1 {
		t.Errorf("Expected the variant injected once, got %d copies:\n%s", n, sheet.String())
	}
	if names := sheet.Names()[box.ID()]; len(names) != 1 {
		t.Errorf("Expected one variant name, got %v", names)
	}
}
